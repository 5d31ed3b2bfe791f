// Package llm holds adapters for the text completion collaborator.
package llm

import (
	"context"

	"lexrag/internal/domain"
)

// Func adapts a plain function to domain.LLM.
type Func func(ctx context.Context, prompt string) (string, error)

var _ domain.LLM = Func(nil)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Static returns an LLM that always replies with reply.
func Static(reply string) Func {
	return func(context.Context, string) (string, error) { return reply, nil }
}
