package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunc(t *testing.T) {
	f := Func(func(_ context.Context, prompt string) (string, error) {
		if prompt == "" {
			return "", errors.New("empty prompt")
		}
		return "echo: " + prompt, nil
	})

	out, err := f.Generate(context.Background(), "hi")
	assert.NoError(t, err)
	assert.Equal(t, "echo: hi", out)

	_, err = f.Generate(context.Background(), "")
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	out, err := Static("fixed").Generate(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Equal(t, "fixed", out)
}
