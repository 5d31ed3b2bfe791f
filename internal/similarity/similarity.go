// Package similarity scores how well a candidate text matches a query using
// lexical statistics over whitespace tokens.
package similarity

import (
	"fmt"
	"strings"

	"lexrag/internal/domain"
)

// Scorer computes a non-negative relevance score of text for query.
type Scorer interface {
	Name() string
	Score(query, text string) float64
}

// Algorithm names a built-in scorer.
type Algorithm string

const (
	AlgorithmCosine    Algorithm = "cosine"
	AlgorithmJaccard   Algorithm = "jaccard"
	AlgorithmEuclidean Algorithm = "euclidean"
	AlgorithmBM25      Algorithm = "bm25"
)

// Algorithms lists the built-in algorithms in display order.
var Algorithms = []Algorithm{AlgorithmCosine, AlgorithmJaccard, AlgorithmEuclidean, AlgorithmBM25}

// ParseAlgorithm accepts an algorithm name in any letter case.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, s)
}

// New returns the scorer for a built-in algorithm.
func New(a Algorithm) (Scorer, error) {
	switch a {
	case AlgorithmCosine:
		return Cosine{}, nil
	case AlgorithmJaccard:
		return Jaccard{}, nil
	case AlgorithmEuclidean:
		return Euclidean{}, nil
	case AlgorithmBM25:
		return NewBM25(), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, string(a))
	}
}

// Compute scores text against query with a built-in algorithm. Unknown
// algorithms score 0.
func Compute(query, text string, a Algorithm) float64 {
	s, err := New(a)
	if err != nil {
		return 0
	}
	return s.Score(query, text)
}

// Tokenize splits text on whitespace and lower-cases each token. Punctuation
// stays attached to its token.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

func termFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, tok := range Tokenize(text) {
		tf[tok]++
	}
	return tf
}
