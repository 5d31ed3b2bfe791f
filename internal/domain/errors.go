package domain

import "errors"

var (
	// ErrInvalidConfig is returned by constructors and config validation
	// when a setting is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownAlgorithm indicates an unsupported similarity algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown similarity algorithm")

	// ErrLLMUnavailable indicates an operation needs an LLM but none is configured.
	ErrLLMUnavailable = errors.New("LLM unavailable")

	// ErrNoDocuments indicates ingestion found nothing to index.
	ErrNoDocuments = errors.New("no documents found")
)
