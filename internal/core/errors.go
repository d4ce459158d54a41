package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request-level taxonomy. Handlers translate these to
// HTTP status codes; everything else maps to 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// ConfigurationError reports an invalid tunable, such as a chunk overlap that
// is not smaller than the chunk size.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ExtractionError means the uploaded bytes could not be parsed as a PDF, or
// extraction yielded no usable text. Terminal for the current document only.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding API failed for at least one chunk. The
// whole ingestion run aborts; partial embedding sets are never persisted.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError means the LLM call failed or returned output that could not
// be used.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
