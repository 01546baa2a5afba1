package ai

import "errors"

var (
	// ErrDimensionMismatch is returned when an embedding has an unexpected length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyCompletion is returned when a model produces no choices.
	ErrEmptyCompletion = errors.New("model returned no completion")
)
