package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrChunkRepositoryRequired is returned when no chunk repository is provided
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrConceptRepositoryRequired is returned when no concept repository is provided
	ErrConceptRepositoryRequired = errors.New("concept repository required")

	// ErrEmbedderRequired is returned when no embedder is provided
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidTarget is returned for an unknown reembedding target
	ErrInvalidTarget = errors.New("invalid target")

	// ErrEmbeddingCountMismatch is returned when the embedder returns the wrong number of vectors
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
