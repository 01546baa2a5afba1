package engine

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrConceptRepositoryRequired is returned when a concept repository is not provided.
	ErrConceptRepositoryRequired = errors.New("concept repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyText is returned when Insert receives blank text.
	ErrEmptyText = errors.New("text is empty")

	// ErrEmptyQuestion is returned when Query receives a blank question.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrClosed is returned when the engine is used after Close.
	ErrClosed = errors.New("engine is closed")
)
