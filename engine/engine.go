// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/infobot/ai"
	"github.com/poiesic/infobot/chunk"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

const (
	defaultMaxAsync        = 1
	defaultTopK            = 8
	defaultMinSimilarity   = 0.35
	defaultMaxContextRunes = 8000
)

// Result is the structured outcome of a query.
type Result struct {
	Answer  string
	Mode    core.Mode
	Sources []*core.SearchResult
}

// Stats summarizes what the engine has indexed.
type Stats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Concepts  int `json:"concepts"`
}

// Engine indexes text and answers questions over it.
// It is safe for concurrent use.
type Engine struct {
	chunks    storage.ChunkRepository
	concepts  storage.ConceptRepository
	documents storage.DocumentRepository
	embedder  ai.Embedder
	extractor ai.ConceptExtractor
	generator ai.Generator

	pool            *ants.Pool
	maxAsync        int
	topK            int
	minSimilarity   float32
	maxContextRunes int
	chunkSize       int
	monitor         QueryMonitor
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithMaxAsync caps the number of model calls in flight at once.
// Default is 1.
func WithMaxAsync(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			n = 1
		}
		e.maxAsync = n
		return nil
	}
}

// WithTopK sets how many chunks a query retrieves.
// Default is 8.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			k = defaultTopK
		}
		e.topK = k
		return nil
	}
}

// WithMinSimilarity sets the vector similarity threshold for retrieval.
// Default is 0.35.
func WithMinSimilarity(f float32) Option {
	return func(e *Engine) error {
		e.minSimilarity = f
		return nil
	}
}

// WithMaxContextRunes bounds the context handed to the generator.
// Default is 8000.
func WithMaxContextRunes(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			n = defaultMaxContextRunes
		}
		e.maxContextRunes = n
		return nil
	}
}

// WithChunkSize sets the window Insert splits oversized text into.
// Default is chunk.DefaultSize.
func WithChunkSize(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			n = chunk.DefaultSize
		}
		e.chunkSize = n
		return nil
	}
}

// WithMonitor sets a monitor that observes every query.
func WithMonitor(monitor QueryMonitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an engine over the given repositories and AI provider.
func New(
	chunks storage.ChunkRepository,
	concepts storage.ConceptRepository,
	documents storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if concepts == nil {
		return nil, ErrConceptRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		chunks:          chunks,
		concepts:        concepts,
		documents:       documents,
		embedder:        provider.Embedder(),
		extractor:       provider.ConceptExtractor(),
		generator:       provider.Generator(),
		maxAsync:        defaultMaxAsync,
		topK:            defaultTopK,
		minSimilarity:   defaultMinSimilarity,
		maxContextRunes: defaultMaxContextRunes,
		chunkSize:       chunk.DefaultSize,
		monitor:         &noopMonitor{},
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "engine")

	// Pool is created after options so it gets the final size
	pool, err := ants.NewPool(e.maxAsync)
	if err != nil {
		return nil, err
	}
	e.pool = pool

	return e, nil
}

// MaxAsync returns the model-call concurrency cap.
func (e *Engine) MaxAsync() int {
	return e.maxAsync
}

// Stats counts stored documents, chunks and concepts.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error
	if stats.Documents, err = e.documents.CountDocuments(ctx); err != nil {
		return stats, err
	}
	if stats.Chunks, err = e.chunks.CountChunks(ctx); err != nil {
		return stats, err
	}
	if stats.Concepts, err = e.concepts.CountConcepts(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// Close releases the model-call pool.
// The engine should not be used after calling Close.
func (e *Engine) Close() error {
	e.pool.Release()
	return nil
}

// call runs fn on the model-call pool and waits for it.
// Submit blocks while every worker is busy and cannot observe ctx, so ctx is
// checked again once a slot is granted; a task whose ctx is done by the time
// it runs skips fn. The wait is abandoned when ctx is done.
func call[T any](ctx context.Context, e *Engine, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	err := e.pool.Submit(func() {
		if err := ctx.Err(); err != nil {
			done <- outcome{err: err}
			return
		}
		v, err := fn(ctx)
		done <- outcome{value: v, err: err}
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return zero, ErrClosed
		}
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := call(ctx, e, func(ctx context.Context) ([]float32, error) {
		return e.embedder.EmbedText(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return core.NormalizeVector(vector), nil
}

func (e *Engine) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := call(ctx, e, func(ctx context.Context) ([][]float32, error) {
		return e.embedder.EmbedTexts(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	for i := range vectors {
		vectors[i] = core.NormalizeVector(vectors[i])
	}
	return vectors, nil
}

func (e *Engine) extractConcepts(ctx context.Context, text string) ([]ai.ExtractedConcept, error) {
	return call(ctx, e, func(ctx context.Context) ([]ai.ExtractedConcept, error) {
		return e.extractor.ExtractConcepts(ctx, text)
	})
}

func (e *Engine) generate(ctx context.Context, system, prompt string) (string, error) {
	return call(ctx, e, func(ctx context.Context) (string, error) {
		return e.generator.Generate(ctx, system, prompt)
	})
}
