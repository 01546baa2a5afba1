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

package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/infobot/ai"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

// BatchProcessor re-embeds batches of chunks or concepts and writes them back.
type BatchProcessor struct {
	chunks         storage.ChunkRepository
	concepts       storage.ConceptRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a processor. Either repository may be nil when
// only the other kind of record is processed.
func NewBatchProcessor(chunks storage.ChunkRepository, concepts storage.ConceptRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		chunks:         chunks,
		concepts:       concepts,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// ProcessChunks embeds each chunk's contents and updates the chunk vectors.
func (bp *BatchProcessor) ProcessChunks(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Contents
	}
	vectors, err := bp.embed(ctx, texts)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if _, err := bp.chunks.UpdateChunks(ctx, chunks...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}
	return nil
}

// ProcessConcepts embeds each concept's (Type,Name) tuple and updates the concept vectors.
func (bp *BatchProcessor) ProcessConcepts(ctx context.Context, concepts []*core.Concept) error {
	if len(concepts) == 0 {
		return nil
	}

	tuples := make([]string, len(concepts))
	for i, c := range concepts {
		tuples[i] = c.Tuple()
	}
	vectors, err := bp.embed(ctx, tuples)
	if err != nil {
		return err
	}
	for i := range concepts {
		concepts[i].Vector = vectors[i]
	}

	if _, err := bp.concepts.UpdateConcepts(ctx, concepts...); err != nil {
		return fmt.Errorf("failed to update concepts: %w", err)
	}
	return nil
}

// embed generates normalized embeddings for texts, retrying with backoff.
func (bp *BatchProcessor) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(texts), len(embeddings))
	}

	for i := range embeddings {
		embeddings[i] = NormalizeVector(embeddings[i])
	}
	return embeddings, nil
}
