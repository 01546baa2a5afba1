package reembed

import (
	"context"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

const (
	// DefaultBatchSize is the default number of records to fetch in each batch
	DefaultBatchSize = 100
)

// ChunkIterator walks every stored chunk in batches.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ChunkIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn with successive batches of chunks. Batches are read
// lazily from storage, so fn may update the chunks it receives.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return it.repo.ForEachChunk(ctx, it.batchSize, func(batch []*core.Chunk) error {
		if err := fn(batch); err != nil {
			return err
		}
		return ctx.Err()
	})
}

// ConceptIterator walks every stored concept in batches.
type ConceptIterator struct {
	repo      storage.ConceptRepository
	batchSize int
}

func NewConceptIterator(repo storage.ConceptRepository, batchSize int) *ConceptIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ConceptIterator{repo: repo, batchSize: batchSize}
}

// ForEach loads all concepts and calls fn with successive batches.
func (it *ConceptIterator) ForEach(ctx context.Context, fn func([]*core.Concept) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	concepts, err := it.repo.GetAllConcepts(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < len(concepts); i += it.batchSize {
		end := min(i+it.batchSize, len(concepts))
		if err := fn(concepts[i:end]); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
