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

package badger

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

const defaultBatchSize = 100

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close releases resources. ChunkRepository has no resources to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks stores chunks and their concept index entries.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = core.ChunkID(chunk.DocumentId, chunk.Index, chunk.Contents)
			}
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}

			key := makeChunkKey(chunk.Id)

			// Re-adding a chunk replaces it, so drop stale index entries first
			old, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := deleteConceptIndex(tx, old); err != nil {
					return err
				}
			}

			chunk.InsertedAt = now
			chunk.UpdatedAt = now
			if err := writeChunk(tx, key, chunk); err != nil {
				return err
			}
			if err := updateConceptIndex(tx, chunk); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// UpdateChunks updates existing chunks.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)

			old, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			chunk.UpdatedAt = time.Now().UTC()
			if err := writeChunk(tx, key, chunk); err != nil {
				return err
			}

			if !conceptsEqual(old.Concepts, chunk.Concepts) {
				if err := deleteConceptIndex(tx, old); err != nil {
					return err
				}
				if err := updateConceptIndex(tx, chunk); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunks by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByConcept retrieves IDs of chunks associated with a concept.
func (r *ChunkRepository) GetChunksByConcept(ctx context.Context, conceptID core.ID) ([]core.ID, error) {
	var chunkIDs []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkConceptKey(conceptID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			chunkIDs = append(chunkIDs, chunkID)
		}
		return nil
	}, false)

	return chunkIDs, err
}

// ForEachChunk walks all chunks in key order, handing them to fn in batches.
func (r *ChunkRepository) ForEachChunk(ctx context.Context, batchSize int, fn func([]*core.Chunk) error) error {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}

	// Each batch runs in its own read transaction so fn may write.
	var after []byte
	for {
		batch, last, err := r.readBatch(ctx, after, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		after = last
	}
}

func (r *ChunkRepository) readBatch(ctx context.Context, after []byte, batchSize int) ([]*core.Chunk, []byte, error) {
	var batch []*core.Chunk
	var last []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		if after == nil {
			iter.Rewind()
		} else {
			iter.Seek(after)
			if iter.Valid() && bytes.Equal(iter.Item().Key(), after) {
				iter.Next()
			}
		}

		for ; iter.Valid() && len(batch) < batchSize; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			var chunk *core.Chunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			batch = append(batch, chunk)
			last = item.KeyCopy(nil)
		}
		return nil
	}, false)
	return batch, last, err
}

// CountChunks returns the number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	return r.backend.countPrefix(chunkPrefix)
}

// Helper methods

func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}

func writeChunk(tx *badger.Txn, key []byte, chunk *core.Chunk) error {
	value, err := storage.MarshalChunk(chunk)
	if err != nil {
		return err
	}
	return tx.Set(key, value)
}

// updateConceptIndex adds concept index entries for a chunk.
func updateConceptIndex(tx *badger.Txn, chunk *core.Chunk) error {
	for _, ref := range chunk.Concepts {
		key := makeChunkConceptKey(ref.ConceptId, chunk.Id)
		if err := tx.Set(key, storage.MarshalID(chunk.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteConceptIndex removes concept index entries for a chunk.
func deleteConceptIndex(tx *badger.Txn, chunk *core.Chunk) error {
	for _, ref := range chunk.Concepts {
		key := makeChunkConceptKey(ref.ConceptId, chunk.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// conceptsEqual compares two concept slices for equality.
func conceptsEqual(a, b []core.ConceptRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
