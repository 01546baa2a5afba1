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

package storage

import (
	"context"

	"github.com/poiesic/infobot/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases repository resources. The backend is closed separately.
	Close() error
}

// ChunkRepository provides operations for managing indexed chunks.
type ChunkRepository interface {
	Repository

	// AddChunks stores chunks and indexes their concept references.
	// Chunks with ID=0 receive core.ChunkID. Sets InsertedAt and UpdatedAt.
	// Adding a chunk whose ID already exists overwrites it.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks and re-indexes changed concept references.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist, in the order requested.
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByConcept returns the IDs of chunks that reference a concept.
	GetChunksByConcept(ctx context.Context, conceptID core.ID) ([]core.ID, error)

	// FindSimilar finds chunks whose vectors are similar to vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// highest similarity first.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// ForEachChunk calls fn with successive batches of at most batchSize chunks
	// in key order. Iteration stops at the first error fn returns.
	ForEachChunk(ctx context.Context, batchSize int, fn func([]*core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}

// ConceptRepository provides operations for managing concepts.
type ConceptRepository interface {
	Repository

	// AddConcepts adds one or more concepts to storage.
	// Uses content-based IDs (IDFromContent of concept tuple).
	AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// UpdateConcepts updates existing concepts.
	// Returns ErrNotFound if any concept doesn't exist.
	UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// GetConcept retrieves a single concept by ID.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConcept(ctx context.Context, id core.ID) (*core.Concept, error)

	// GetConcepts retrieves multiple concepts by their IDs.
	// Returns only the concepts that exist (no error for missing concepts).
	GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error)

	// FindConceptByNameAndType finds a concept by its name and type tuple.
	// Returns ErrNotFound if no matching concept exists.
	FindConceptByNameAndType(ctx context.Context, name, conceptType string) (*core.Concept, error)

	// GetOrCreateConcept finds or creates a concept by name and type.
	// If the concept exists, returns it. If not, creates it with the provided vector.
	GetOrCreateConcept(ctx context.Context, name, conceptType string, vector []float32) (*core.Concept, error)

	// FindSimilarConcepts finds concepts whose vectors are similar to vector.
	FindSimilarConcepts(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ConceptMatch, error)

	// GetAllConcepts retrieves every stored concept.
	GetAllConcepts(ctx context.Context) ([]*core.Concept, error)

	// CountConcepts returns the number of stored concepts.
	CountConcepts(ctx context.Context) (int, error)
}

// DocumentRepository records which documents have been inserted.
type DocumentRepository interface {
	Repository

	// AddDocument stores a document record, setting InsertedAt if zero.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments returns every document ordered by InsertedAt.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
