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
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

// ConceptRepository implements storage.ConceptRepository for BadgerDB.
type ConceptRepository struct {
	backend *Backend
}

var _ storage.ConceptRepository = (*ConceptRepository)(nil)

// NewConceptRepository creates a new ConceptRepository.
func NewConceptRepository(backend *Backend) (*ConceptRepository, error) {
	return &ConceptRepository{backend: backend}, nil
}

// Close releases resources. ConceptRepository has no resources to release.
func (r *ConceptRepository) Close() error {
	return nil
}

// FindSimilarConcepts delegates to the backend.
func (r *ConceptRepository) FindSimilarConcepts(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ConceptMatch, error) {
	return r.backend.FindSimilarConcepts(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ConceptRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConcepts adds one or more concepts to storage.
func (r *ConceptRepository) AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, concept := range concepts {
			if err := core.ValidateConcept(concept); err != nil {
				return err
			}
			if concept.Id == 0 {
				concept.Id = core.IDFromContent(concept.Tuple())
			}
			concept.InsertedAt = now
			concept.UpdatedAt = now

			key := makeConceptKey(concept.Id)
			if err := writeConcept(tx, key, concept); err != nil {
				return err
			}

			tupleKey := makeConceptTupleKey(concept.Name, concept.Type)
			if err := tx.Set(tupleKey, storage.MarshalID(concept.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return concepts, err
}

// UpdateConcepts updates existing concepts.
func (r *ConceptRepository) UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			key := makeConceptKey(concept.Id)

			old, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			concept.UpdatedAt = time.Now().UTC()
			if err := writeConcept(tx, key, concept); err != nil {
				return err
			}

			if old.Name != concept.Name || old.Type != concept.Type {
				if err := tx.Delete(makeConceptTupleKey(old.Name, old.Type)); err != nil {
					return err
				}
				newTupleKey := makeConceptTupleKey(concept.Name, concept.Type)
				if err := tx.Set(newTupleKey, storage.MarshalID(concept.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return concepts, err
}

// GetConcept retrieves a single concept by ID.
func (r *ConceptRepository) GetConcept(ctx context.Context, id core.ID) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readConcept(tx, makeConceptKey(id))
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

// GetConcepts retrieves multiple concepts by their IDs.
func (r *ConceptRepository) GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error) {
	var result []*core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			concept, err := readConcept(tx, makeConceptKey(id))
			if err != nil {
				return err
			}
			if concept != nil {
				result = append(result, concept)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindConceptByNameAndType finds a concept by its name and type tuple.
func (r *ConceptRepository) FindConceptByNameAndType(ctx context.Context, name, conceptType string) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeConceptTupleKey(name, conceptType))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		var conceptID core.ID
		err = item.Value(func(val []byte) error {
			conceptID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readConcept(tx, makeConceptKey(conceptID))
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

// GetOrCreateConcept finds or creates a concept by name and type.
func (r *ConceptRepository) GetOrCreateConcept(ctx context.Context, name, conceptType string, vector []float32) (*core.Concept, error) {
	concept, err := r.FindConceptByNameAndType(ctx, name, conceptType)
	if err == nil {
		return concept, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	newConcept := &core.Concept{
		Id:     core.IDFromContent(core.ConceptTuple(name, conceptType)),
		Name:   name,
		Type:   conceptType,
		Vector: vector,
	}

	added, err := r.AddConcepts(ctx, newConcept)
	if err != nil {
		// A concurrent insert may have won the race
		concept, findErr := r.FindConceptByNameAndType(ctx, name, conceptType)
		if findErr == nil {
			return concept, nil
		}
		return nil, err
	}

	return added[0], nil
}

// GetAllConcepts retrieves all concepts from storage.
func (r *ConceptRepository) GetAllConcepts(ctx context.Context) ([]*core.Concept, error) {
	var results []*core.Concept
	err := r.backend.scanPrefix(ctx, conceptRecordPrefix, func(val []byte) error {
		concept, err := storage.UnmarshalConcept(val)
		if err != nil {
			return err
		}
		results = append(results, concept)
		return nil
	})
	return results, err
}

// CountConcepts returns the number of stored concepts.
func (r *ConceptRepository) CountConcepts(ctx context.Context) (int, error) {
	return r.backend.countPrefix(conceptRecordPrefix)
}

// Helper methods

// readConcept reads a concept from the transaction.
func readConcept(tx *badger.Txn, key []byte) (*core.Concept, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var concept *core.Concept
	err = item.Value(func(val []byte) error {
		var err error
		concept, err = storage.UnmarshalConcept(val)
		return err
	})
	return concept, err
}

func writeConcept(tx *badger.Txn, key []byte, concept *core.Concept) error {
	value, err := storage.MarshalConcept(concept)
	if err != nil {
		return err
	}
	return tx.Set(key, value)
}
