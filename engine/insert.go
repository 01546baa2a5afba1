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
	"fmt"
	"strings"

	"github.com/poiesic/infobot/ai"
	"github.com/poiesic/infobot/chunk"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

// Insert indexes text as one document.
// Text already indexed verbatim is skipped. Text longer than the chunk size
// is split into several chunks of the same document.
func (e *Engine) Insert(ctx context.Context, text string) error {
	return e.InsertDocument(ctx, "", text)
}

// InsertDocument is Insert with a source label recorded on the document.
func (e *Engine) InsertDocument(ctx context.Context, source, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	docID := core.IDFromContent(text)
	if _, err := e.documents.GetDocument(ctx, docID); err == nil {
		e.logger.Debug("document already indexed", "document", docID)
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("checking document: %w", err)
	}

	pieces := chunk.Split(text, e.chunkSize)
	for i, contents := range pieces {
		if err := e.indexChunk(ctx, docID, i, contents); err != nil {
			return fmt.Errorf("indexing chunk %d/%d: %w", i+1, len(pieces), err)
		}
	}

	_, err := e.documents.AddDocument(ctx, &core.Document{
		Id:         docID,
		Source:     source,
		ChunkCount: len(pieces),
	})
	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	e.logger.Debug("document indexed", "document", docID, "chunks", len(pieces))
	return nil
}

// indexChunk embeds a chunk, resolves its concepts and stores it.
func (e *Engine) indexChunk(ctx context.Context, docID core.ID, index int, contents string) error {
	vector, err := e.embedText(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding chunk: %w", err)
	}

	extracted, err := e.extractConcepts(ctx, contents)
	if err != nil {
		return fmt.Errorf("extracting concepts: %w", err)
	}

	refs, err := e.resolveConcepts(ctx, extracted)
	if err != nil {
		return err
	}

	_, err = e.chunks.AddChunks(ctx, &core.Chunk{
		DocumentId: docID,
		Index:      index,
		Contents:   contents,
		Vector:     vector,
		Concepts:   refs,
	})
	return err
}

// resolveConcepts get-or-creates each extracted concept and returns refs to them.
// Concepts that appear more than once keep their highest importance.
func (e *Engine) resolveConcepts(ctx context.Context, extracted []ai.ExtractedConcept) ([]core.ConceptRef, error) {
	if len(extracted) == 0 {
		return nil, nil
	}

	type pending struct {
		name, conceptType string
		importance        int
	}
	var unique []pending
	seen := make(map[string]int)
	for _, ec := range extracted {
		if ec.Name == "" || ec.Type == "" {
			continue
		}
		tuple := core.ConceptTuple(ec.Name, ec.Type)
		importance := min(max(ec.Importance, 1), 10)
		if idx, ok := seen[tuple]; ok {
			unique[idx].importance = max(unique[idx].importance, importance)
			continue
		}
		seen[tuple] = len(unique)
		unique = append(unique, pending{name: ec.Name, conceptType: ec.Type, importance: importance})
	}
	if len(unique) == 0 {
		return nil, nil
	}

	tuples := make([]string, len(unique))
	for i, p := range unique {
		tuples[i] = core.ConceptTuple(p.name, p.conceptType)
	}
	vectors, err := e.embedTexts(ctx, tuples)
	if err != nil {
		return nil, fmt.Errorf("embedding concepts: %w", err)
	}
	if len(vectors) != len(unique) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(unique), len(vectors))
	}

	refs := make([]core.ConceptRef, 0, len(unique))
	for i, p := range unique {
		concept, err := e.concepts.GetOrCreateConcept(ctx, p.name, p.conceptType, vectors[i])
		if err != nil {
			return nil, fmt.Errorf("storing concept %s: %w", tuples[i], err)
		}
		refs = append(refs, core.ConceptRef{ConceptId: concept.Id, Importance: p.importance})
	}
	return refs, nil
}
