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
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

const (
	conceptScoreCap  = 1.2
	bothSourcesBoost = 1.5
	verbatimBoost    = 0.3
)

// retrieve selects and scores chunks for a question according to mode.
func (e *Engine) retrieve(ctx context.Context, question string, mode core.Mode) ([]*core.SearchResult, error) {
	switch mode {
	case core.ModeNaive:
		return e.retrieveNaive(ctx, question)
	case core.ModeLocal:
		scores, err := e.localScores(ctx, question)
		if err != nil {
			return nil, err
		}
		return e.collect(ctx, scores, question, false)
	case core.ModeGlobal:
		scores, err := e.globalScores(ctx, question)
		if err != nil {
			return nil, err
		}
		return e.collect(ctx, scores, question, false)
	case core.ModeHybrid:
		return e.retrieveHybrid(ctx, question)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, mode)
	}
}

// retrieveNaive matches the question embedding directly against chunk vectors.
func (e *Engine) retrieveNaive(ctx context.Context, question string) ([]*core.SearchResult, error) {
	vector, err := e.embedText(ctx, question)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	results, err := e.chunks.FindSimilar(ctx, vector, e.minSimilarity, e.topK)
	if err != nil {
		e.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	return results, nil
}

// localScores finds chunks through concepts named in the question.
// A chunk scores the summed importance of its matched concepts, scaled so
// that a total importance of 10 or more reaches conceptScoreCap.
func (e *Engine) localScores(ctx context.Context, question string) (map[core.ID]float32, error) {
	extracted, err := e.extractConcepts(ctx, question)
	if err != nil {
		e.logger.Error("error extracting concepts from query", "err", err)
		return nil, err
	}

	importance := make(map[core.ID]int)
	for _, ec := range extracted {
		tuple := core.ConceptTuple(ec.Name, ec.Type)
		concept, err := e.concepts.GetConcept(ctx, core.IDFromContent(tuple))
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				e.logger.Warn("error looking up concept", "tuple", tuple, "err", err)
			}
			continue
		}

		chunkIDs, err := e.chunks.GetChunksByConcept(ctx, concept.Id)
		if err != nil {
			e.logger.Warn("failed to get chunks for concept", "concept", concept.Id, "err", err)
			continue
		}
		for _, id := range chunkIDs {
			importance[id] += max(ec.Importance, 1)
		}
	}

	scores := make(map[core.ID]float32, len(importance))
	for id, total := range importance {
		scores[id] = conceptScoreCap * float32(min(total, 10)) / 10
	}
	return scores, nil
}

// globalScores matches the question embedding against concept vectors and
// expands the nearest concepts to their chunks. A chunk keeps the best
// similarity among the concepts that lead to it.
func (e *Engine) globalScores(ctx context.Context, question string) (map[core.ID]float32, error) {
	vector, err := e.embedText(ctx, question)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	matches, err := e.concepts.FindSimilarConcepts(ctx, vector, e.minSimilarity, e.topK)
	if err != nil {
		e.logger.Error("error querying for similar concepts", "err", err)
		return nil, err
	}

	scores := make(map[core.ID]float32)
	for _, match := range matches {
		chunkIDs, err := e.chunks.GetChunksByConcept(ctx, match.Concept.Id)
		if err != nil {
			e.logger.Warn("failed to get chunks for concept", "concept", match.Concept.Id, "err", err)
			continue
		}
		for _, id := range chunkIDs {
			scores[id] = max(scores[id], match.Score)
		}
	}
	return scores, nil
}

// retrieveHybrid merges local and global retrieval. Chunks found both ways
// are boosted; chunks containing every query word get a verbatim boost.
func (e *Engine) retrieveHybrid(ctx context.Context, question string) ([]*core.SearchResult, error) {
	local, err := e.localScores(ctx, question)
	if err != nil {
		return nil, err
	}
	global, err := e.globalScores(ctx, question)
	if err != nil {
		return nil, err
	}

	scores := make(map[core.ID]float32, len(local)+len(global))
	for id, score := range local {
		scores[id] = score
	}
	for id, score := range global {
		if localScore, ok := local[id]; ok {
			scores[id] = bothSourcesBoost * max(localScore, score)
		} else {
			scores[id] = score
		}
	}
	return e.collect(ctx, scores, question, true)
}

// collect loads scored chunks and returns the top K, highest score first.
func (e *Engine) collect(ctx context.Context, scores map[core.ID]float32, question string, boostVerbatim bool) ([]*core.SearchResult, error) {
	if len(scores) == 0 {
		return []*core.SearchResult{}, nil
	}

	ids := make([]core.ID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	chunks, err := e.chunks.GetChunks(ctx, ids...)
	if err != nil {
		e.logger.Error("error retrieving chunks", "chunks", len(ids), "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		score := scores[c.Id]
		if boostVerbatim && containsAllQueryWords(c.Contents, question) {
			score += verbatimBoost
		}
		results = append(results, &core.SearchResult{Chunk: c, Score: score})
	}

	// Ties fall back to document order
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Chunk.DocumentId, b.Chunk.DocumentId); c != 0 {
			return c
		}
		return cmp.Compare(a.Chunk.Index, b.Chunk.Index)
	})
	if len(results) > e.topK {
		results = results[:e.topK]
	}
	return results, nil
}
