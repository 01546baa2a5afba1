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
	"io"
	"time"

	"github.com/poiesic/infobot/ai"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
)

// Target selects which stored vectors are regenerated.
type Target string

const (
	TargetChunks   Target = "chunks"
	TargetConcepts Target = "concepts"
	TargetAll      Target = "all"
)

// ParseTarget converts s into a Target.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetChunks, TargetConcepts, TargetAll:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q (want chunks, concepts or all)", ErrInvalidTarget, s)
	}
}

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates chunk and concept vectors with the configured embedder.
type Reembedder struct {
	chunks    storage.ChunkRepository
	concepts  storage.ConceptRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// New creates a reembedder. progress receives human-readable progress
// output, typically os.Stderr; nil discards it.
func New(chunks storage.ChunkRepository, concepts storage.ConceptRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if concepts == nil {
		return nil, ErrConceptRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		chunks:    chunks,
		concepts:  concepts,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(chunks, concepts, embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// Run re-embeds the records selected by target. With TargetAll chunks are
// processed before concepts.
func (r *Reembedder) Run(ctx context.Context, target Target) error {
	switch target {
	case TargetChunks:
		return r.runChunks(ctx)
	case TargetConcepts:
		return r.runConcepts(ctx)
	case TargetAll:
		if err := r.runChunks(ctx); err != nil {
			return err
		}
		return r.runConcepts(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
}

func (r *Reembedder) runChunks(ctx context.Context) error {
	total, err := r.chunks.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	iterator := NewChunkIterator(r.chunks, r.config.BatchSize)
	return r.run(ctx, "chunks", total, func(process func(n int, err error) error) error {
		return iterator.ForEach(ctx, func(batch []*core.Chunk) error {
			return process(len(batch), r.processor.ProcessChunks(ctx, batch))
		})
	})
}

func (r *Reembedder) runConcepts(ctx context.Context) error {
	total, err := r.concepts.CountConcepts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count concepts: %w", err)
	}

	iterator := NewConceptIterator(r.concepts, r.config.BatchSize)
	return r.run(ctx, "concepts", total, func(process func(n int, err error) error) error {
		return iterator.ForEach(ctx, func(batch []*core.Concept) error {
			return process(len(batch), r.processor.ProcessConcepts(ctx, batch))
		})
	})
}

// run wraps a batch walk with progress reporting. walk calls process once
// per batch with the batch size and the outcome of processing it.
func (r *Reembedder) run(ctx context.Context, unit string, total int, walk func(process func(n int, err error) error) error) error {
	if total == 0 {
		fmt.Fprintf(r.progress, "No %s found in database (0 %s)\n", unit, unit)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d %s (batch size: %d)\n", total, unit, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, unit, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err := walk(func(n int, err error) error {
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += n
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d %s in %v (%.1f %s/sec)\n",
		processed, unit, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds(), unit)
	return nil
}
