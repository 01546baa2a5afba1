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

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/infobot/chunk"
)

const defaultDelay = 100 * time.Millisecond

// Inserter accepts text for indexing.
type Inserter interface {
	Insert(ctx context.Context, text string) error
}

// Report summarizes one ingestion run.
type Report struct {
	Source   string `json:"source"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Failed   int    `json:"failed"`
}

// ProgressFunc is called after each chunk with the number of chunks handled so far.
type ProgressFunc func(done, total int)

// Driver splits documents into chunks and hands them to an Inserter one at a time.
type Driver struct {
	inserter  Inserter
	chunkSize int
	delay     time.Duration
	progress  ProgressFunc
	logger    *slog.Logger

	mu   sync.Mutex
	last Report
}

// Option configures a Driver.
type Option func(*Driver) error

// WithChunkSize sets the chunk window in runes.
// Default is chunk.DefaultSize.
func WithChunkSize(n int) Option {
	return func(d *Driver) error {
		if n < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", n)
		}
		d.chunkSize = n
		return nil
	}
}

// WithDelay sets the pause after each successfully inserted chunk.
// Default is 100ms; zero disables the pause.
func WithDelay(delay time.Duration) Option {
	return func(d *Driver) error {
		if delay < 0 {
			delay = 0
		}
		d.delay = delay
		return nil
	}
}

// WithProgress sets a callback invoked after every chunk.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Driver) error {
		d.progress = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDriver creates an ingestion driver that feeds inserter.
func NewDriver(inserter Inserter, opts ...Option) (*Driver, error) {
	if inserter == nil {
		return nil, ErrInserterRequired
	}

	d := &Driver{
		inserter:  inserter,
		chunkSize: chunk.DefaultSize,
		delay:     defaultDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "ingest")

	return d, nil
}

// LastReport returns the report of the most recent run.
func (d *Driver) LastReport() Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// IngestFile reads path and ingests its text.
// A missing or empty file yields false and an error; no chunk is submitted.
// Otherwise the result is true once every chunk has been tried, even if some
// failed. LastReport carries the failure count.
func (d *Driver) IngestFile(ctx context.Context, path string) (bool, error) {
	content, err := ReadText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d.logger.Error("input file not found", "path", path)
			return false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		d.logger.Error("error reading input file", "path", path, "err", err)
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return d.IngestText(ctx, path, content)
}

// IngestText ingests text that has already been read. source labels log lines
// and the report.
func (d *Driver) IngestText(ctx context.Context, source, text string) (bool, error) {
	report := Report{Source: source}
	defer func() { d.setReport(report) }()

	text = strings.TrimSpace(text)
	if text == "" {
		d.logger.Error("input is empty", "source", source)
		return false, fmt.Errorf("%w: %s", ErrEmptyInput, source)
	}

	report.Total = chunk.Count(text, d.chunkSize)
	d.logger.Info("preparing to insert data", "source", source)
	d.logger.Info("total number of chunks", "chunks", report.Total)

	i := 0
	for piece := range chunk.Chunks(text, d.chunkSize) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		i++
		position := fmt.Sprintf("%d/%d", i, report.Total)

		if err := d.inserter.Insert(ctx, piece); err != nil {
			report.Failed++
			d.logger.Error("error inserting chunk", "chunk", position, "err", err)
		} else {
			report.Inserted++
			d.logger.Info("inserted chunk", "chunk", position)
			if i < report.Total {
				if err := d.pause(ctx); err != nil {
					return false, err
				}
			}
		}

		if d.progress != nil {
			d.progress(i, report.Total)
		}
	}

	d.logger.Info("data insertion completed", "inserted", report.Inserted, "failed", report.Failed)
	return true, nil
}

// IngestGlob ingests every regular file under root whose slash-separated
// relative path matches pattern, in lexical order. It reports true only when
// every file was ingested.
func (d *Driver) IngestGlob(ctx context.Context, root, pattern string) (bool, error) {
	if !doublestar.ValidatePattern(pattern) {
		return false, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
		if err == nil && matched {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrFileNotFound, root)
		}
		return false, err
	}
	if len(files) == 0 {
		d.logger.Warn("no files matched", "root", root, "pattern", pattern)
		return false, fmt.Errorf("%w: %s in %s", ErrNoMatches, pattern, root)
	}

	allOK := true
	var errs []error
	for _, path := range files {
		ok, err := d.IngestFile(ctx, path)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if !ok {
			allOK = false
			errs = append(errs, err)
		}
	}
	return allOK, errors.Join(errs...)
}

// pause waits for the configured delay or until ctx is done.
func (d *Driver) pause(ctx context.Context) error {
	if d.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) setReport(report Report) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = report
}
