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

package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/engine"
)

// Status is the outcome recorded in an Envelope.
type Status string

const (
	// StatusSuccess marks an envelope carrying an answer in Response.
	StatusSuccess Status = "success"
	// StatusError marks an envelope carrying a message in Error.
	StatusError Status = "error"
)

// InvalidModeMessage is the error text returned for an unknown mode.
var InvalidModeMessage = "Invalid mode. Must be one of: " + strings.Join(core.ModeNames(), ", ")

// ErrQuerierRequired is returned when no querier is provided.
var ErrQuerierRequired = errors.New("querier required")

// Querier answers a question in a given mode.
type Querier interface {
	Query(ctx context.Context, question string, mode core.Mode) (*engine.Result, error)
}

// Source identifies a chunk that contributed to an answer.
type Source struct {
	DocumentID core.ID `json:"document_id"`
	ChunkID    core.ID `json:"chunk_id"`
	Index      int     `json:"index"`
	Score      float32 `json:"score"`
}

// Envelope is the response shape for every query, successful or not.
// Exactly one of Response and Error is set. Mode echoes the request verbatim.
type Envelope struct {
	Status   Status   `json:"status"`
	Response *string  `json:"response"`
	Error    *string  `json:"error"`
	Mode     string   `json:"mode"`
	Sources  []Source `json:"sources,omitempty"`
}

// Gateway validates query modes, delegates to a Querier and shapes the result.
type Gateway struct {
	querier Querier
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// New creates a gateway in front of querier.
func New(querier Querier, opts ...Option) (*Gateway, error) {
	if querier == nil {
		return nil, ErrQuerierRequired
	}
	g := &Gateway{querier: querier, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "gateway")
	return g, nil
}

// Query answers question in mode and never fails: problems are reported
// inside the returned Envelope.
func (g *Gateway) Query(ctx context.Context, question, mode string) Envelope {
	return g.query(ctx, question, mode, false)
}

// QueryWithSources is Query with the contributing chunks listed in the envelope.
func (g *Gateway) QueryWithSources(ctx context.Context, question, mode string) Envelope {
	return g.query(ctx, question, mode, true)
}

func (g *Gateway) query(ctx context.Context, question, mode string, withSources bool) Envelope {
	parsed, err := core.ParseMode(mode)
	if err != nil {
		return errorEnvelope(mode, InvalidModeMessage)
	}

	result, err := g.querier.Query(ctx, question, parsed)
	if err != nil {
		g.logger.Error("error processing query", "mode", mode, "err", err)
		return errorEnvelope(mode, err.Error())
	}

	var answer string
	var sources []Source
	if result != nil {
		answer = ScrubLogLines(result.Answer)
		if withSources {
			sources = toSources(result.Sources)
		}
	}

	return Envelope{
		Status:   StatusSuccess,
		Response: &answer,
		Mode:     mode,
		Sources:  sources,
	}
}

func errorEnvelope(mode, message string) Envelope {
	return Envelope{
		Status: StatusError,
		Error:  &message,
		Mode:   mode,
	}
}

func toSources(results []*core.SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		if r == nil || r.Chunk == nil {
			continue
		}
		sources = append(sources, Source{
			DocumentID: r.Chunk.DocumentId,
			ChunkID:    r.Chunk.Id,
			Index:      r.Chunk.Index,
			Score:      r.Score,
		})
	}
	return sources
}
