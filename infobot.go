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

package infobot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/infobot/ai"
	"github.com/poiesic/infobot/ai/openai"
	"github.com/poiesic/infobot/engine"
	"github.com/poiesic/infobot/gateway"
	"github.com/poiesic/infobot/httpapi"
	"github.com/poiesic/infobot/ingest"
	"github.com/poiesic/infobot/reembed"
	"github.com/poiesic/infobot/storage/badger"
)

// Service wires storage, model endpoints, the engine and the gateway into
// one owned unit. It replaces any process-wide engine instance: callers open
// a Service and pass it, or the pieces it exposes, to whatever needs them.
type Service struct {
	repos    *badger.Repositories
	provider ai.AIProvider
	engine   *engine.Engine
	gateway  *gateway.Gateway
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	engineOpts []engine.Option
	logger     *slog.Logger
}

// WithAIConfig sets the model endpoint configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an existing AI provider instead of building one from
// the AI config. The Service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithEngineOptions passes options through to engine.New.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithLogger sets the logger shared by every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open opens the index in workingDir and builds the query stack on top of
// it. An empty workingDir keeps the index in memory.
func Open(workingDir string, opts ...Option) (*Service, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	var repos *badger.Repositories
	var err error
	if workingDir == "" {
		repos, err = badger.NewMemoryRepositories()
	} else {
		repos, err = badger.OpenRepositories(workingDir)
	}
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	provider := o.provider
	if provider == nil {
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			repos.Close()
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
	}

	engineOpts := append([]engine.Option{engine.WithLogger(o.logger)}, o.engineOpts...)
	eng, err := engine.New(repos.Chunks, repos.Concepts, repos.Documents, provider, engineOpts...)
	if err != nil {
		provider.Close()
		repos.Close()
		return nil, err
	}

	gw, err := gateway.New(eng, gateway.WithLogger(o.logger))
	if err != nil {
		eng.Close()
		provider.Close()
		repos.Close()
		return nil, err
	}

	return &Service{
		repos:    repos,
		provider: provider,
		engine:   eng,
		gateway:  gw,
		logger:   o.logger,
	}, nil
}

// Close releases the engine pool, the AI provider and the index.
func (s *Service) Close() error {
	var errs []error
	if err := s.engine.Close(); err != nil {
		s.logger.Error("error closing engine", "err", err)
		errs = append(errs, err)
	}
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := s.repos.Close(); err != nil {
		s.logger.Error("error closing index", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) Engine() *engine.Engine {
	return s.engine
}

func (s *Service) Gateway() *gateway.Gateway {
	return s.gateway
}

func (s *Service) Repositories() *badger.Repositories {
	return s.repos
}

// NewIngestDriver creates an ingestion driver that inserts into the engine.
func (s *Service) NewIngestDriver(opts ...ingest.Option) (*ingest.Driver, error) {
	return ingest.NewDriver(s.engine, append([]ingest.Option{ingest.WithLogger(s.logger)}, opts...)...)
}

// NewServer creates the HTTP facade for the gateway.
func (s *Service) NewServer(opts ...httpapi.Option) (*httpapi.Server, error) {
	return httpapi.New(s.gateway, append([]httpapi.Option{httpapi.WithLogger(s.logger)}, opts...)...)
}

// NewReembedder creates a reembedder that uses the service's embedder.
func (s *Service) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.New(s.repos.Chunks, s.repos.Concepts, s.provider.Embedder(), config, progress)
}
