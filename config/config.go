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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/infobot/ai"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	AI      AIConfig      `toml:"ai" yaml:"ai"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Ingest  IngestConfig  `toml:"ingest" yaml:"ingest"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `toml:"cors_origins" yaml:"cors_origins"`
}

type StorageConfig struct {
	// WorkingDir holds the badger index.
	WorkingDir string `toml:"working_dir" yaml:"working_dir"`
}

type AIConfig struct {
	EmbeddingHost   string  `toml:"embedding_host" yaml:"embedding_host"`
	CompletionHost  string  `toml:"completion_host" yaml:"completion_host"`
	EmbeddingModel  string  `toml:"embedding_model" yaml:"embedding_model"`
	CompletionModel string  `toml:"completion_model" yaml:"completion_model"`
	EmbeddingDim    int     `toml:"embedding_dim" yaml:"embedding_dim"`
	MaxTokens       int     `toml:"max_tokens" yaml:"max_tokens"`
	MinImportance   int     `toml:"min_importance" yaml:"min_importance"`
	Temperature     float64 `toml:"temperature" yaml:"temperature"`
}

type EngineConfig struct {
	MaxAsync        int     `toml:"max_async" yaml:"max_async"`
	TopK            int     `toml:"top_k" yaml:"top_k"`
	MinSimilarity   float32 `toml:"min_similarity" yaml:"min_similarity"`
	MaxContextRunes int     `toml:"max_context_runes" yaml:"max_context_runes"`
}

type IngestConfig struct {
	InputFile string        `toml:"input_file" yaml:"input_file"`
	ChunkSize int           `toml:"chunk_size" yaml:"chunk_size"`
	Delay     time.Duration `toml:"delay" yaml:"delay"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	aiDefaults := ai.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Addr:            "0.0.0.0:8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Storage: StorageConfig{WorkingDir: "./dickens"},
		AI: AIConfig{
			EmbeddingHost:   aiDefaults.EmbeddingHost,
			CompletionHost:  aiDefaults.CompletionHost,
			EmbeddingModel:  aiDefaults.EmbeddingModel,
			CompletionModel: aiDefaults.CompletionModel,
			EmbeddingDim:    aiDefaults.EmbeddingDim,
			MaxTokens:       aiDefaults.MaxTokens,
			MinImportance:   aiDefaults.MinImportance,
			Temperature:     aiDefaults.Temperature,
		},
		Engine: EngineConfig{
			MaxAsync:        1,
			TopK:            8,
			MinSimilarity:   0.35,
			MaxContextRunes: 8000,
		},
		Ingest: IngestConfig{
			InputFile: "./infobot.txt",
			ChunkSize: 1000,
			Delay:     100 * time.Millisecond,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads config: defaults, then the file at path if it exists.
// Environment overrides are applied separately by ApplyEnv.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from INFOBOT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("INFOBOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INFOBOT_WORKING_DIR"); v != "" {
		c.Storage.WorkingDir = v
	}
	if v := os.Getenv("INFOBOT_OLLAMA_HOST"); v != "" {
		c.AI.EmbeddingHost = v
		c.AI.CompletionHost = v
	}
	if v := os.Getenv("INFOBOT_COMPLETION_MODEL"); v != "" {
		c.AI.CompletionModel = v
	}
	if v := os.Getenv("INFOBOT_EMBEDDING_MODEL"); v != "" {
		c.AI.EmbeddingModel = v
	}
	if v := os.Getenv("INFOBOT_MAX_ASYNC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: INFOBOT_MAX_ASYNC: %w", ErrInvalidConfig, err)
		}
		c.Engine.MaxAsync = n
	}
	if v := os.Getenv("INFOBOT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Server.Addr == "":
		return invalid("server.addr is required")
	case c.Server.ReadTimeout <= 0, c.Server.WriteTimeout <= 0, c.Server.IdleTimeout <= 0:
		return invalid("server timeouts must be positive")
	case c.Server.ShutdownTimeout <= 0:
		return invalid("server.shutdown_timeout must be positive")
	case c.Storage.WorkingDir == "":
		return invalid("storage.working_dir is required")
	case c.Engine.MaxAsync < 1:
		return invalid("engine.max_async must be at least 1, got %d", c.Engine.MaxAsync)
	case c.Engine.TopK < 1:
		return invalid("engine.top_k must be at least 1, got %d", c.Engine.TopK)
	case c.Engine.MinSimilarity < -1 || c.Engine.MinSimilarity > 1:
		return invalid("engine.min_similarity must be between -1 and 1")
	case c.Engine.MaxContextRunes < 1:
		return invalid("engine.max_context_runes must be positive")
	case c.Ingest.ChunkSize < 1:
		return invalid("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize)
	case c.Ingest.Delay < 0:
		return invalid("ingest.delay cannot be negative")
	case c.Log.Format != "text" && c.Log.Format != "json":
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig converts the [ai] section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithCompletionHost(c.AI.CompletionHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithCompletionModel(c.AI.CompletionModel),
		ai.WithEmbeddingDim(c.AI.EmbeddingDim),
		ai.WithMaxTokens(c.AI.MaxTokens),
		ai.WithMinImportance(c.AI.MinImportance),
		ai.WithTemperature(c.AI.Temperature),
	)
}

// SlogLevel parses Level as a slog level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
