package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "./dickens", cfg.Storage.WorkingDir)
	assert.Equal(t, 1, cfg.Engine.MaxAsync)
	assert.Equal(t, 8, cfg.Engine.TopK)
	assert.Equal(t, float32(0.35), cfg.Engine.MinSimilarity)
	assert.Equal(t, 8000, cfg.Engine.MaxContextRunes)
	assert.Equal(t, "./infobot.txt", cfg.Ingest.InputFile)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Ingest.Delay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingOrEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "infobot.toml", `
[server]
addr = "127.0.0.1:9000"
write_timeout = "90s"

[engine]
max_async = 4
min_similarity = 0.5

[ingest]
delay = "250ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 4, cfg.Engine.MaxAsync)
	assert.Equal(t, float32(0.5), cfg.Engine.MinSimilarity)
	assert.Equal(t, 8, cfg.Engine.TopK)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.Delay)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "infobot.yaml", `
storage:
  working_dir: /var/lib/infobot
ai:
  completion_model: llama3.1:8b
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/infobot", cfg.Storage.WorkingDir)
	assert.Equal(t, "llama3.1:8b", cfg.AI.CompletionModel)
	assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)
	assert.Equal(t, "json", cfg.Log.Format)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "infobot.json", `{}`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "broken.toml", `[server`))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	path := writeFile(t, "infobot.toml", `
[server]
addr = "127.0.0.1:9000"
`)
	t.Setenv("INFOBOT_ADDR", ":8080")
	t.Setenv("INFOBOT_WORKING_DIR", "/tmp/index")
	t.Setenv("INFOBOT_OLLAMA_HOST", "http://gpu-box:11434")
	t.Setenv("INFOBOT_COMPLETION_MODEL", "qwen2.5:14b")
	t.Setenv("INFOBOT_EMBEDDING_MODEL", "mxbai-embed-large")
	t.Setenv("INFOBOT_MAX_ASYNC", "3")
	t.Setenv("INFOBOT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/tmp/index", cfg.Storage.WorkingDir)
	assert.Equal(t, "http://gpu-box:11434", cfg.AI.EmbeddingHost)
	assert.Equal(t, "http://gpu-box:11434", cfg.AI.CompletionHost)
	assert.Equal(t, "qwen2.5:14b", cfg.AI.CompletionModel)
	assert.Equal(t, "mxbai-embed-large", cfg.AI.EmbeddingModel)
	assert.Equal(t, 3, cfg.Engine.MaxAsync)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	t.Setenv("INFOBOT_MAX_ASYNC", "many")

	cfg := Default()
	assert.ErrorIs(t, cfg.ApplyEnv(), ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"empty working dir", func(c *Config) { c.Storage.WorkingDir = "" }},
		{"max async", func(c *Config) { c.Engine.MaxAsync = 0 }},
		{"top k", func(c *Config) { c.Engine.TopK = 0 }},
		{"similarity", func(c *Config) { c.Engine.MinSimilarity = 2 }},
		{"chunk size", func(c *Config) { c.Ingest.ChunkSize = 0 }},
		{"negative delay", func(c *Config) { c.Ingest.Delay = -time.Second }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"ai model", func(c *Config) { c.AI.CompletionModel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.AI.EmbeddingHost = "http://gpu-box:11434"

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://gpu-box:11434/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, cfg.AI.CompletionModel, aiCfg.CompletionModel)
}
