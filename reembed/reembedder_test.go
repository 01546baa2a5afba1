package reembed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/poiesic/infobot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	repos := setupTestRepos(t)

	_, err := New(nil, repos.Concepts, &mockEmbedder{}, nil, nil)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	_, err = New(repos.Chunks, nil, &mockEmbedder{}, nil, nil)
	assert.ErrorIs(t, err, ErrConceptRepositoryRequired)
	_, err = New(repos.Chunks, repos.Concepts, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	r, err := New(repos.Chunks, repos.Concepts, &mockEmbedder{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), r.config)
}

func TestParseTarget(t *testing.T) {
	for _, s := range []string{"chunks", "concepts", "all"} {
		target, err := ParseTarget(s)
		require.NoError(t, err)
		assert.Equal(t, Target(s), target)
	}
	_, err := ParseTarget("records")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestReembedder_RunAll(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedChunks(t, repos, 10)
	seedConcepts(t, repos, 4)

	var buf bytes.Buffer
	r, err := New(repos.Chunks, repos.Concepts, &mockEmbedder{}, testConfig(), &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx, TargetAll))

	err = repos.Chunks.ForEachChunk(ctx, 0, func(chunks []*core.Chunk) error {
		for _, c := range chunks {
			assert.InDelta(t, 1.0, magnitude(c.Vector), 0.01, "chunk %d should be normalized", c.Id)
		}
		return nil
	})
	require.NoError(t, err)

	concepts, err := repos.Concepts.GetAllConcepts(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 4)
	for _, c := range concepts {
		assert.InDelta(t, 1.0, magnitude(c.Vector), 0.01)
	}

	output := buf.String()
	assert.Contains(t, output, "10/10")
	assert.Contains(t, output, "4/4")
	assert.Contains(t, output, "Processed 10 chunks")
	assert.Contains(t, output, "Processed 4 concepts")
}

func TestReembedder_RunSingleTarget(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	seedChunks(t, repos, 2)
	concepts := seedConcepts(t, repos, 2)

	r, err := New(repos.Chunks, repos.Concepts, &mockEmbedder{}, testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx, TargetChunks))

	concept, err := repos.Concepts.GetConcept(ctx, concepts[0].Id)
	require.NoError(t, err)
	assert.Empty(t, concept.Vector, "concepts must be left alone")
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	repos := setupTestRepos(t)

	var buf bytes.Buffer
	embedder := &mockEmbedder{}
	r, err := New(repos.Chunks, repos.Concepts, embedder, DefaultConfig(), &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background(), TargetAll))

	assert.Contains(t, buf.String(), "0 chunks")
	assert.Contains(t, buf.String(), "0 concepts")
	assert.Zero(t, embedder.calls)
}

func TestReembedder_InvalidTarget(t *testing.T) {
	repos := setupTestRepos(t)
	r, err := New(repos.Chunks, repos.Concepts, &mockEmbedder{}, nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Run(context.Background(), Target("records")), ErrInvalidTarget)
}

func TestReembedder_ContextCancellation(t *testing.T) {
	repos := setupTestRepos(t)
	seedChunks(t, repos, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if embedder.calls == 2 {
			cancel()
		}
		result := make([][]float32, len(texts))
		for i := range result {
			result[i] = []float32{1.0, 0.0, 0.0}
		}
		return result, nil
	}

	r, err := New(repos.Chunks, repos.Concepts, embedder, testConfig(), nil)
	require.NoError(t, err)

	err = r.Run(ctx, TargetChunks)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, embedder.calls)
}
