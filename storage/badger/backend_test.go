package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_CreatesWorkingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dickens")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := OpenBackend(path, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = backend.FindSimilar(context.Background(), []float32{1}, 0, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFindSimilar_NoChunks(t *testing.T) {
	repos := newTestRepos(t)

	results, err := repos.Backend.FindSimilar(context.Background(), []float32{0.1, 0.2, 0.3}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func addVectors(t *testing.T, repos *Repositories, vectors map[string][]float32) {
	t.Helper()
	i := 0
	for contents, vector := range vectors {
		_, err := repos.Chunks.AddChunks(context.Background(), &core.Chunk{
			DocumentId: 1,
			Index:      i,
			Contents:   contents,
			Vector:     vector,
		})
		require.NoError(t, err)
		i++
	}
}

func TestFindSimilar_RanksAndFilters(t *testing.T) {
	repos := newTestRepos(t)
	addVectors(t, repos, map[string][]float32{
		"high":      {1.0, 0.0, 0.0},
		"medium":    {0.7, 0.3, 0.0},
		"low":       {0.3, 0.7, 0.0},
		"unrelated": {0.0, 0.0, 1.0},
		"no vector": nil,
	})
	ctx := context.Background()
	query := []float32{1.0, 0.0, 0.0}

	results, err := repos.Backend.FindSimilar(ctx, query, 0.2, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "high", results[0].Chunk.Contents)
	assert.Equal(t, "medium", results[1].Chunk.Contents)
	assert.Equal(t, "low", results[2].Chunk.Contents)

	results, err = repos.Backend.FindSimilar(ctx, query, 0.95, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = repos.Backend.FindSimilar(ctx, query, 0.0, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindSimilar_Cancelled(t *testing.T) {
	repos := newTestRepos(t)
	addVectors(t, repos, map[string][]float32{"a": {1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repos.Backend.FindSimilar(ctx, []float32{1}, 0, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindSimilarConcepts(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	_, err := repos.Concepts.AddConcepts(ctx,
		&core.Concept{Name: "iiuc", Type: "organization", Vector: []float32{1, 0}},
		&core.Concept{Name: "chittagong", Type: "place", Vector: []float32{0.6, 0.8}},
		&core.Concept{Name: "unembedded", Type: "place"},
	)
	require.NoError(t, err)

	matches, err := repos.Backend.FindSimilarConcepts(ctx, []float32{1, 0}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "iiuc", matches[0].Concept.Name)
	assert.InDelta(t, 0.6, matches[1].Score, 1e-6)
}

func TestWithTransaction(t *testing.T) {
	repos := newTestRepos(t)

	called := false
	err := repos.Chunks.WithTransaction(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	err = repos.Chunks.WithTransaction(context.Background(), func(ctx context.Context) error {
		return storage.ErrInvalidQuery
	})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestOpenRepositories_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repos, err := OpenRepositories(dir)
	require.NoError(t, err)
	_, err = repos.Chunks.AddChunks(ctx, &core.Chunk{DocumentId: 1, Contents: "persisted"})
	require.NoError(t, err)
	require.NoError(t, repos.Close())

	repos, err = OpenRepositories(dir)
	require.NoError(t, err)
	defer repos.Close()

	count, err := repos.Chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
