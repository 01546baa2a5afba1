package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChunks_AssignsIDs(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	chunk := &core.Chunk{DocumentId: 42, Index: 0, Contents: "IIUC history"}
	added, err := repos.Chunks.AddChunks(ctx, chunk)
	require.NoError(t, err)
	require.Len(t, added, 1)

	assert.Equal(t, core.ChunkID(42, 0, "IIUC history"), added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	got, err := repos.Chunks.GetChunk(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "IIUC history", got.Contents)
}

func TestAddChunks_RejectsInvalid(t *testing.T) {
	repos := newTestRepos(t)

	_, err := repos.Chunks.AddChunks(context.Background(), &core.Chunk{DocumentId: 1, Contents: ""})
	assert.ErrorIs(t, err, core.ErrInvalidChunk)

	count, err := repos.Chunks.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddChunks_OverwriteReindexesConcepts(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	chunk := &core.Chunk{
		Id:       7,
		Contents: "text",
		Concepts: []core.ConceptRef{{ConceptId: 100, Importance: 5}},
	}
	_, err := repos.Chunks.AddChunks(ctx, chunk)
	require.NoError(t, err)

	replacement := &core.Chunk{
		Id:       7,
		Contents: "text",
		Concepts: []core.ConceptRef{{ConceptId: 200, Importance: 5}},
	}
	_, err = repos.Chunks.AddChunks(ctx, replacement)
	require.NoError(t, err)

	ids, err := repos.Chunks.GetChunksByConcept(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = repos.Chunks.GetChunksByConcept(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{7}, ids)
}

func TestGetChunk_NotFound(t *testing.T) {
	repos := newTestRepos(t)

	_, err := repos.Chunks.GetChunk(context.Background(), 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetChunks_SkipsMissing(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	added, err := repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: 1, Index: 0, Contents: "a"},
		&core.Chunk{DocumentId: 1, Index: 1, Contents: "b"},
	)
	require.NoError(t, err)

	got, err := repos.Chunks.GetChunks(ctx, added[1].Id, 999, added[0].Id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Contents)
	assert.Equal(t, "a", got[1].Contents)
}

func TestUpdateChunks(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	added, err := repos.Chunks.AddChunks(ctx, &core.Chunk{
		DocumentId: 1,
		Contents:   "a",
		Concepts:   []core.ConceptRef{{ConceptId: 1, Importance: 3}},
	})
	require.NoError(t, err)

	chunk := added[0]
	chunk.Vector = []float32{1, 0}
	chunk.Concepts = []core.ConceptRef{{ConceptId: 2, Importance: 9}}
	_, err = repos.Chunks.UpdateChunks(ctx, chunk)
	require.NoError(t, err)

	got, err := repos.Chunks.GetChunk(ctx, chunk.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, got.Vector)

	ids, err := repos.Chunks.GetChunksByConcept(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = repos.Chunks.GetChunksByConcept(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{chunk.Id}, ids)

	_, err = repos.Chunks.UpdateChunks(ctx, &core.Chunk{Id: 999, Contents: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestForEachChunk_Batches(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	for i := range 7 {
		_, err := repos.Chunks.AddChunks(ctx, &core.Chunk{DocumentId: 1, Index: i, Contents: fmt.Sprintf("chunk %d", i)})
		require.NoError(t, err)
	}

	var sizes []int
	seen := make(map[core.ID]bool)
	err := repos.Chunks.ForEachChunk(ctx, 3, func(batch []*core.Chunk) error {
		sizes = append(sizes, len(batch))
		for _, c := range batch {
			seen[c.Id] = true
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Len(t, seen, 7)
}

func TestForEachChunk_StopsOnError(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	for i := range 4 {
		_, err := repos.Chunks.AddChunks(ctx, &core.Chunk{DocumentId: 1, Index: i, Contents: "c"})
		require.NoError(t, err)
	}

	calls := 0
	err := repos.Chunks.ForEachChunk(ctx, 2, func([]*core.Chunk) error {
		calls++
		return storage.ErrInvalidQuery
	})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	assert.Equal(t, 1, calls)
}
