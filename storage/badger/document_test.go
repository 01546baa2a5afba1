package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	earlier := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	_, err := repos.Documents.AddDocument(ctx, &core.Document{Id: 2, Source: "later.txt", ChunkCount: 1})
	require.NoError(t, err)
	_, err = repos.Documents.AddDocument(ctx, &core.Document{Id: 1, Source: "earlier.txt", ChunkCount: 3, InsertedAt: earlier})
	require.NoError(t, err)

	got, err := repos.Documents.GetDocument(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "earlier.txt", got.Source)
	assert.True(t, got.InsertedAt.Equal(earlier))

	docs, err := repos.Documents.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "earlier.txt", docs[0].Source)
	assert.Equal(t, "later.txt", docs[1].Source)

	count, err := repos.Documents.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = repos.Documents.GetDocument(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repos.Documents.AddDocument(ctx, &core.Document{Id: 3, ChunkCount: -1})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}
