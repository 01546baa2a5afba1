package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/infobot/ai"
	"github.com/poiesic/infobot/ai/mock"
	"github.com/poiesic/infobot/core"
	"github.com/poiesic/infobot/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	iiucText    = "IIUC history campus university"
	weatherText = "weather forecast rain tomorrow"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *mock.MockProvider) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	provider := mock.NewMockProvider()

	e, err := New(repos.Chunks, repos.Concepts, repos.Documents, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		e.Close()
		repos.Close()
	})
	return e, provider
}

func seed(t *testing.T, e *Engine, texts ...string) {
	t.Helper()
	for _, text := range texts {
		require.NoError(t, e.Insert(context.Background(), text))
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()
	provider := mock.NewMockProvider()

	_, err = New(nil, repos.Concepts, repos.Documents, provider)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	_, err = New(repos.Chunks, nil, repos.Documents, provider)
	assert.ErrorIs(t, err, ErrConceptRepositoryRequired)
	_, err = New(repos.Chunks, repos.Concepts, nil, provider)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
	_, err = New(repos.Chunks, repos.Concepts, repos.Documents, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestNew_Options(t *testing.T) {
	e, _ := newTestEngine(t, WithMaxAsync(0), WithTopK(3), WithMinSimilarity(0.5), WithMaxContextRunes(100))

	assert.Equal(t, 1, e.MaxAsync())
	assert.Equal(t, 3, e.topK)
	assert.Equal(t, float32(0.5), e.minSimilarity)
	assert.Equal(t, 100, e.maxContextRunes)
}

func TestInsert_IndexesChunkAndConcepts(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Insert(ctx, iiucText))

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Documents: 1, Chunks: 1, Concepts: 4}, stats)

	doc, err := e.documents.GetDocument(ctx, core.IDFromContent(iiucText))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.ChunkCount)

	chunk, err := e.chunks.GetChunk(ctx, core.ChunkID(doc.Id, 0, iiucText))
	require.NoError(t, err)
	assert.Len(t, chunk.Vector, mock.DefaultDim)
	assert.Len(t, chunk.Concepts, 4)
	assert.Equal(t, 10, chunk.Concepts[0].Importance)
}

func TestInsert_Idempotent(t *testing.T) {
	e, provider := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Insert(ctx, iiucText))
	calls := provider.GetMockEmbedder().CallCount()

	require.NoError(t, e.Insert(ctx, iiucText))
	assert.Equal(t, calls, provider.GetMockEmbedder().CallCount())

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, 1, stats.Documents)
}

func TestInsert_SplitsLongText(t *testing.T) {
	e, _ := newTestEngine(t, WithChunkSize(10))

	require.NoError(t, e.Insert(context.Background(), strings.Repeat("abcde ", 5)))

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Chunks)
}

func TestInsert_Errors(t *testing.T) {
	e, provider := newTestEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.Insert(ctx, "   "), ErrEmptyText)

	boom := errors.New("embedding endpoint down")
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}
	assert.ErrorIs(t, e.Insert(ctx, iiucText), boom)

	// A failed insert leaves no document behind, so a retry can succeed
	provider.GetMockEmbedder().Reset()
	require.NoError(t, e.Insert(ctx, iiucText))
	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
}

func TestResolveConcepts_DedupesAndClamps(t *testing.T) {
	e, _ := newTestEngine(t)

	refs, err := e.resolveConcepts(context.Background(), []ai.ExtractedConcept{
		{Name: "iiuc", Type: "organization", Importance: 4},
		{Name: "iiuc", Type: "organization", Importance: 15},
		{Name: "", Type: "place", Importance: 5},
	})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 10, refs[0].Importance)
	assert.Equal(t, core.IDFromContent("(organization,iiuc)"), refs[0].ConceptId)
}

func TestCall_RespectsMaxAsync(t *testing.T) {
	e, provider := newTestEngine(t, WithMaxAsync(2))

	var inFlight, peak atomic.Int32
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return []float32{1}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.embedText(context.Background(), "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 8, provider.GetMockEmbedder().CallCount())
}

func TestCall_AfterClose(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Close())

	_, err := e.embedText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCall_CancelledContext(t *testing.T) {
	e, provider := newTestEngine(t)
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Query(ctx, "anything", core.ModeNaive)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCall_CancelledWhileQueued(t *testing.T) {
	e, provider := newTestEngine(t, WithMaxAsync(1))

	started := make(chan struct{})
	release := make(chan struct{})
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		close(started)
		<-release
		return "answer", nil
	}
	var embedCalls atomic.Int32
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedCalls.Add(1)
		return []float32{1}, nil
	}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = e.generate(context.Background(), "", "occupies the only slot")
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	queued := make(chan error, 1)
	go func() {
		_, err := e.embedText(ctx, "waits for a slot")
		queued <- err
	}()

	// The deadline passes while the second call is still waiting for a worker
	time.Sleep(60 * time.Millisecond)
	close(release)
	<-firstDone

	select {
	case err := <-queued:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("queued call did not return after its context expired")
	}
	assert.Zero(t, embedCalls.Load())
}

func TestStats_Empty(t *testing.T) {
	e, _ := newTestEngine(t)

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
