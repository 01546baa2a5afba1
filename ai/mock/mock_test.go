package mock

import (
	"context"
	"testing"

	"github.com/poiesic/infobot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagOfWordsVector(t *testing.T) {
	a := BagOfWordsVector("history of IIUC", DefaultDim)
	b := BagOfWordsVector("IIUC history", DefaultDim)
	c := BagOfWordsVector("weather forecast tomorrow", DefaultDim)

	assert.InDelta(t, 1.0, core.DotProduct(a, a), 1e-5)
	assert.Greater(t, core.DotProduct(a, b), core.DotProduct(a, c))
	assert.Equal(t, make([]float32, 8), BagOfWordsVector("", 8))
}

func TestMockEmbedder(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	v, err := m.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	assert.Len(t, v, DefaultDim)

	vs, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	assert.Equal(t, 2, m.CallCount())

	m.Dim = 4
	v, err = m.EmbedText(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, v, 4)

	m.Reset()
	assert.Zero(t, m.CallCount())
}

func TestMockConceptExtractor(t *testing.T) {
	m := NewMockConceptExtractor()

	got, err := m.ExtractConcepts(context.Background(), "Tell me the history of IIUC, the IIUC campus.")
	require.NoError(t, err)

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
		assert.Equal(t, "keyword", c.Type)
	}
	assert.Equal(t, []string{"history", "iiuc", "campus"}, names)
	assert.Equal(t, 10, got[0].Importance)
	assert.Equal(t, 8, got[2].Importance)
}

func TestMockGenerator(t *testing.T) {
	m := NewMockGenerator()

	out, err := m.Generate(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "prompt", out)

	call, ok := m.LastCall()
	require.True(t, ok)
	assert.Equal(t, GenerateCall{System: "sys", Prompt: "prompt"}, call)

	m.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "fixed", nil
	}
	out, err = m.Generate(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "fixed", out)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.Same(t, p.GetMockExtractor(), p.ConceptExtractor())
	assert.Same(t, p.GetMockGenerator(), p.Generator())

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}
