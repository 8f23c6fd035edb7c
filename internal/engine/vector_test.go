package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritext/veritext/internal/index"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		v := Vector{"a": 0.5, "b": 0.3}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		a := Vector{"a": 1.0}
		b := Vector{"b": 1.0}
		assert.Equal(t, 0.0, CosineSimilarity(a, b))
	})

	t.Run("zero magnitude scores 0 without error", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(Vector{}, Vector{"a": 1.0}))
		assert.Equal(t, 0.0, CosineSimilarity(Vector{"a": 1.0}, Vector{}))
		assert.Equal(t, 0.0, CosineSimilarity(Vector{}, Vector{}))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Vector{"a": 0.2, "b": 0.7, "c": 0.1}
		b := Vector{"b": 0.4, "c": 0.9, "d": 0.3}
		assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-12)
	})
}

func TestVectorizer_IDF(t *testing.T) {
	ctx := context.Background()
	idx := index.NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, "doc1", []string{"common", "rare"}))
	require.NoError(t, idx.Add(ctx, "doc2", []string{"common"}))
	require.NoError(t, idx.Add(ctx, "doc3", []string{"common"}))

	vec := NewVectorizer(idx)

	rare, err := vec.IDF(ctx, "rare")
	require.NoError(t, err)
	assert.InDelta(t, math.Log10(3.0/2.0+idfEpsilon), rare, 1e-12)

	// A term present in every document gets a negative weight under
	// this formula; the raw value is kept.
	common, err := vec.IDF(ctx, "common")
	require.NoError(t, err)
	assert.InDelta(t, math.Log10(3.0/4.0+idfEpsilon), common, 1e-12)
	assert.Less(t, common, 0.0)

	assert.Greater(t, rare, common)
}

func TestVectorizer_VectorizeTokens(t *testing.T) {
	ctx := context.Background()
	idx := index.NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, "doc1", []string{"alpha", "beta"}))
	require.NoError(t, idx.Add(ctx, "doc2", []string{"gamma"}))

	vec := NewVectorizer(idx)

	t.Run("support is the distinct token set", func(t *testing.T) {
		v, err := vec.VectorizeTokens(ctx, []string{"alpha", "alpha", "beta"})
		require.NoError(t, err)
		assert.Len(t, v, 2)
		assert.Contains(t, v, "alpha")
		assert.Contains(t, v, "beta")
	})

	t.Run("tf is frequency over length", func(t *testing.T) {
		v, err := vec.VectorizeTokens(ctx, []string{"alpha", "alpha", "beta", "gamma"})
		require.NoError(t, err)

		idfAlpha, err := vec.IDF(ctx, "alpha")
		require.NoError(t, err)
		assert.InDelta(t, 0.5*idfAlpha, v["alpha"], 1e-12)
	})

	t.Run("empty token sequence yields empty vector", func(t *testing.T) {
		v, err := vec.VectorizeTokens(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

func TestVectorizer_VectorizeDocument(t *testing.T) {
	ctx := context.Background()
	idx := index.NewMemoryIndex()
	tokens := []string{"alpha", "beta", "alpha"}
	require.NoError(t, idx.Add(ctx, "doc1", tokens))
	require.NoError(t, idx.Add(ctx, "doc2", []string{"gamma", "delta"}))

	vec := NewVectorizer(idx)

	t.Run("matches vectorizing the original tokens", func(t *testing.T) {
		fromDoc, err := vec.VectorizeDocument(ctx, "doc1")
		require.NoError(t, err)
		fromTokens, err := vec.VectorizeTokens(ctx, tokens)
		require.NoError(t, err)
		assert.True(t, fromDoc.Equals(fromTokens, 1e-12))
	})

	t.Run("document is identical to itself", func(t *testing.T) {
		v, err := vec.VectorizeDocument(ctx, "doc1")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("unknown document yields empty vector", func(t *testing.T) {
		v, err := vec.VectorizeDocument(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

func TestVectorizer_SingleDocumentCorpus(t *testing.T) {
	// N=1, df=1 gives log10(0.5 + eps): negative weights, but no error
	// and a usable vector.
	ctx := context.Background()
	idx := index.NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, "only", []string{"lonely", "term"}))

	vec := NewVectorizer(idx)
	v, err := vec.VectorizeDocument(ctx, "only")
	require.NoError(t, err)
	require.Len(t, v, 2)
	for _, w := range v {
		assert.Less(t, w, 0.0)
	}
}
