package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("single document", func(t *testing.T) {
		idx := NewMemoryIndex()
		require.NoError(t, idx.Add(ctx, "doc1", []string{"quick", "brown", "fox", "quick"}))

		df, err := idx.DocumentFrequency(ctx, "quick")
		require.NoError(t, err)
		assert.Equal(t, 1, df)

		postings, err := idx.Postings(ctx, "quick")
		require.NoError(t, err)
		require.Len(t, postings, 1)
		assert.Equal(t, "doc1", postings[0].DocumentID)
		assert.Equal(t, 2, postings[0].TermFreq)

		length, err := idx.TokenCount(ctx, "doc1")
		require.NoError(t, err)
		assert.Equal(t, 4, length)
	})

	t.Run("document frequency counts documents not occurrences", func(t *testing.T) {
		idx := NewMemoryIndex()
		require.NoError(t, idx.Add(ctx, "doc1", []string{"fox", "fox", "fox"}))
		require.NoError(t, idx.Add(ctx, "doc2", []string{"fox"}))

		df, err := idx.DocumentFrequency(ctx, "fox")
		require.NoError(t, err)
		assert.Equal(t, 2, df)
	})

	t.Run("reindexing is idempotent", func(t *testing.T) {
		idx := NewMemoryIndex()
		tokens := []string{"alpha", "beta", "alpha"}
		require.NoError(t, idx.Add(ctx, "doc1", tokens))
		require.NoError(t, idx.Add(ctx, "doc1", tokens))

		df, err := idx.DocumentFrequency(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 1, df)

		total, err := idx.DocumentCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("reindexing retracts dropped terms", func(t *testing.T) {
		idx := NewMemoryIndex()
		require.NoError(t, idx.Add(ctx, "doc1", []string{"alpha", "beta"}))
		require.NoError(t, idx.Add(ctx, "doc1", []string{"beta", "gamma"}))

		df, err := idx.DocumentFrequency(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 0, df)

		postings, err := idx.Postings(ctx, "alpha")
		require.NoError(t, err)
		assert.Empty(t, postings)

		df, err = idx.DocumentFrequency(ctx, "gamma")
		require.NoError(t, err)
		assert.Equal(t, 1, df)
	})

	t.Run("empty token list indexes trivially", func(t *testing.T) {
		idx := NewMemoryIndex()
		require.NoError(t, idx.Add(ctx, "doc1", nil))

		length, err := idx.TokenCount(ctx, "doc1")
		require.NoError(t, err)
		assert.Equal(t, 0, length)

		total, err := idx.DocumentCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})
}

func TestMemoryIndex_DocumentPostings(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, "doc1", []string{"alpha", "beta", "alpha"}))

	counts, err := idx.DocumentPostings(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alpha": 2, "beta": 1}, counts)

	// Unknown documents yield an empty map, not an error.
	counts, err = idx.DocumentPostings(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestTermCounts(t *testing.T) {
	counts := TermCounts([]string{"a", "b", "a", "c", "a"})
	assert.Equal(t, map[string]int{"a": 3, "b": 1, "c": 1}, counts)

	assert.Empty(t, TermCounts(nil))
}
