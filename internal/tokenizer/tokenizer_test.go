package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Tokenize(t *testing.T) {
	tok := NewEnglish()

	t.Run("lowercases and drops punctuation", func(t *testing.T) {
		tokens, err := tok.Tokenize("Hello, World!")
		require.NoError(t, err)
		assert.Equal(t, []string{"hello", "world"}, tokens)
	})

	t.Run("drops stopwords", func(t *testing.T) {
		tokens, err := tok.Tokenize("the fox and the dog")
		require.NoError(t, err)
		assert.Equal(t, []string{"fox", "dog"}, tokens)
	})

	t.Run("stems words", func(t *testing.T) {
		tokens, err := tok.Tokenize("jumping foxes")
		require.NoError(t, err)
		assert.Equal(t, []string{"jump", "fox"}, tokens)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := "The quick brown fox jumps over the lazy dog."
		first, err := tok.Tokenize(text)
		require.NoError(t, err)
		second, err := tok.Tokenize(text)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("near-duplicates tokenize identically", func(t *testing.T) {
		a, err := tok.Tokenize("the quick brown fox jumps over the lazy dog")
		require.NoError(t, err)
		b, err := tok.Tokenize("a quick brown fox jumps over a lazy dog")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("empty text yields no tokens", func(t *testing.T) {
		tokens, err := tok.Tokenize("")
		require.NoError(t, err)
		assert.Empty(t, tokens)
	})

	t.Run("whitespace only yields no tokens", func(t *testing.T) {
		tokens, err := tok.Tokenize("   \n\t  ")
		require.NoError(t, err)
		assert.Empty(t, tokens)
	})

	t.Run("keeps digits", func(t *testing.T) {
		tokens, err := tok.Tokenize("chapter 42")
		require.NoError(t, err)
		assert.Contains(t, tokens, "42")
	})
}

func TestNewDefault_Stopwords(t *testing.T) {
	t.Run("nil selects the built-in list", func(t *testing.T) {
		tok := NewDefault("english", nil)
		tokens, err := tok.Tokenize("the fox")
		require.NoError(t, err)
		assert.Equal(t, []string{"fox"}, tokens)
	})

	t.Run("empty slice disables filtering", func(t *testing.T) {
		tok := NewDefault("english", []string{})
		tokens, err := tok.Tokenize("the fox")
		require.NoError(t, err)
		assert.Equal(t, []string{"the", "fox"}, tokens)
	})
}
