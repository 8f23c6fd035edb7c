package tokenizer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/kljensen/snowball"
)

// Tokenizer turns raw text into an ordered sequence of normalized
// tokens. Implementations must be deterministic: the same text always
// yields the same token sequence.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// Default is a language-aware tokenizer built on Unicode word
// segmentation. It lowercases, drops punctuation and stopwords, and
// stems each remaining word.
type Default struct {
	language  string
	stopwords map[string]struct{}
}

// NewDefault creates a tokenizer for the given snowball language
// ("english", "french", ...) with the given stopword list. A nil list
// selects the built-in stopwords; pass an empty slice to disable
// filtering.
func NewDefault(language string, stopwords []string) *Default {
	if stopwords == nil {
		stopwords = defaultStopwords
	}
	sw := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		sw[strings.ToLower(w)] = struct{}{}
	}
	return &Default{
		language:  language,
		stopwords: sw,
	}
}

// NewEnglish creates the default English tokenizer.
func NewEnglish() *Default {
	return NewDefault("english", defaultStopwords)
}

// Tokenize segments text into words, normalizes and stems them.
// Segmentation boundaries follow UAX #29, so the same call is stable
// across inputs containing any script.
func (t *Default) Tokenize(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	tokens := make([]string, 0, len(text)/6)
	toks := words.FromString(text)
	for toks.Next() {
		word := strings.ToLower(strings.TrimSpace(toks.Value()))
		if word == "" || !hasLetterOrDigit(word) {
			continue
		}
		if _, stop := t.stopwords[word]; stop {
			continue
		}

		stemmed, err := snowball.Stem(word, t.language, false)
		if err != nil {
			// Stemmer rejects the word (unsupported script); keep the
			// normalized form so non-target-language text still indexes.
			tokens = append(tokens, word)
			continue
		}
		if stemmed != "" {
			tokens = append(tokens, stemmed)
		}
	}

	return tokens, nil
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

var defaultStopwords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
	"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
	"was", "were", "be", "been", "being", "it", "this", "that",
	"these", "those", "from", "so", "such", "into", "about", "than",
	"too", "very", "can", "will", "just", "not", "no", "nor", "s", "t",
}
