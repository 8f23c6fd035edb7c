package index

import (
	"context"
)

// Posting is one inverted-index entry: a document containing a term,
// with the term's raw occurrence count in that document.
type Posting struct {
	DocumentID string
	TermFreq   int
}

// Index is the shared Term/Posting store. It is the only mutable
// shared state in the engine; implementations must apply the
// document-frequency bump and the posting upsert for a term as one
// atomic unit so concurrent writers cannot double count.
type Index interface {
	// Add indexes (or re-indexes) a document. Per distinct term the
	// posting is upserted; the term's document frequency is
	// incremented only when no prior posting existed for this
	// document. Terms the document no longer contains are retracted.
	Add(ctx context.Context, docID string, tokens []string) error

	// DocumentFrequency returns the number of distinct documents
	// containing term, 0 if the term is unknown.
	DocumentFrequency(ctx context.Context, term string) (int, error)

	// Postings returns all postings for term, empty if unknown.
	Postings(ctx context.Context, term string) ([]Posting, error)

	// DocumentPostings returns a document's term frequency table,
	// empty if the document was never indexed.
	DocumentPostings(ctx context.Context, docID string) (map[string]int, error)

	// TokenCount returns the tokenized length of a document, 0 if the
	// document was never indexed.
	TokenCount(ctx context.Context, docID string) (int, error)

	// DocumentCount returns the corpus size.
	DocumentCount(ctx context.Context) (int, error)
}

// TermCounts computes the raw frequency table of a token sequence.
func TermCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
