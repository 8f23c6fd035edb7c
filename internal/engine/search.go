package engine

import (
	"context"
	"sort"

	"github.com/veritext/veritext/internal/index"
	"github.com/veritext/veritext/internal/metrics"
)

// Hit is one ranked search result.
type Hit struct {
	DocumentID string
	Score      float64
}

// Searcher ranks corpus documents against a query by TF-IDF cosine
// similarity. It is read-only over the index.
type Searcher struct {
	idx        index.Index
	vectorizer *Vectorizer
}

func NewSearcher(idx index.Index) *Searcher {
	return &Searcher{
		idx:        idx,
		vectorizer: NewVectorizer(idx),
	}
}

// Rank scores every document sharing at least one term with the query
// and returns the top N hits, descending by score, ties broken by
// ascending document id. Documents scoring <= 0 and excludeID never
// appear. An empty token sequence yields no hits.
func (s *Searcher) Rank(ctx context.Context, tokens []string, topN int, excludeID string) ([]Hit, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	queryVec, err := s.vectorizer.VectorizeTokens(ctx, tokens)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateSet(ctx, queryVec, excludeID)
	if err != nil {
		return nil, err
	}
	metrics.SearchCandidates.Observe(float64(len(candidates)))

	hits := make([]Hit, 0, len(candidates))
	for docID := range candidates {
		docVec, err := s.vectorizer.VectorizeDocument(ctx, docID)
		if err != nil {
			return nil, err
		}
		score := CosineSimilarity(queryVec, docVec)
		if score > 0 {
			hits = append(hits, Hit{DocumentID: docID, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	if topN > 0 && len(hits) > topN {
		hits = hits[:topN]
	}
	return hits, nil
}

// candidateSet is the union of posting document ids over all query
// terms. Documents with zero shared terms always score 0, so bounding
// the search to this set loses nothing.
func (s *Searcher) candidateSet(ctx context.Context, queryVec Vector, excludeID string) (map[string]struct{}, error) {
	candidates := make(map[string]struct{})
	for term := range queryVec {
		postings, err := s.idx.Postings(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			if p.DocumentID == excludeID {
				continue
			}
			candidates[p.DocumentID] = struct{}{}
		}
	}
	return candidates, nil
}
