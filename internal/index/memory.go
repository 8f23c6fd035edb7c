package index

import (
	"context"
	"sync"
)

// MemoryIndex is an in-process Index guarded by a single RWMutex.
// Writers are serialized, so the document-frequency bump and the
// posting upsert always land together; readers see a consistent
// snapshot.
type MemoryIndex struct {
	mu       sync.RWMutex
	postings map[string]map[string]int // term -> docID -> termFreq
	docTerms map[string]map[string]int // docID -> term -> termFreq
	docLens  map[string]int            // docID -> token count
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		postings: make(map[string]map[string]int),
		docTerms: make(map[string]map[string]int),
		docLens:  make(map[string]int),
	}
}

func (m *MemoryIndex) Add(_ context.Context, docID string, tokens []string) error {
	counts := TermCounts(tokens)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Retract terms from a previous indexing pass that the new token
	// set no longer contains.
	for term := range m.docTerms[docID] {
		if _, still := counts[term]; still {
			continue
		}
		docs := m.postings[term]
		delete(docs, docID)
		if len(docs) == 0 {
			delete(m.postings, term)
		}
	}

	for term, freq := range counts {
		docs, ok := m.postings[term]
		if !ok {
			docs = make(map[string]int)
			m.postings[term] = docs
		}
		docs[docID] = freq
	}

	m.docTerms[docID] = counts
	m.docLens[docID] = len(tokens)
	return nil
}

func (m *MemoryIndex) DocumentFrequency(_ context.Context, term string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.postings[term]), nil
}

func (m *MemoryIndex) Postings(_ context.Context, term string) ([]Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.postings[term]
	if !ok {
		return nil, nil
	}
	result := make([]Posting, 0, len(docs))
	for docID, freq := range docs {
		result = append(result, Posting{DocumentID: docID, TermFreq: freq})
	}
	return result, nil
}

func (m *MemoryIndex) DocumentPostings(_ context.Context, docID string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int, len(m.docTerms[docID]))
	for term, freq := range m.docTerms[docID] {
		counts[term] = freq
	}
	return counts, nil
}

func (m *MemoryIndex) TokenCount(_ context.Context, docID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docLens[docID], nil
}

func (m *MemoryIndex) DocumentCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docLens), nil
}
