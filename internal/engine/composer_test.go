package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritext/veritext/internal/index"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/tokenizer"
)

type memDocStore struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newMemDocStore() *memDocStore {
	return &memDocStore{docs: make(map[string]*models.Document)}
}

func (s *memDocStore) Insert(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *memDocStore) Get(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

type memCheckStore struct {
	mu     sync.Mutex
	checks []*models.PlagiarismCheck
}

func (s *memCheckStore) Insert(_ context.Context, check *models.PlagiarismCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, check)
	return nil
}

type recordingReporter struct {
	mu    sync.Mutex
	steps []models.Step
}

func (r *recordingReporter) Update(_ context.Context, _ string, step models.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	return nil
}

func newTestComposer(opts ...ComposerOption) (*Composer, *memDocStore, *memCheckStore) {
	docs := newMemDocStore()
	checks := &memCheckStore{}
	c := NewComposer(tokenizer.NewEnglish(), index.NewMemoryIndex(), docs, checks, opts...)
	return c, docs, checks
}

func TestComposer_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("detects a near-duplicate", func(t *testing.T) {
		composer, _, checkStore := newTestComposer()

		require.NoError(t, composer.IndexDocument(ctx, "doc-a", "the quick brown fox jumps over the lazy dog"))
		docA := &models.Document{ID: "doc-a", Title: "Fox A", Content: "the quick brown fox jumps over the lazy dog"}
		require.NoError(t, composer.docs.Insert(ctx, docA))

		check, err := composer.Check(ctx, models.Submission{
			DocumentID: "doc-b",
			Title:      "Fox B",
			Content:    "a quick brown fox jumps over a lazy dog",
		})
		require.NoError(t, err)
		require.NotNil(t, check)

		assert.Equal(t, "doc-b", check.DocumentID)
		assert.Equal(t, "completed", check.Status)
		assert.Greater(t, check.Percentage, 80.0)

		require.Len(t, check.Sources, 1)
		assert.Equal(t, "doc-a", check.Sources[0].SourceID)
		assert.Equal(t, "Fox A", check.Sources[0].SourceTitle)
		assert.Greater(t, check.Sources[0].MatchedPercent, 80.0)

		found := false
		for _, snippet := range check.Snippets {
			if len([]rune(snippet)) >= 10 && strings.Contains(snippet, "quick brown fox jumps over") {
				found = true
			}
		}
		assert.True(t, found, "expected a matched span containing the shared sentence")
		assert.NotEmpty(t, check.Highlights)

		require.Len(t, checkStore.checks, 1)
		assert.Equal(t, check.ID, checkStore.checks[0].ID)
	})

	t.Run("first document in an empty corpus has no sources", func(t *testing.T) {
		composer, _, _ := newTestComposer()

		check, err := composer.Check(ctx, models.Submission{
			DocumentID: "first",
			Title:      "First",
			Content:    "an entirely original piece of writing",
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, check.Percentage)
		assert.Empty(t, check.Sources)
		assert.Empty(t, check.Highlights)
		assert.Equal(t, "completed", check.Status)
	})

	t.Run("empty content indexes with zero tokens", func(t *testing.T) {
		composer, docStore, _ := newTestComposer()

		check, err := composer.Check(ctx, models.Submission{
			DocumentID: "empty",
			Title:      "Empty",
			Content:    "",
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, check.Percentage)

		doc, err := docStore.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, 0, doc.TokenCount)
	})

	t.Run("submission never matches itself", func(t *testing.T) {
		composer, _, _ := newTestComposer()

		content := "a document compared against its own index entry"
		check, err := composer.Check(ctx, models.Submission{
			DocumentID: "self",
			Title:      "Self",
			Content:    content,
		})
		require.NoError(t, err)
		for _, src := range check.Sources {
			assert.NotEqual(t, "self", src.SourceID)
		}
	})

	t.Run("generates a document id when missing", func(t *testing.T) {
		composer, _, _ := newTestComposer()

		check, err := composer.Check(ctx, models.Submission{
			Title:   "Anonymous",
			Content: "text without a preassigned id",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, check.DocumentID)
	})

	t.Run("reports progress steps in order", func(t *testing.T) {
		reporter := &recordingReporter{}
		composer, _, _ := newTestComposer(WithStatusReporter(reporter))

		require.NoError(t, composer.IndexDocument(ctx, "doc-a", "the quick brown fox jumps over the lazy dog"))
		require.NoError(t, composer.docs.Insert(ctx, &models.Document{
			ID: "doc-a", Title: "Fox A", Content: "the quick brown fox jumps over the lazy dog",
		}))

		_, err := composer.Check(ctx, models.Submission{
			DocumentID: "doc-b",
			Title:      "Fox B",
			Content:    "a quick brown fox jumps over a lazy dog",
		})
		require.NoError(t, err)

		assert.Equal(t, []models.Step{
			models.StepReceived,
			models.StepIndexing,
			models.StepSearching,
			models.StepMatching,
			models.StepCompleted,
		}, reporter.steps)
	})
}

func TestComposer_FindSimilar(t *testing.T) {
	ctx := context.Background()
	composer, _, _ := newTestComposer()

	require.NoError(t, composer.IndexDocument(ctx, "doc-a", "the quick brown fox jumps over the lazy dog"))
	require.NoError(t, composer.IndexDocument(ctx, "doc-b", "a quick brown fox jumps over a lazy dog"))
	require.NoError(t, composer.IndexDocument(ctx, "doc-c", "quarterly financial statements and market analysis"))

	t.Run("near-duplicate is the top match above 0.8", func(t *testing.T) {
		hits, err := composer.FindSimilar(ctx, "a quick brown fox jumps over a lazy dog", 5, "doc-b")
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "doc-a", hits[0].DocumentID)
		assert.Greater(t, hits[0].Score, 0.8)
		for _, h := range hits {
			assert.NotEqual(t, "doc-b", h.DocumentID)
		}
	})

	t.Run("empty query returns no hits", func(t *testing.T) {
		hits, err := composer.FindSimilar(ctx, "", 5, "")
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestComposer_ComputeOverlap(t *testing.T) {
	composer, _, _ := newTestComposer()

	t.Run("identical texts overlap fully", func(t *testing.T) {
		overlap := composer.ComputeOverlap("the same exact sentence", "the same exact sentence")
		assert.Equal(t, 100.0, overlap.Percentage)
		require.Len(t, overlap.Spans, 1)
		assert.Equal(t, Range{Start: 0, End: 23}, overlap.Spans[0])
	})

	t.Run("unrelated texts overlap zero", func(t *testing.T) {
		overlap := composer.ComputeOverlap("abcdefg", "1234567")
		assert.Equal(t, 0.0, overlap.Percentage)
		assert.Empty(t, overlap.Spans)
	})
}
