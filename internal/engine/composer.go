package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/veritext/veritext/internal/index"
	"github.com/veritext/veritext/internal/metrics"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/tokenizer"
)

// DocumentStore persists documents and serves their content back to
// the engine. The engine never mutates stored content.
type DocumentStore interface {
	Insert(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
}

// CheckStore persists finished plagiarism checks.
type CheckStore interface {
	Insert(ctx context.Context, check *models.PlagiarismCheck) error
}

// StatusReporter publishes per-check progress steps. Implementations
// must tolerate failure; status is advisory.
type StatusReporter interface {
	Update(ctx context.Context, checkID string, step models.Step) error
}

// Overlap is the result of a direct two-text comparison.
type Overlap struct {
	Percentage float64
	Spans      []Range
}

// Composer runs the full plagiarism pass for one submission: tokenize
// and index, rank the corpus excluding the submission itself, extract
// matched spans against the best hits, and emit an immutable check.
type Composer struct {
	tok      tokenizer.Tokenizer
	idx      index.Index
	searcher *Searcher
	docs     DocumentStore
	checks   CheckStore
	status   StatusReporter
	topN     int
	minSpan  int
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithStatusReporter wires progress reporting into the composer.
func WithStatusReporter(r StatusReporter) ComposerOption {
	return func(c *Composer) { c.status = r }
}

// WithTopN sets how many corpus matches a check reports.
func WithTopN(n int) ComposerOption {
	return func(c *Composer) { c.topN = n }
}

// WithMinSpanLength sets the minimum matched-span length in runes.
func WithMinSpanLength(n int) ComposerOption {
	return func(c *Composer) { c.minSpan = n }
}

func NewComposer(tok tokenizer.Tokenizer, idx index.Index, docs DocumentStore, checks CheckStore, opts ...ComposerOption) *Composer {
	c := &Composer{
		tok:      tok,
		idx:      idx,
		searcher: NewSearcher(idx),
		docs:     docs,
		checks:   checks,
		topN:     5,
		minSpan:  10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IndexDocument tokenizes content and indexes it under id. A zero
// token document indexes trivially with token count 0.
func (c *Composer) IndexDocument(ctx context.Context, id, content string) error {
	tokens, err := c.tok.Tokenize(content)
	if err != nil {
		return &IndexingError{DocumentID: id, Err: fmt.Errorf("%w: %v", ErrTokenization, err)}
	}
	if err := c.idx.Add(ctx, id, tokens); err != nil {
		return &IndexingError{DocumentID: id, Err: err}
	}
	return nil
}

// FindSimilar ranks indexed documents against content without
// indexing it. An empty query returns no hits.
func (c *Composer) FindSimilar(ctx context.Context, content string, topN int, excludeID string) ([]Hit, error) {
	tokens, err := c.tok.Tokenize(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenization, err)
	}
	if topN <= 0 {
		topN = c.topN
	}
	return c.searcher.Rank(ctx, tokens, topN, excludeID)
}

// ComputeOverlap compares two raw texts directly: an edit-distance
// derived percentage plus the located matched spans in textA.
func (c *Composer) ComputeOverlap(textA, textB string) Overlap {
	spans := MatchingSpans(textA, textB, c.minSpan)
	return Overlap{
		Percentage: roundPercent(SimilarityRatio(textA, textB)),
		Spans:      LocateSpans(textA, spans),
	}
}

// Check runs the terminal state machine for one submission. Indexing
// happens first and is idempotent, so a later failure leaves the index
// consistent and needs no rollback.
func (c *Composer) Check(ctx context.Context, sub models.Submission) (*models.PlagiarismCheck, error) {
	started := time.Now()
	checkID := uuid.NewString()
	docID := sub.DocumentID
	if docID == "" {
		docID = uuid.NewString()
	}

	c.report(ctx, checkID, models.StepReceived)
	c.report(ctx, checkID, models.StepIndexing)

	tokens, err := c.tok.Tokenize(sub.Content)
	if err != nil {
		c.report(ctx, checkID, models.StepFailed)
		metrics.ChecksTotal.WithLabelValues("failed").Inc()
		return nil, &IndexingError{DocumentID: docID, Err: fmt.Errorf("%w: %v", ErrTokenization, err)}
	}

	doc := &models.Document{
		ID:         docID,
		Title:      sub.Title,
		Author:     sub.Author,
		Content:    sub.Content,
		TokenCount: len(tokens),
		UploadedAt: time.Now(),
	}
	if err := c.docs.Insert(ctx, doc); err != nil {
		c.report(ctx, checkID, models.StepFailed)
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	if err := c.idx.Add(ctx, docID, tokens); err != nil {
		c.report(ctx, checkID, models.StepFailed)
		metrics.ChecksTotal.WithLabelValues("failed").Inc()
		return nil, &IndexingError{DocumentID: docID, Err: err}
	}
	metrics.DocumentsIndexed.Inc()

	c.report(ctx, checkID, models.StepSearching)

	hits, err := c.searcher.Rank(ctx, tokens, c.topN, docID)
	if err != nil {
		c.report(ctx, checkID, models.StepFailed)
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	check := &models.PlagiarismCheck{
		ID:         checkID,
		DocumentID: docID,
		Percentage: 0,
		Sources:    []models.DuplicateSource{},
		Snippets:   []string{},
		Highlights: []models.HighlightRange{},
		Status:     "completed",
		CheckedAt:  time.Now(),
	}

	if len(hits) > 0 {
		c.report(ctx, checkID, models.StepMatching)
		if err := c.composeMatches(ctx, check, sub.Content, hits); err != nil {
			c.report(ctx, checkID, models.StepFailed)
			return nil, err
		}
	}

	if err := c.checks.Insert(ctx, check); err != nil {
		c.report(ctx, checkID, models.StepFailed)
		return nil, fmt.Errorf("failed to store check: %w", err)
	}

	c.report(ctx, checkID, models.StepCompleted)
	metrics.ChecksTotal.WithLabelValues("completed").Inc()
	metrics.CheckDuration.Observe(time.Since(started).Seconds())

	log.Info().
		Str("checkId", check.ID).
		Str("documentId", docID).
		Float64("percentage", check.Percentage).
		Int("sources", len(check.Sources)).
		Msg("Plagiarism check completed")

	return check, nil
}

// composeMatches fills a check's sources, snippets and highlight
// ranges from the ranked hits. The overall percentage comes from the
// best hit; highlights come from the best hit's spans located in the
// submitted text.
func (c *Composer) composeMatches(ctx context.Context, check *models.PlagiarismCheck, content string, hits []Hit) error {
	check.Percentage = roundPercent(hits[0].Score)

	for i, hit := range hits {
		matched, err := c.docs.Get(ctx, hit.DocumentID)
		if err != nil {
			log.Warn().Err(err).
				Str("documentId", hit.DocumentID).
				Msg("Skipping match with unreadable content")
			continue
		}

		snippets := MatchingSpans(content, matched.Content, c.minSpan)
		check.Sources = append(check.Sources, models.DuplicateSource{
			SourceID:       matched.ID,
			SourceTitle:    matched.Title,
			MatchedPercent: roundPercent(hit.Score),
			Snippets:       snippets,
		})

		if i == 0 {
			check.Snippets = snippets
			for _, r := range LocateSpans(content, snippets) {
				check.Highlights = append(check.Highlights, models.HighlightRange{Start: r.Start, End: r.End})
			}
		}
	}
	return nil
}

func (c *Composer) report(ctx context.Context, checkID string, step models.Step) {
	if c.status == nil {
		return
	}
	if err := c.status.Update(ctx, checkID, step); err != nil {
		log.Warn().Err(err).
			Str("checkId", checkID).
			Str("step", string(step)).
			Msg("Failed to update check status")
	}
}

// roundPercent converts a [0,1] score to a percentage rounded to two
// decimal places.
func roundPercent(score float64) float64 {
	return math.Round(score*10000) / 100
}
