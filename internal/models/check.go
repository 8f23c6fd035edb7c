package models

import (
	"time"
)

type Step string

const (
	StepIdle      Step = "idle"
	StepReceived  Step = "received"
	StepIndexing  Step = "indexing"
	StepSearching Step = "searching"
	StepMatching  Step = "matching"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// HighlightRange is a half-open [Start, End) character range inside
// the checked document's content.
type HighlightRange struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// DuplicateSource describes one matched corpus document.
type DuplicateSource struct {
	SourceID       string   `bson:"sourceId" json:"sourceId"`
	SourceTitle    string   `bson:"sourceTitle" json:"sourceTitle"`
	MatchedPercent float64  `bson:"matchedPercent" json:"matchedPercent"`
	Snippets       []string `bson:"snippets" json:"snippets"`
}

// PlagiarismCheck is the immutable result of one composer pass over a
// document. A rerun produces a new check, never a mutation.
type PlagiarismCheck struct {
	ID         string            `bson:"_id" json:"id"`
	DocumentID string            `bson:"documentId" json:"documentId"`
	Percentage float64           `bson:"percentage" json:"percentage"`
	Sources    []DuplicateSource `bson:"sources" json:"sources"`
	Snippets   []string          `bson:"snippets" json:"snippets"`
	Highlights []HighlightRange  `bson:"highlights" json:"highlights"`
	Status     string            `bson:"status" json:"status"` // completed, failed
	CheckedAt  time.Time         `bson:"checkedAt" json:"checkedAt"`
}
