package models

// Submission represents a document submitted for checking, either via
// the HTTP API or the Redis stream.
type Submission struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Content    string `json:"content"`
}

// CheckRequest is the payload for POST /api/v1/checks.
type CheckRequest struct {
	Title   string `json:"title" binding:"required"`
	Author  string `json:"author"`
	Content string `json:"content" binding:"required"`
}

// CheckResponse is returned when a check has been accepted or completed.
type CheckResponse struct {
	CheckID    string           `json:"checkId"`
	DocumentID string           `json:"documentId"`
	Step       Step             `json:"step"`
	Percentage float64          `json:"percentage,omitempty"`
	Highlights []HighlightRange `json:"highlights,omitempty"`
}

// SearchRequest is the payload for POST /api/v1/search.
type SearchRequest struct {
	Content   string `json:"content" binding:"required"`
	TopN      int    `json:"topN"`
	ExcludeID string `json:"excludeId"`
}

// CompareRequest is the payload for POST /api/v1/compare.
type CompareRequest struct {
	TextA string `json:"textA" binding:"required"`
	TextB string `json:"textB" binding:"required"`
}

// SearchHit is one ranked result of a similarity search.
type SearchHit struct {
	DocumentID string  `json:"documentId"`
	Score      float64 `json:"score"`
}

// StatsResponse is the dashboard aggregation payload.
type StatsResponse struct {
	TotalDocuments int64 `json:"totalDocuments"`
	TotalChecks    int64 `json:"totalChecks"`
}
