package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ChecksTotal counts plagiarism checks by outcome.
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plagiarism_checks_total",
			Help: "Total number of plagiarism checks",
		},
		[]string{"status"},
	)

	// CheckDuration measures the duration of one full composer pass.
	CheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "plagiarism_check_duration_seconds",
			Help: "Plagiarism check duration in seconds",
		},
	)

	// DocumentsIndexed counts documents added to the inverted index.
	DocumentsIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "index_documents_total",
			Help: "Total number of documents indexed",
		},
	)

	// SearchCandidates observes candidate set sizes per search.
	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_candidates",
			Help:    "Candidate documents scored per similarity search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// InitPrometheus registers all collectors with the default registry.
func InitPrometheus() {
	prometheus.MustRegister(ChecksTotal)
	prometheus.MustRegister(CheckDuration)
	prometheus.MustRegister(DocumentsIndexed)
	prometheus.MustRegister(SearchCandidates)
}
