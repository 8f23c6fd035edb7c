package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/veritext/veritext/internal/config"
	"github.com/veritext/veritext/internal/engine"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/repository"
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg          *config.Config
	composer     *engine.Composer
	docsRepo     *repository.DocumentsRepository
	checksRepo   *repository.ChecksRepository
	checkSem     chan struct{} // Semaphore for bounded concurrency
	checkTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	composer *engine.Composer,
	docsRepo *repository.DocumentsRepository,
	checksRepo *repository.ChecksRepository,
) *Handler {
	return &Handler{
		cfg:          cfg,
		composer:     composer,
		docsRepo:     docsRepo,
		checksRepo:   checksRepo,
		checkSem:     make(chan struct{}, cfg.MaxConcurrentChecks),
		checkTimeout: cfg.CheckTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// CreateCheck indexes the submitted document and runs a full
// plagiarism check against the corpus.
func (h *Handler) CreateCheck(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.checkSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}
	defer func() { <-h.checkSem }()

	checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	check, err := h.composer.Check(checkCtx, models.Submission{
		Title:   req.Title,
		Author:  req.Author,
		Content: req.Content,
	})
	if err != nil {
		var indexErr *engine.IndexingError
		if errors.As(err, &indexErr) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: indexErr.Error(),
				Code:  "INDEXING_FAILED",
			})
			return
		}
		log.Error().Err(err).Str("title", req.Title).Msg("Check failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Check failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.CheckResponse{
		CheckID:    check.ID,
		DocumentID: check.DocumentID,
		Step:       models.StepCompleted,
		Percentage: check.Percentage,
		Highlights: check.Highlights,
	})
}

// GetCheck returns one stored check by id.
func (h *Handler) GetCheck(c *gin.Context) {
	id := c.Param("id")

	check, err := h.checksRepo.Get(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("checkId", id).Msg("Failed to load check")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load check",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if check == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Check not found",
			Code:  "CHECK_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, check)
}

// ListChecks returns stored checks, optionally filtered by document.
func (h *Handler) ListChecks(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		checks []*models.PlagiarismCheck
		err    error
	)
	if docID := c.Query("documentId"); docID != "" {
		checks, err = h.checksRepo.ListByDocumentID(ctx, docID)
	} else {
		checks, err = h.checksRepo.List(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list checks")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to list checks",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"checks": checks})
}

// Search ranks corpus documents against the given content without
// indexing it.
func (h *Handler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	hits, err := h.composer.FindSimilar(c.Request.Context(), req.Content, req.TopN, req.ExcludeID)
	if err != nil {
		log.Error().Err(err).Msg("Search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Search failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	results := make([]models.SearchHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.SearchHit{
			DocumentID: hit.DocumentID,
			Score:      hit.Score,
		})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Compare runs a direct two-text overlap: an overall percentage plus
// the matched ranges located in the first text.
func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	overlap := h.composer.ComputeOverlap(req.TextA, req.TextB)

	c.JSON(http.StatusOK, gin.H{
		"percentage": overlap.Percentage,
		"spans":      overlap.Spans,
	})
}

// Stats returns dashboard counts.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totalDocs, err := h.docsRepo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load stats",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	totalChecks, err := h.checksRepo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count checks")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load stats",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.StatsResponse{
		TotalDocuments: totalDocs,
		TotalChecks:    totalChecks,
	})
}
