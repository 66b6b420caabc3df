// Package api exposes the credibility service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// Scorer is the service surface the handlers need.
type Scorer interface {
	Analyze(ctx context.Context, article domain.Article) (*domain.AnalysisResult, error)
	Feedback(ctx context.Context, rawURL, rawVote string) (*domain.SourceReputation, error)
}

// ReputationQuerier serves the read-only source views.
type ReputationQuerier interface {
	credibility.ReputationReader
	credibility.ReputationLister
}

// Handler serves the credibility endpoints.
type Handler struct {
	scorer  Scorer
	sources ReputationQuerier
	logger  infralogger.Logger
}

// NewHandler creates a Handler.
func NewHandler(scorer Scorer, sources ReputationQuerier, logger infralogger.Logger) *Handler {
	return &Handler{
		scorer:  scorer,
		sources: sources,
		logger:  logger,
	}
}

// Analyze handles POST /analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid analyze request", infralogger.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgAnalyzeRequired})
		return
	}

	result, err := h.scorer.Analyze(c.Request.Context(), req.Article())
	if err != nil {
		status, msg := analyzeError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Analysis failed",
				infralogger.String("url", req.URL),
				infralogger.Error(err),
			)
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	breakdown := result.Breakdown
	if breakdown == nil {
		breakdown = []string{}
	}
	c.JSON(http.StatusOK, AnalyzeResponse{
		Success:   true,
		Score:     result.Score,
		Breakdown: breakdown,
	})
}

func analyzeError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, msgAnalyzeRequired
	case errors.Is(err, domain.ErrSentimentUnavailable):
		return http.StatusBadGateway, msgSentimentDown
	default:
		return http.StatusInternalServerError, msgAnalyzeFailed
	}
}

// Feedback handles POST /feedback.
func (h *Handler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgFeedbackRequired})
		return
	}

	if _, err := h.scorer.Feedback(c.Request.Context(), req.URL, req.Vote); err != nil {
		status, msg := feedbackError(err)
		c.JSON(status, MessageResponse{Message: msg})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgFeedbackProcessed})
}

func feedbackError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, msgFeedbackRequired
	case errors.Is(err, domain.ErrInvalidVote):
		return http.StatusBadRequest, msgInvalidVote
	case errors.Is(err, domain.ErrInvalidURL):
		return http.StatusBadRequest, msgInvalidURL
	default:
		return http.StatusInternalServerError, msgFeedbackFailed
	}
}

// ListSources handles GET /api/v1/sources.
func (h *Handler) ListSources(c *gin.Context) {
	filter := domain.ReputationFilter{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	var ok bool
	if filter.Limit, ok = h.intQuery(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = h.intQuery(c, "offset"); !ok {
		return
	}
	filter = filter.Normalize()

	recs, total, err := h.sources.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list sources", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSourceListFailed})
		return
	}
	if recs == nil {
		recs = []*domain.SourceReputation{}
	}

	c.JSON(http.StatusOK, SourceListResponse{
		Sources: recs,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func (h *Handler) intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidQueryParamFn + name})
		return 0, false
	}
	return v, true
}

// GetSource handles GET /api/v1/sources/:domain.
func (h *Handler) GetSource(c *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(c.Param("domain")))

	rec, err := h.sources.FindByDomain(c.Request.Context(), name)
	switch {
	case errors.Is(err, domain.ErrReputationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgSourceNotFound})
	case err != nil:
		h.logger.Error("Failed to load source",
			infralogger.String("domain", name),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSourceLookupFailed})
	default:
		c.JSON(http.StatusOK, rec)
	}
}
