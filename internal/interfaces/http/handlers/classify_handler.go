package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appcls "github.com/turtacn/HSCode-Intelligence/internal/application/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

const (
	// maxBatchSize bounds how many goods one batch request may carry.
	maxBatchSize = 100

	caseCachePrefix = "case:"
	caseCacheTTL    = 5 * time.Minute
)

// BatchClassifyRequest is the body of POST /api/v1/classify/batch.
type BatchClassifyRequest struct {
	Items []ctypes.ClassifyRequest `json:"items"`
}

// BatchClassifyResponse aggregates per-item results for a batch request.
type BatchClassifyResponse struct {
	Results []*ctypes.ClassificationResultDTO `json:"results"`
	Total   int                               `json:"total"`
}

// ListCasesResponse is the body of GET /api/v1/classifications.
type ListCasesResponse struct {
	Cases      []*appcls.CaseSummary `json:"cases"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ClassifyHandler serves the classification API endpoints.  Case detail
// reads go through the cache; writes invalidate on classification because
// the service persists a fresh case row per request.
type ClassifyHandler struct {
	service appcls.Service
	cache   redis.Cache
	logger  logging.Logger
}

// NewClassifyHandler creates a ClassifyHandler.  cache may be nil, in which
// case detail reads always hit the service.
func NewClassifyHandler(service appcls.Service, cache redis.Cache, logger logging.Logger) *ClassifyHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ClassifyHandler{
		service: service,
		cache:   cache,
		logger:  logger,
	}
}

// Classify handles POST /api/v1/classify.
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var req ctypes.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		respondValidationError(c, "title or description is required")
		return
	}

	result, err := h.service.Classify(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClassifyBatch handles POST /api/v1/classify/batch.
func (h *ClassifyHandler) ClassifyBatch(c *gin.Context) {
	var req BatchClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		respondValidationError(c, "items must not be empty")
		return
	}
	if len(req.Items) > maxBatchSize {
		respondValidationError(c, fmt.Sprintf("batch size %d exceeds maximum %d", len(req.Items), maxBatchSize))
		return
	}

	results, err := h.service.ClassifyBatch(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BatchClassifyResponse{
		Results: results,
		Total:   len(results),
	})
}

// GetCase handles GET /api/v1/classifications/:id.
func (h *ClassifyHandler) GetCase(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondValidationError(c, "case id is required")
		return
	}

	ctx := c.Request.Context()
	cacheKey := caseCachePrefix + id

	if h.cache != nil {
		var cached appcls.CaseDetail
		err := h.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			c.JSON(http.StatusOK, &cached)
			return
		}
		if err != redis.ErrCacheMiss {
			h.logger.Warn("Case cache read failed",
				logging.String("case_id", id),
				logging.Err(err))
		}
	}

	detail, err := h.service.GetCase(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, detail, caseCacheTTL); err != nil {
			h.logger.Warn("Case cache write failed",
				logging.String("case_id", id),
				logging.Err(err))
		}
	}

	c.JSON(http.StatusOK, detail)
}

// ListCases handles GET /api/v1/classifications.
func (h *ClassifyHandler) ListCases(c *gin.Context) {
	page, pageSize := parsePagination(c)
	input := &appcls.ListInput{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}

	result, err := h.service.ListCases(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListCasesResponse{
		Cases:      result.Cases,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

//Personal.AI order the ending
