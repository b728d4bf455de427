package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/source"
)

// BenchmarkRunner is the usecase surface the handler depends on.
type BenchmarkRunner interface {
	Run(
		ctx context.Context,
		workspaceID string,
		clientSource domain.ClientItemSource,
		scrapedSource domain.ScrapedItemSource,
		sourceURL string,
	) (*domain.RunSummary, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	runner BenchmarkRunner
}

// NewHandler creates a new HTTP handler
func NewHandler(runner BenchmarkRunner) *Handler {
	return &Handler{runner: runner}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// RunBenchmarkRequest is the request body for a benchmark run.
type RunBenchmarkRequest struct {
	WorkspaceID      string `json:"workspace_id" binding:"required"`
	ClientItemsPath  string `json:"client_items_path" binding:"required"`
	ScrapedItemsPath string `json:"scraped_items_path" binding:"required"`
	SourceURL        string `json:"source_url"`
}

// RunBenchmark executes a benchmark run and returns its summary.
func (h *Handler) RunBenchmark(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "benchmark service not configured"})
		return
	}

	var req RunBenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id, client_items_path and scraped_items_path are required"})
		return
	}

	summary, err := h.runner.Run(
		c.Request.Context(),
		req.WorkspaceID,
		source.NewClientCSVSource(req.ClientItemsPath),
		source.NewScrapedJSONLSource(req.ScrapedItemsPath),
		req.SourceURL,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSourceUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}
