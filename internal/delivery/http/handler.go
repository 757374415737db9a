package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/wbscout/wbscout/internal/domain"
	"github.com/wbscout/wbscout/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const maxLimit = 100

// Searcher fetches and renders results for a query
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*usecase.SearchOutcome, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher Searcher
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wbscout",
		"version": Version,
	})
}

// SearchPage renders the results page for ?q=<query>&limit=<n>
func (h *Handler) SearchPage(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "search service not configured",
		})
		return
	}

	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'q' is required",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be an integer between 1 and 100",
			})
			return
		}
		limit = n
	}

	outcome, err := h.searcher.Search(c.Request.Context(), query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("query", query).Msg("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render results"})
		return
	}

	c.Header("X-Result-Count", strconv.Itoa(outcome.Page.Cards))
	c.Data(http.StatusOK, "text/html; charset=utf-8", outcome.Page.HTML)
}
