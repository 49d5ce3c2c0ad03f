package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/pkg/platform/db"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	idx *corpus.Index
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(idx *corpus.Index) *HealthHandler {
	return &HealthHandler{idx: idx}
}

// HealthResponse is the response for basic health check
type HealthResponse struct {
	Status     string `json:"status"`
	BookCount  int    `json:"book_count"`
	VerseCount int    `json:"verse_count"`
}

// DatabaseHealthResponse is the response for database health check
type DatabaseHealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		BookCount:  len(h.idx.Books()),
		VerseCount: h.idx.VerseCount(),
	})
}

// PostgresHealth handles GET /health/postgres
func (h *HealthHandler) PostgresHealth(c echo.Context) error {
	if !db.PostgresEnabled() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_configured",
			"error":  "PostgreSQL is not configured",
		})
	}

	pgDB := db.GetPostgres()
	if pgDB == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  "PostgreSQL connection not available",
		})
	}

	if err := pgDB.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, DatabaseHealthResponse{
		Status:   "connected",
		Database: "postgres",
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/postgres", h.PostgresHealth)
}
