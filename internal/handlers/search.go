package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/services"
)

// SearchHandler handles search endpoints
type SearchHandler struct {
	search *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// KeywordSearch handles GET /search?q=shepherd - grouped keyword search
func (h *SearchHandler) KeywordSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q query parameter is required")
	}

	result, err := h.search.SearchGrouped(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// SemanticSearch handles POST /search/semantic - vector verse search
func (h *SearchHandler) SemanticSearch(c echo.Context) error {
	var req models.SemanticSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query is required")
	}

	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	results, err := h.search.SearchSemantic(c.Request().Context(), req.Query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, models.SemanticSearchResponse{
		Query:   req.Query,
		Results: results,
	})
}

// RegisterRoutes registers search routes
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.KeywordSearch)
	g.POST("/search/semantic", h.SemanticSearch)
}
