package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/scripture-analysis-api/internal/services"
)

// ProphecyHandler handles fulfillment graph endpoints
type ProphecyHandler struct {
	prophecies *services.ProphecyService
}

// NewProphecyHandler creates a new prophecy handler
func NewProphecyHandler(prophecies *services.ProphecyService) *ProphecyHandler {
	return &ProphecyHandler{prophecies: prophecies}
}

// ChapterHighlights handles GET /prophecy/:book/:chapter
func (h *ProphecyHandler) ChapterHighlights(c echo.Context) error {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || chapter < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid chapter number")
	}

	highlights, err := h.prophecies.ChapterHighlights(c.Request().Context(), c.Param("book"), chapter)
	if err != nil {
		return referenceError(err)
	}
	return c.JSON(http.StatusOK, highlights)
}

// GetProphecy handles GET /prophecy/:id
func (h *ProphecyHandler) GetProphecy(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid prophecy id")
	}

	rec, err := h.prophecies.Get(c.Request().Context(), id)
	if err != nil {
		return referenceError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Stats handles GET /prophecy/stats
func (h *ProphecyHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.prophecies.CategoryStats(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.prophecies.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":      total,
		"categories": counts,
	})
}

// RegisterRoutes registers prophecy routes
func (h *ProphecyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/prophecy/stats", h.Stats)
	g.GET("/prophecy/id/:id", h.GetProphecy)
	g.GET("/prophecy/:book/:chapter", h.ChapterHighlights)
}
