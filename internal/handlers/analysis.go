package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scripture-analysis-api/internal/services"
)

// AnalysisHandler handles passage analysis endpoints
type AnalysisHandler struct {
	analysis *services.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysis *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// SummaryRequest is the request body for passage summary endpoints.
type SummaryRequest struct {
	Reference    string   `json:"reference"`
	Perspectives []string `json:"perspectives"`
	Question     string   `json:"question,omitempty"`
}

// Summarize handles POST /analysis/summary
func (h *AnalysisHandler) Summarize(c echo.Context) error {
	var req SummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference is required")
	}

	result, err := h.analysis.GetSummary(c.Request().Context(), req.Reference, req.Perspectives)
	if err != nil {
		return referenceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Question handles POST /analysis/question
func (h *AnalysisHandler) Question(c echo.Context) error {
	var req SummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference is required")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	result, err := h.analysis.AskQuestion(c.Request().Context(), req.Reference, req.Question, req.Perspectives)
	if err != nil {
		return referenceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Consensus handles POST /analysis/consensus
func (h *AnalysisHandler) Consensus(c echo.Context) error {
	var req SummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference is required")
	}

	report, err := h.analysis.GetConsensus(c.Request().Context(), req.Reference, req.Perspectives)
	if err != nil {
		return referenceError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// RegisterRoutes registers analysis routes
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/analysis/summary", h.Summarize)
	g.POST("/analysis/question", h.Question)
	g.POST("/analysis/consensus", h.Consensus)
}
