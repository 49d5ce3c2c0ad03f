package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/scripture-analysis-api/internal/reference"
	"github.com/scripture-analysis-api/internal/repository"
	"github.com/scripture-analysis-api/internal/services"
)

// BibleHandler handles corpus browsing endpoints
type BibleHandler struct {
	passages *services.PassageService
}

// NewBibleHandler creates a new bible handler
func NewBibleHandler(passages *services.PassageService) *BibleHandler {
	return &BibleHandler{passages: passages}
}

// ListBooks handles GET /bible/books
func (h *BibleHandler) ListBooks(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"books": h.passages.Books(),
	})
}

// GetChapter handles GET /bible/:book/:chapter
func (h *BibleHandler) GetChapter(c echo.Context) error {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || chapter < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid chapter number")
	}

	book, verses, err := h.passages.ChapterVerses(c.Param("book"), chapter)
	if err != nil {
		return referenceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"book":    book,
		"chapter": chapter,
		"verses":  verses,
	})
}

// GetPassage handles GET /bible/passage?reference=John+3:16
func (h *BibleHandler) GetPassage(c echo.Context) error {
	ref := c.QueryParam("reference")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference query parameter is required")
	}

	rng, display, text, err := h.passages.Passage(ref)
	if err != nil {
		return referenceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reference":         display,
		"text":              text,
		"verse_range_start": rng.Start,
		"verse_range_end":   rng.End,
	})
}

// RegisterRoutes registers bible routes
func (h *BibleHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/bible/books", h.ListBooks)
	g.GET("/bible/passage", h.GetPassage)
	g.GET("/bible/:book/:chapter", h.GetChapter)
}

// referenceError maps resolver and repository failures to HTTP errors:
// unknown books and chapters are 404, everything else malformed is 400.
func referenceError(err error) error {
	var perr *reference.ParseError
	if errors.As(err, &perr) {
		switch perr.Reason {
		case reference.ReasonBookNotFound, reference.ReasonChapterNotFound, reference.ReasonVerseRangeEmpty:
			return echo.NewHTTPError(http.StatusNotFound, perr.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
