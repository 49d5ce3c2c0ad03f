package services

import (
	"context"
	"fmt"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/reference"
	"github.com/scripture-analysis-api/internal/repository"
)

// ProphecyService answers fulfillment graph queries. The chapter
// highlight lookups translate a chapter into its verse ids and hit the
// indexed graph tables directly.
type ProphecyService struct {
	idx  *corpus.Index
	repo repository.ProphecyRepository
}

// NewProphecyService creates a new prophecy service
func NewProphecyService(idx *corpus.Index, repo repository.ProphecyRepository) *ProphecyService {
	return &ProphecyService{idx: idx, repo: repo}
}

// ChapterHighlights returns the prophecies anchored in a chapter and the
// fulfillments whose ranges start there.
func (s *ProphecyService) ChapterHighlights(ctx context.Context, bookName string, chapter int) (*models.ChapterHighlights, error) {
	book, ok := s.idx.ResolveBookName(bookName)
	if !ok {
		return nil, &reference.ParseError{Reason: reference.ReasonBookNotFound, Input: bookName}
	}
	if !s.idx.HasChapter(book.ID, chapter) {
		return nil, &reference.ParseError{
			Reason: reference.ReasonChapterNotFound,
			Input:  fmt.Sprintf("%s %d", bookName, chapter),
			Detail: fmt.Sprintf("%s has no chapter %d", book.Name, chapter),
		}
	}

	verseIDs := s.idx.ChapterVerseIDs(book.ID, chapter)

	prophecies, err := s.repo.ProphecyRangesTouching(ctx, verseIDs)
	if err != nil {
		return nil, fmt.Errorf("chapter prophecies: %w", err)
	}
	fulfillments, err := s.repo.FulfillmentRangesTouching(ctx, verseIDs)
	if err != nil {
		return nil, fmt.Errorf("chapter fulfillments: %w", err)
	}

	return &models.ChapterHighlights{
		Book:         book.Name,
		Chapter:      chapter,
		Prophecies:   prophecies,
		Fulfillments: fulfillments,
	}, nil
}

// Get returns one prophecy by id.
func (s *ProphecyService) Get(ctx context.Context, id int64) (*models.ProphecyRecord, error) {
	return s.repo.Get(ctx, id)
}

// CategoryStats returns prophecy counts per category.
func (s *ProphecyService) CategoryStats(ctx context.Context) ([]models.CategoryCount, error) {
	return s.repo.CategoryStats(ctx)
}

// Count returns the total number of prophecies.
func (s *ProphecyService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
