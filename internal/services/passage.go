package services

import (
	"fmt"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/reference"
)

// PassageService serves corpus browsing: books, chapters, and passages
// by reference. Everything reads from the in-memory index; no queries.
type PassageService struct {
	idx      *corpus.Index
	resolver *reference.Resolver
}

// NewPassageService creates a new passage service
func NewPassageService(idx *corpus.Index, resolver *reference.Resolver) *PassageService {
	return &PassageService{idx: idx, resolver: resolver}
}

// Books returns all books in canonical order.
func (s *PassageService) Books() []models.Book {
	books := s.idx.Books()
	for i := range books {
		books[i].ChapterCount = len(s.idx.ChapterNumbers(books[i].ID))
	}
	return books
}

// ChapterVerses returns the verses of one chapter, resolving the book by
// free-text name.
func (s *PassageService) ChapterVerses(bookName string, chapter int) (models.Book, []models.Verse, error) {
	book, ok := s.idx.ResolveBookName(bookName)
	if !ok {
		return models.Book{}, nil, &reference.ParseError{Reason: reference.ReasonBookNotFound, Input: bookName}
	}
	if !s.idx.HasChapter(book.ID, chapter) {
		return models.Book{}, nil, &reference.ParseError{
			Reason: reference.ReasonChapterNotFound,
			Input:  fmt.Sprintf("%s %d", bookName, chapter),
			Detail: fmt.Sprintf("%s has no chapter %d", book.Name, chapter),
		}
	}

	ids := s.idx.ChapterVerseIDs(book.ID, chapter)
	verses := make([]models.Verse, 0, len(ids))
	for _, id := range ids {
		v, ok := s.idx.Verse(id)
		if !ok {
			continue
		}
		verses = append(verses, models.Verse{
			ID:          v.ID,
			VerseNumber: v.VerseNumber,
			Text:        v.Text,
			Reference:   fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.VerseNumber),
		})
	}
	return book, verses, nil
}

// Passage resolves a reference string and returns the display reference,
// the joined passage text, and the verse range.
func (s *PassageService) Passage(ref string) (models.VerseRange, string, string, error) {
	rng, err := s.resolver.Parse(ref)
	if err != nil {
		return models.VerseRange{}, "", "", err
	}
	text, err := s.idx.RangeText(rng.Start, rng.End)
	if err != nil {
		return models.VerseRange{}, "", "", err
	}
	return rng, s.resolver.Format(rng), text, nil
}
