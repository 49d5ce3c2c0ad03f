// Package reference parses human-readable scripture references
// ("Book Chapter:Verse" or "Book Chapter:Verse-Verse") into verse id
// ranges against the corpus index, and formats id ranges back into
// canonical display strings.
package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
)

// ParseReason identifies why a reference failed to parse or resolve.
type ParseReason string

const (
	ReasonMalformed       ParseReason = "malformed"
	ReasonInvalidChapter  ParseReason = "invalid-chapter"
	ReasonInvalidVerse    ParseReason = "invalid-verse"
	ReasonBookNotFound    ParseReason = "book-not-found"
	ReasonChapterNotFound ParseReason = "chapter-not-found"
	ReasonVerseRangeEmpty ParseReason = "verse-range-empty"
)

// ParseError reports a reference that could not be resolved, with enough
// detail for the caller to correct the input. Never retried.
type ParseError struct {
	Reason ParseReason
	Input  string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("parse reference %q: %s (%s)", e.Input, e.Reason, e.Detail)
	}
	return fmt.Sprintf("parse reference %q: %s", e.Input, e.Reason)
}

// Resolver turns reference strings into verse ranges using the corpus
// index, and back.
type Resolver struct {
	idx *corpus.Index
}

// NewResolver creates a resolver over the given corpus index.
func NewResolver(idx *corpus.Index) *Resolver {
	return &Resolver{idx: idx}
}

// Parse resolves a reference like "John 3:16" or "Romans 3:23-24" to an
// inclusive verse id range. The book name is everything before the last
// space; the final token must contain a colon. This split is lossless
// for every canonical book name, including numeric-prefixed ones like
// "1 Samuel", because the chapter:verse token always carries the colon.
func (r *Resolver) Parse(ref string) (models.VerseRange, error) {
	ref = strings.TrimSpace(ref)

	cut := strings.LastIndex(ref, " ")
	if cut < 0 {
		return models.VerseRange{}, &ParseError{Reason: ReasonMalformed, Input: ref, Detail: "expected \"Book Chapter:Verse\""}
	}
	bookName := strings.TrimSpace(ref[:cut])
	chapterVerse := ref[cut+1:]

	chapterPart, versePart, ok := strings.Cut(chapterVerse, ":")
	if !ok {
		return models.VerseRange{}, &ParseError{Reason: ReasonMalformed, Input: ref, Detail: "missing colon in chapter:verse"}
	}

	chapter, err := strconv.Atoi(chapterPart)
	if err != nil || chapter < 1 {
		return models.VerseRange{}, &ParseError{Reason: ReasonInvalidChapter, Input: ref, Detail: chapterPart}
	}

	verseStart, verseEnd, err := parseVerseSpan(versePart)
	if err != nil {
		return models.VerseRange{}, &ParseError{Reason: ReasonInvalidVerse, Input: ref, Detail: versePart}
	}

	book, ok := r.idx.ResolveBookName(bookName)
	if !ok {
		return models.VerseRange{}, &ParseError{Reason: ReasonBookNotFound, Input: ref, Detail: bookName}
	}

	if !r.idx.HasChapter(book.ID, chapter) {
		return models.VerseRange{}, &ParseError{
			Reason: ReasonChapterNotFound,
			Input:  ref,
			Detail: fmt.Sprintf("%s has no chapter %d", book.Name, chapter),
		}
	}

	startID, startOK := r.idx.VerseID(book.ID, chapter, verseStart)
	endID, endOK := r.idx.VerseID(book.ID, chapter, verseEnd)
	if !startOK || !endOK || startID > endID {
		return models.VerseRange{}, &ParseError{
			Reason: ReasonVerseRangeEmpty,
			Input:  ref,
			Detail: fmt.Sprintf("%s %d:%d-%d has no verses", book.Name, chapter, verseStart, verseEnd),
		}
	}

	return models.VerseRange{Start: startID, End: endID}, nil
}

// Format renders a verse id range as its canonical display string.
func (r *Resolver) Format(rng models.VerseRange) string {
	return r.idx.DisplayReference(rng.Start, rng.End)
}

// parseVerseSpan parses "16" or "23-24", normalizing so start <= end.
func parseVerseSpan(s string) (int, int, error) {
	startPart, endPart, isRange := strings.Cut(s, "-")

	start, err := strconv.Atoi(startPart)
	if err != nil || start < 1 {
		return 0, 0, fmt.Errorf("invalid verse %q", startPart)
	}
	if !isRange {
		return start, start, nil
	}

	end, err := strconv.Atoi(endPart)
	if err != nil || end < 1 {
		return 0, 0, fmt.Errorf("invalid verse %q", endPart)
	}
	if end < start {
		start, end = end, start
	}
	return start, end, nil
}
