package models

// Book is one book of the canon. Immutable after corpus load.
type Book struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Abbreviation string `json:"abbreviation" db:"abbreviation"`
	Testament    string `json:"testament" db:"testament"`
	OrderNumber  int    `json:"order_number" db:"order_number"`
	ChapterCount int    `json:"chapter_count,omitempty" db:"chapter_count"`
}

// Chapter is a 1-based chapter within a book.
type Chapter struct {
	ID            int `json:"id" db:"id"`
	BookID        int `json:"book_id" db:"book_id"`
	ChapterNumber int `json:"chapter_number" db:"chapter_number"`
	VerseCount    int `json:"verse_count,omitempty" db:"verse_count"`
}

// Verse carries the raw text and its position. Verse ids are dense and
// ordered in canonical (book order, chapter, verse) order, so any pair
// a <= b is a valid inclusive reading range.
type Verse struct {
	ID          int64  `json:"id" db:"id"`
	ChapterID   int    `json:"chapter_id" db:"chapter_id"`
	VerseNumber int    `json:"verse_number" db:"verse_number"`
	Text        string `json:"text" db:"text"`
	Reference   string `json:"reference,omitempty"`
}

// VerseRange is an inclusive span of verse ids, start <= end.
// Derived per request, never persisted.
type VerseRange struct {
	Start int64 `json:"verse_range_start"`
	End   int64 `json:"verse_range_end"`
}

// Single reports whether the range covers exactly one verse.
func (r VerseRange) Single() bool { return r.Start == r.End }
