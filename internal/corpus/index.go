package corpus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scripture-analysis-api/internal/models"
)

// VerseRef is one verse as the index sees it: position plus text.
type VerseRef struct {
	ID          int64
	BookID      int
	BookName    string
	Chapter     int
	VerseNumber int
	Text        string
}

// Index is the immutable corpus index: (book, chapter, verse) -> verse id
// and back. Built once at startup and shared without synchronization;
// a corpus reload would be an atomic swap of the whole Index, never an
// in-place mutation.
type Index struct {
	books      []models.Book // canonical order
	booksByID  map[int]*models.Book
	verses     map[int64]VerseRef
	verseIDs   map[verseKey]int64
	chapters   map[chapterKey][]int64 // verse ids in verse-number order
	minVerseID int64
	maxVerseID int64
}

type verseKey struct {
	bookID  int
	chapter int
	verse   int
}

type chapterKey struct {
	bookID  int
	chapter int
}

// Builder accumulates corpus rows before freezing them into an Index.
// Verses must be added in canonical (book order, chapter, verse) order
// with dense, increasing ids; Build rejects anything else since range
// queries depend on that invariant.
type Builder struct {
	books  []models.Book
	verses []VerseRef
}

// NewBuilder returns an empty corpus builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddBook registers a book. Call before adding its verses.
func (b *Builder) AddBook(book models.Book) {
	b.books = append(b.books, book)
}

// AddVerse appends one verse row.
func (b *Builder) AddVerse(v VerseRef) {
	b.verses = append(b.verses, v)
}

// Build freezes the accumulated rows into an immutable Index.
func (b *Builder) Build() (*Index, error) {
	idx := &Index{
		books:     make([]models.Book, len(b.books)),
		booksByID: make(map[int]*models.Book, len(b.books)),
		verses:    make(map[int64]VerseRef, len(b.verses)),
		verseIDs:  make(map[verseKey]int64, len(b.verses)),
		chapters:  make(map[chapterKey][]int64),
	}

	copy(idx.books, b.books)
	sort.Slice(idx.books, func(i, j int) bool {
		return idx.books[i].OrderNumber < idx.books[j].OrderNumber
	})
	for i := range idx.books {
		idx.booksByID[idx.books[i].ID] = &idx.books[i]
	}

	var prev int64
	for i, v := range b.verses {
		if _, ok := idx.booksByID[v.BookID]; !ok {
			return nil, fmt.Errorf("verse %d references unknown book %d", v.ID, v.BookID)
		}
		if i > 0 && v.ID != prev+1 {
			return nil, fmt.Errorf("verse ids not dense at %d (previous %d)", v.ID, prev)
		}
		prev = v.ID

		idx.verses[v.ID] = v
		idx.verseIDs[verseKey{v.BookID, v.Chapter, v.VerseNumber}] = v.ID
		ck := chapterKey{v.BookID, v.Chapter}
		idx.chapters[ck] = append(idx.chapters[ck], v.ID)

		if idx.minVerseID == 0 {
			idx.minVerseID = v.ID
		}
		idx.maxVerseID = v.ID
	}

	return idx, nil
}

// Books returns all books in canonical order.
func (idx *Index) Books() []models.Book {
	out := make([]models.Book, len(idx.books))
	copy(out, idx.books)
	return out
}

// Book returns a book by id.
func (idx *Index) Book(id int) (models.Book, bool) {
	b, ok := idx.booksByID[id]
	if !ok {
		return models.Book{}, false
	}
	return *b, true
}

// ResolveBookName resolves free text to a book. Match policy, in order:
// case-insensitive exact, then prefix, then substring, each tried against
// the name and the abbreviation. Within a tier the first book in
// canonical order wins; ties are resolved by order, not by closeness.
func (idx *Index) ResolveBookName(name string) (models.Book, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return models.Book{}, false
	}

	match := func(test func(candidate string) bool) (models.Book, bool) {
		for _, b := range idx.books {
			if test(strings.ToLower(b.Name)) || test(strings.ToLower(b.Abbreviation)) {
				return b, true
			}
		}
		return models.Book{}, false
	}

	if b, ok := match(func(c string) bool { return c == needle }); ok {
		return b, true
	}
	if b, ok := match(func(c string) bool { return strings.HasPrefix(c, needle) }); ok {
		return b, true
	}
	return match(func(c string) bool { return strings.Contains(c, needle) })
}

// VerseID maps a (book, chapter, verse) triple to its verse id.
func (idx *Index) VerseID(bookID, chapter, verse int) (int64, bool) {
	id, ok := idx.verseIDs[verseKey{bookID, chapter, verse}]
	return id, ok
}

// Verse returns the verse with the given id.
func (idx *Index) Verse(id int64) (VerseRef, bool) {
	v, ok := idx.verses[id]
	return v, ok
}

// HasChapter reports whether the book has the given chapter.
func (idx *Index) HasChapter(bookID, chapter int) bool {
	return len(idx.chapters[chapterKey{bookID, chapter}]) > 0
}

// ChapterVerseIDs returns the verse ids of one chapter in verse order.
func (idx *Index) ChapterVerseIDs(bookID, chapter int) []int64 {
	ids := idx.chapters[chapterKey{bookID, chapter}]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// ChapterNumbers returns the chapter numbers of a book in ascending order.
func (idx *Index) ChapterNumbers(bookID int) []int {
	var nums []int
	for ck := range idx.chapters {
		if ck.bookID == bookID {
			nums = append(nums, ck.chapter)
		}
	}
	sort.Ints(nums)
	return nums
}

// VersesInRange returns the verses of an inclusive id range in id order.
func (idx *Index) VersesInRange(start, end int64) []VerseRef {
	if start > end {
		start, end = end, start
	}
	var out []VerseRef
	for id := start; id <= end; id++ {
		if v, ok := idx.verses[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// RangeText joins the verse texts of an inclusive range with a single
// space, in id order, with no other normalization. This exact string is
// what the content hasher digests: any edit to an underlying verse
// changes the digest and silently retires old cache entries.
func (idx *Index) RangeText(start, end int64) (string, error) {
	verses := idx.VersesInRange(start, end)
	if len(verses) == 0 {
		return "", fmt.Errorf("no verses in range %d-%d", start, end)
	}
	texts := make([]string, len(verses))
	for i, v := range verses {
		texts[i] = v.Text
	}
	return strings.Join(texts, " "), nil
}

// DisplayReference formats an id range as "Book C:V" or "Book C:V-V".
// Ranges that cross a chapter boundary are rendered using the start
// verse's chapter only.
func (idx *Index) DisplayReference(start, end int64) string {
	if start > end {
		start, end = end, start
	}
	sv, ok := idx.verses[start]
	if !ok {
		return ""
	}
	if start == end {
		return fmt.Sprintf("%s %d:%d", sv.BookName, sv.Chapter, sv.VerseNumber)
	}
	ev, ok := idx.verses[end]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %d:%d-%d", sv.BookName, sv.Chapter, sv.VerseNumber, ev.VerseNumber)
}

// VerseCount returns the number of indexed verses.
func (idx *Index) VerseCount() int {
	return len(idx.verses)
}
