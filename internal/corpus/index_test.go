package corpus

import (
	"testing"

	"github.com/scripture-analysis-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()

	b := NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "Genesis", Abbreviation: "Gen", Testament: "OT", OrderNumber: 1})
	b.AddBook(models.Book{ID: 2, Name: "Judges", Abbreviation: "Judg", Testament: "OT", OrderNumber: 7})
	b.AddBook(models.Book{ID: 3, Name: "Jude", Abbreviation: "Jude", Testament: "NT", OrderNumber: 65})

	id := int64(0)
	addChapter := func(bookID, chapter int, bookName string, texts ...string) {
		for i, text := range texts {
			id++
			b.AddVerse(VerseRef{ID: id, BookID: bookID, BookName: bookName, Chapter: chapter, VerseNumber: i + 1, Text: text})
		}
	}
	addChapter(1, 1, "Genesis", "In the beginning", "And the earth", "And God said")
	addChapter(1, 2, "Genesis", "Thus the heavens", "And on the seventh day")
	addChapter(2, 1, "Judges", "Now after the death", "And the LORD said")
	addChapter(3, 1, "Jude", "Jude, the servant", "Mercy unto you")

	idx, err := b.Build()
	require.NoError(t, err)
	return idx
}

func TestBuildRejectsNonDenseIDs(t *testing.T) {
	b := NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "Genesis", OrderNumber: 1})
	b.AddVerse(VerseRef{ID: 1, BookID: 1, BookName: "Genesis", Chapter: 1, VerseNumber: 1, Text: "a"})
	b.AddVerse(VerseRef{ID: 3, BookID: 1, BookName: "Genesis", Chapter: 1, VerseNumber: 2, Text: "b"})

	_, err := b.Build()
	assert.ErrorContains(t, err, "not dense")
}

func TestBuildRejectsUnknownBook(t *testing.T) {
	b := NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "Genesis", OrderNumber: 1})
	b.AddVerse(VerseRef{ID: 1, BookID: 9, BookName: "Nowhere", Chapter: 1, VerseNumber: 1, Text: "a"})

	_, err := b.Build()
	assert.ErrorContains(t, err, "unknown book")
}

func TestResolveBookName(t *testing.T) {
	idx := buildTestIndex(t)

	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"exact", "Genesis", "Genesis", true},
		{"exact case-insensitive", "genesis", "Genesis", true},
		{"exact abbreviation", "Gen", "Genesis", true},
		// "Jud" prefix-matches both Judges and Jude; Judges wins on
		// canonical order.
		{"prefix tie canonical order", "Jud", "Judges", true},
		{"exact beats prefix", "Jude", "Jude", true},
		{"substring", "enesi", "Genesis", true},
		{"no match", "Laodiceans", "", false},
		{"empty", "  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, ok := idx.ResolveBookName(tt.input)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, book.Name)
			}
		})
	}
}

func TestChapterLookups(t *testing.T) {
	idx := buildTestIndex(t)

	assert.True(t, idx.HasChapter(1, 2))
	assert.False(t, idx.HasChapter(1, 3))
	assert.Equal(t, []int64{4, 5}, idx.ChapterVerseIDs(1, 2))
	assert.Equal(t, []int{1, 2}, idx.ChapterNumbers(1))
}

func TestRangeText(t *testing.T) {
	idx := buildTestIndex(t)

	text, err := idx.RangeText(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "In the beginning And the earth And God said", text)

	// Single-verse range.
	text, err = idx.RangeText(4, 4)
	require.NoError(t, err)
	assert.Equal(t, "Thus the heavens", text)

	_, err = idx.RangeText(100, 200)
	assert.Error(t, err)
}

func TestDisplayReference(t *testing.T) {
	idx := buildTestIndex(t)

	assert.Equal(t, "Genesis 1:1", idx.DisplayReference(1, 1))
	assert.Equal(t, "Genesis 1:1-3", idx.DisplayReference(1, 3))
	// Reversed endpoints normalize.
	assert.Equal(t, "Genesis 1:1-3", idx.DisplayReference(3, 1))
	assert.Equal(t, "", idx.DisplayReference(500, 501))
}

func TestVerseIDRoundTrip(t *testing.T) {
	idx := buildTestIndex(t)

	id, ok := idx.VerseID(2, 1, 2)
	require.True(t, ok)

	v, ok := idx.Verse(id)
	require.True(t, ok)
	assert.Equal(t, "Judges", v.BookName)
	assert.Equal(t, 1, v.Chapter)
	assert.Equal(t, 2, v.VerseNumber)
}
