package reference

import (
	"testing"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()

	b := corpus.NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "1 Samuel", Abbreviation: "1Sam", Testament: "OT", OrderNumber: 9})
	b.AddBook(models.Book{ID: 2, Name: "John", Abbreviation: "John", Testament: "NT", OrderNumber: 43})
	b.AddBook(models.Book{ID: 3, Name: "Romans", Abbreviation: "Rom", Testament: "NT", OrderNumber: 45})

	id := int64(0)
	add := func(bookID int, bookName string, chapter int, verses int) {
		for v := 1; v <= verses; v++ {
			id++
			b.AddVerse(corpus.VerseRef{ID: id, BookID: bookID, BookName: bookName, Chapter: chapter, VerseNumber: v, Text: "text"})
		}
	}
	add(1, "1 Samuel", 17, 4)
	add(2, "John", 3, 18)
	add(3, "Romans", 3, 25)

	idx, err := b.Build()
	require.NoError(t, err)
	return NewResolver(idx)
}

func TestParseSingleVerse(t *testing.T) {
	r := testResolver(t)

	rng, err := r.Parse("John 3:16")
	require.NoError(t, err)
	assert.True(t, rng.Single())
	assert.Equal(t, "John 3:16", r.Format(rng))
}

func TestParseVerseSpan(t *testing.T) {
	r := testResolver(t)

	rng, err := r.Parse("Romans 3:23-24")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rng.End-rng.Start+1)
	assert.Equal(t, "Romans 3:23-24", r.Format(rng))
}

func TestParseReversedSpanNormalizes(t *testing.T) {
	r := testResolver(t)

	rng, err := r.Parse("Romans 3:24-23")
	require.NoError(t, err)
	assert.LessOrEqual(t, rng.Start, rng.End)
	assert.Equal(t, "Romans 3:23-24", r.Format(rng))
}

func TestParseNumericBookName(t *testing.T) {
	r := testResolver(t)

	// The last-space split must keep "1 Samuel" intact.
	rng, err := r.Parse("1 Samuel 17:4")
	require.NoError(t, err)
	assert.Equal(t, "1 Samuel 17:4", r.Format(rng))
}

func TestParseTrimsWhitespace(t *testing.T) {
	r := testResolver(t)

	rng, err := r.Parse("  John 3:16  ")
	require.NoError(t, err)
	assert.Equal(t, "John 3:16", r.Format(rng))
}

func TestParseErrors(t *testing.T) {
	r := testResolver(t)

	tests := []struct {
		name   string
		input  string
		reason ParseReason
	}{
		{"no space", "John3:16", ReasonMalformed},
		{"no colon", "John 316", ReasonMalformed},
		{"non-numeric chapter", "John x:16", ReasonInvalidChapter},
		{"zero chapter", "John 0:16", ReasonInvalidChapter},
		{"non-numeric verse", "John 3:x", ReasonInvalidVerse},
		{"zero verse", "John 3:0", ReasonInvalidVerse},
		{"unknown book", "Laodiceans 1:1", ReasonBookNotFound},
		{"missing chapter", "John 99:1", ReasonChapterNotFound},
		{"verse past chapter end", "John 3:99", ReasonVerseRangeEmpty},
		{"span past chapter end", "John 3:17-99", ReasonVerseRangeEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Parse(tt.input)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.reason, perr.Reason)
		})
	}
}
