package importer

import (
	"context"
	"testing"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryGraph is an in-memory ProphecyRepository covering what the
// pipeline touches.
type memoryGraph struct {
	records []models.ProphecyRecord
	nextID  int64
}

func (m *memoryGraph) Insert(_ context.Context, rec *models.ProphecyRecord) error {
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, *rec)
	return nil
}

func (m *memoryGraph) All(context.Context) ([]models.ProphecyRecord, error) {
	return append([]models.ProphecyRecord(nil), m.records...), nil
}

func (m *memoryGraph) DeleteAll(context.Context) error {
	m.records = nil
	return nil
}

func (m *memoryGraph) ProphecyRangesTouching(context.Context, []int64) ([]models.ProphecyRecord, error) {
	return nil, nil
}

func (m *memoryGraph) FulfillmentRangesTouching(context.Context, []int64) ([]models.FulfillmentMatch, error) {
	return nil, nil
}

func (m *memoryGraph) Get(context.Context, int64) (*models.ProphecyRecord, error) {
	return nil, nil
}

func (m *memoryGraph) CategoryStats(context.Context) ([]models.CategoryCount, error) {
	return nil, nil
}

func (m *memoryGraph) Count(context.Context) (int, error) {
	return len(m.records), nil
}

func testIndex(t *testing.T) *corpus.Index {
	t.Helper()

	b := corpus.NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "Isaiah", Abbreviation: "Isa", Testament: "OT", OrderNumber: 23})
	b.AddBook(models.Book{ID: 2, Name: "Micah", Abbreviation: "Mic", Testament: "OT", OrderNumber: 33})
	b.AddBook(models.Book{ID: 3, Name: "Matthew", Abbreviation: "Matt", Testament: "NT", OrderNumber: 40})

	id := int64(0)
	add := func(bookID int, bookName string, chapter, verses int) {
		for v := 1; v <= verses; v++ {
			id++
			b.AddVerse(corpus.VerseRef{ID: id, BookID: bookID, BookName: bookName, Chapter: chapter, VerseNumber: v, Text: "text"})
		}
	}
	add(1, "Isaiah", 7, 16)
	add(2, "Micah", 5, 5)
	add(3, "Matthew", 1, 25)
	add(3, "Matthew", 2, 12)

	idx, err := b.Build()
	require.NoError(t, err)
	return idx
}

func virginBirthCandidate() Candidate {
	return Candidate{
		Claim:    "The Messiah will be born of a virgin",
		Category: "birth_circumstances",
		ProphecyReference: CandidateReference{
			Book: "Isaiah", Chapter: 7, VerseStart: 14, VerseEnd: 14,
		},
		FulfillmentReferences: []CandidateReference{
			{Book: "Matthew", Chapter: 1, VerseStart: 22, VerseEnd: 23, FulfillmentType: "direct"},
		},
		FulfillmentExplanation: "Matthew cites the sign given to Ahaz.",
	}
}

func TestRunImportsValidCandidate(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{virginBirthCandidate()}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	assert.Empty(t, stats.Dropped)
	require.Len(t, graph.records, 1)

	rec := graph.records[0]
	assert.Equal(t, models.CategoryBirthCircumstances, rec.Category)
	assert.Equal(t, "Isaiah", rec.GeneratedFromBook)
	assert.Equal(t, int64(14), rec.ProphecyVerseStart)
	assert.Equal(t, rec.ProphecyVerseStart, rec.ProphecyVerseEnd)
	require.Len(t, rec.FulfillmentReferences, 1)
	assert.Equal(t, models.FulfillmentDirect, rec.FulfillmentReferences[0].FulfillmentType)
	assert.Equal(t, int64(21+22), rec.FulfillmentReferences[0].VerseStartID)
	assert.Equal(t, int64(21+23), rec.FulfillmentReferences[0].VerseEndID)
}

func TestRunDeduplicatesAcrossSourceBooks(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	// Same claim generated from two different source books.
	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{virginBirthCandidate()}},
		{Book: "Micah", Candidates: []Candidate{virginBirthCandidate()}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Len(t, graph.records, 1)
}

func TestRunKeepsDistinctClaimsOnSameRange(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	other := virginBirthCandidate()
	other.Claim = "Immanuel means God with us"

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{virginBirthCandidate(), other}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 0, stats.Duplicates)
}

func TestRunDedupKeyIgnoresCaseAndTail(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	// Same first 50 characters after case folding counts as the same
	// claim even when the tail differs.
	a := virginBirthCandidate()
	a.Claim = "THE MESSIAH WILL BE BORN OF A VIRGIN IN THE HOUSE OF DAVID"
	b := virginBirthCandidate()
	b.Claim = "the messiah will be born of a virgin in the house of judah"

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{a, b}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestRunDropsBadEnums(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	badCategory := virginBirthCandidate()
	badCategory.Category = "miracles"

	badType := virginBirthCandidate()
	badType.Claim = "A different claim entirely"
	badType.FulfillmentReferences[0].FulfillmentType = "approximate"

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{badCategory, badType, virginBirthCandidate()}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	require.Len(t, stats.Dropped, 2)
	assert.Equal(t, ReasonBadEnum, stats.Dropped[0].Reason)
	assert.Equal(t, ReasonBadEnum, stats.Dropped[1].Reason)
}

func TestRunDropsWholeCandidateOnUnresolvedFulfillment(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	broken := virginBirthCandidate()
	broken.FulfillmentReferences = append(broken.FulfillmentReferences,
		CandidateReference{Book: "Matthew", Chapter: 99, VerseStart: 1, VerseEnd: 1, FulfillmentType: "direct"})

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{broken}},
	})
	require.NoError(t, err)

	// One bad fulfillment reference drops the prophecy and all its
	// fulfillments, not just the bad row.
	assert.Equal(t, 0, stats.Imported)
	require.Len(t, stats.Dropped, 1)
	assert.Equal(t, ReasonUnresolvedReference, stats.Dropped[0].Reason)
	assert.Empty(t, graph.records)
}

func TestRunContinuesAfterDroppedCandidate(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	broken := virginBirthCandidate()
	broken.ProphecyReference.Book = "Atlantis"

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{broken, virginBirthCandidate()}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	assert.Len(t, stats.Dropped, 1)
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	input := []SourceBook{{Book: "Isaiah", Candidates: []Candidate{virginBirthCandidate()}}}

	_, err := NewPipeline(idx, graph).Run(context.Background(), input)
	require.NoError(t, err)

	// A fresh pipeline over the same input sees the committed record in
	// its dedup universe and imports nothing.
	stats, err := NewPipeline(idx, graph).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Imported)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Len(t, graph.records, 1)
}

func TestRunDefaultsMissingVerseEnd(t *testing.T) {
	idx := testIndex(t)
	graph := &memoryGraph{}

	c := virginBirthCandidate()
	c.ProphecyReference.VerseEnd = 0

	stats, err := NewPipeline(idx, graph).Run(context.Background(), []SourceBook{
		{Book: "Isaiah", Candidates: []Candidate{c}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	rec := graph.records[0]
	assert.Equal(t, rec.ProphecyVerseStart, rec.ProphecyVerseEnd)
}
