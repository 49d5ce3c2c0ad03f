package services

import (
	"context"
	"testing"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGraph captures the verse ids the service queries with.
type recordingGraph struct {
	prophecyIDs    []int64
	fulfillmentIDs []int64
}

func (g *recordingGraph) ProphecyRangesTouching(_ context.Context, ids []int64) ([]models.ProphecyRecord, error) {
	g.prophecyIDs = ids
	return []models.ProphecyRecord{{ID: 1, Claim: "claim"}}, nil
}

func (g *recordingGraph) FulfillmentRangesTouching(_ context.Context, ids []int64) ([]models.FulfillmentMatch, error) {
	g.fulfillmentIDs = ids
	return []models.FulfillmentMatch{}, nil
}

func (g *recordingGraph) Get(context.Context, int64) (*models.ProphecyRecord, error) { return nil, nil }
func (g *recordingGraph) Insert(context.Context, *models.ProphecyRecord) error       { return nil }
func (g *recordingGraph) DeleteAll(context.Context) error                            { return nil }
func (g *recordingGraph) All(context.Context) ([]models.ProphecyRecord, error)       { return nil, nil }
func (g *recordingGraph) CategoryStats(context.Context) ([]models.CategoryCount, error) {
	return nil, nil
}
func (g *recordingGraph) Count(context.Context) (int, error) { return 0, nil }

func prophecyTestIndex(t *testing.T) *corpus.Index {
	t.Helper()

	b := corpus.NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "Micah", Abbreviation: "Mic", Testament: "OT", OrderNumber: 33})
	for v := 1; v <= 4; v++ {
		b.AddVerse(corpus.VerseRef{ID: int64(v), BookID: 1, BookName: "Micah", Chapter: 5, VerseNumber: v, Text: "text"})
	}
	idx, err := b.Build()
	require.NoError(t, err)
	return idx
}

func TestChapterHighlightsQueriesChapterVerseIDs(t *testing.T) {
	idx := prophecyTestIndex(t)
	graph := &recordingGraph{}
	svc := NewProphecyService(idx, graph)

	highlights, err := svc.ChapterHighlights(context.Background(), "Micah", 5)
	require.NoError(t, err)

	assert.Equal(t, "Micah", highlights.Book)
	assert.Equal(t, 5, highlights.Chapter)
	assert.Equal(t, []int64{1, 2, 3, 4}, graph.prophecyIDs)
	assert.Equal(t, []int64{1, 2, 3, 4}, graph.fulfillmentIDs)
	assert.Len(t, highlights.Prophecies, 1)
	assert.NotNil(t, highlights.Fulfillments)
}

func TestChapterHighlightsUnknownBook(t *testing.T) {
	svc := NewProphecyService(prophecyTestIndex(t), &recordingGraph{})

	_, err := svc.ChapterHighlights(context.Background(), "Atlantis", 1)
	var perr *reference.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, reference.ReasonBookNotFound, perr.Reason)
}

func TestChapterHighlightsUnknownChapter(t *testing.T) {
	svc := NewProphecyService(prophecyTestIndex(t), &recordingGraph{})

	_, err := svc.ChapterHighlights(context.Background(), "Micah", 99)
	var perr *reference.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, reference.ReasonChapterNotFound, perr.Reason)
}
