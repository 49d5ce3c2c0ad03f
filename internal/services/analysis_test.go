package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/scripture-analysis-api/internal/analyzer"
	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/reference"
	"github.com/scripture-analysis-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheKey struct {
	start, end int64
	hash       string
}

// memoryCache mimics the key-scoped merge of the real store: upserts
// extend the perspectives map and append cross-references, never replace
// the entry wholesale.
type memoryCache struct {
	entries map[cacheKey]*models.AnalysisEntry
	upserts int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[cacheKey]*models.AnalysisEntry{}}
}

func (m *memoryCache) Get(_ context.Context, rng models.VerseRange, textHash string) (*models.AnalysisEntry, error) {
	e, ok := m.entries[cacheKey{rng.Start, rng.End, textHash}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	cp.Perspectives = make(map[string]models.Analysis, len(e.Perspectives))
	for k, v := range e.Perspectives {
		cp.Perspectives[k] = v
	}
	return &cp, nil
}

func (m *memoryCache) UpsertPerspectives(_ context.Context, rng models.VerseRange, textHash string,
	perspectives map[string]models.Analysis, crossRefs []models.CrossReference) error {
	m.upserts++
	key := cacheKey{rng.Start, rng.End, textHash}
	e, ok := m.entries[key]
	if !ok {
		e = &models.AnalysisEntry{
			Range:        rng,
			TextHash:     textHash,
			Perspectives: map[string]models.Analysis{},
		}
		m.entries[key] = e
	}
	for k, v := range perspectives {
		e.Perspectives[k] = v
	}
	e.CrossReferences = append(e.CrossReferences, crossRefs...)
	return nil
}

// stubAnalyzer returns canned analyses and records what it was asked to
// generate. Perspectives in failing degrade to placeholders, matching
// the production contract.
type stubAnalyzer struct {
	calls   [][]string
	failing map[string]bool
}

func (s *stubAnalyzer) GenerateAnalyses(ctx context.Context, _, _ string, perspectives []string) (map[string]models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls = append(s.calls, perspectives)
	out := make(map[string]models.Analysis, len(perspectives))
	for _, p := range perspectives {
		if s.failing[p] {
			out[p] = analyzer.PlaceholderAnalysis(p)
			continue
		}
		out[p] = models.Analysis{
			ResponseText: "analysis from " + p,
			CrossReferences: []models.CrossReference{
				{Book: "Romans", Chapter: 3, VerseStart: 23, ReferenceDisplay: "Romans 3:23", RelevanceNote: "cited by " + p},
			},
		}
	}
	return out, nil
}

func (s *stubAnalyzer) AnswerQuestion(ctx context.Context, _, _, _ string, perspectives []string) (map[string]models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]models.Analysis, len(perspectives))
	for _, p := range perspectives {
		out[p] = models.Analysis{ResponseText: "answer from " + p, CrossReferences: []models.CrossReference{}}
	}
	return out, nil
}

func (s *stubAnalyzer) SummarizeConsensus(context.Context, string, string, map[string]models.Analysis) (*models.ConsensusReport, error) {
	return &models.ConsensusReport{ConsensusClassification: "strong", OverallConsensusScore: 0.8}, nil
}

func testAnalysisService(t *testing.T) (*AnalysisService, *memoryCache, *stubAnalyzer) {
	t.Helper()

	b := corpus.NewBuilder()
	b.AddBook(models.Book{ID: 1, Name: "John", Abbreviation: "John", Testament: "NT", OrderNumber: 43})
	for v := 1; v <= 20; v++ {
		b.AddVerse(corpus.VerseRef{ID: int64(v), BookID: 1, BookName: "John", Chapter: 3, VerseNumber: v,
			Text: fmt.Sprintf("verse %d", v)})
	}
	idx, err := b.Build()
	require.NoError(t, err)

	cache := newMemoryCache()
	stub := &stubAnalyzer{failing: map[string]bool{}}
	svc := NewAnalysisService(idx, reference.NewResolver(idx), cache, stub)
	return svc, cache, stub
}

func TestGetSummaryGeneratesOnMiss(t *testing.T) {
	svc, cache, stub := testAnalysisService(t)

	result, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic", "baptist"})
	require.NoError(t, err)

	assert.False(t, result.Cached)
	assert.Len(t, result.Perspectives, 2)
	assert.Equal(t, "John 3:16", result.Reference)
	assert.Equal(t, "verse 16", result.VerseText)
	require.Len(t, stub.calls, 1)
	assert.ElementsMatch(t, []string{"catholic", "baptist"}, stub.calls[0])
	assert.Equal(t, 1, cache.upserts)
}

func TestGetSummaryFullHitSkipsGeneration(t *testing.T) {
	svc, cache, stub := testAnalysisService(t)

	_, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic"})
	require.NoError(t, err)

	result, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic"})
	require.NoError(t, err)

	assert.True(t, result.Cached)
	assert.Len(t, stub.calls, 1)
	assert.Equal(t, 1, cache.upserts)
}

func TestGetSummaryPartialHitGeneratesOnlyMissing(t *testing.T) {
	svc, _, stub := testAnalysisService(t)

	_, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic"})
	require.NoError(t, err)

	result, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic", "lutheran"})
	require.NoError(t, err)

	assert.False(t, result.Cached)
	assert.Len(t, result.Perspectives, 2)
	require.Len(t, stub.calls, 2)
	assert.Equal(t, []string{"lutheran"}, stub.calls[1])
}

func TestGetSummaryDisjointMergesBothSurvive(t *testing.T) {
	svc, cache, _ := testAnalysisService(t)

	_, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic"})
	require.NoError(t, err)
	_, err = svc.GetSummary(context.Background(), "John 3:16", []string{"baptist"})
	require.NoError(t, err)

	require.Len(t, cache.entries, 1)
	for _, e := range cache.entries {
		assert.Contains(t, e.Perspectives, "catholic")
		assert.Contains(t, e.Perspectives, "baptist")
	}
}

func TestGetSummaryCancelledContextWritesNothing(t *testing.T) {
	svc, cache, _ := testAnalysisService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetSummary(ctx, "John 3:16", []string{"catholic"})
	require.Error(t, err)
	assert.Empty(t, cache.entries)
	assert.Equal(t, 0, cache.upserts)
}

func TestGetSummaryDegradedPlaceholderIsCached(t *testing.T) {
	svc, cache, stub := testAnalysisService(t)
	stub.failing["catholic"] = true

	result, err := svc.GetSummary(context.Background(), "John 3:16", []string{"catholic"})
	require.NoError(t, err)
	assert.True(t, result.Perspectives["catholic"].Degraded)

	// The placeholder satisfies the next lookup like any cached result.
	result, err = svc.GetSummary(context.Background(), "John 3:16", []string{"catholic"})
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.True(t, result.Perspectives["catholic"].Degraded)
	assert.Len(t, stub.calls, 1)
	require.Len(t, cache.entries, 1)
}

func TestGetSummaryRejectsUnknownPerspective(t *testing.T) {
	svc, cache, stub := testAnalysisService(t)

	_, err := svc.GetSummary(context.Background(), "John 3:16", []string{"gnostic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid perspectives")
	assert.Empty(t, stub.calls)
	assert.Empty(t, cache.entries)
}

func TestGetSummaryDefaultsPerspectives(t *testing.T) {
	svc, _, stub := testAnalysisService(t)

	result, err := svc.GetSummary(context.Background(), "John 3:16", nil)
	require.NoError(t, err)
	assert.Len(t, result.Perspectives, len(analyzer.DefaultPerspectives))
	require.Len(t, stub.calls, 1)
	assert.ElementsMatch(t, analyzer.DefaultPerspectives, stub.calls[0])
}

func TestGetSummaryRangeUsesJoinedText(t *testing.T) {
	svc, _, _ := testAnalysisService(t)

	result, err := svc.GetSummary(context.Background(), "John 3:16-17", []string{"catholic"})
	require.NoError(t, err)
	assert.Equal(t, "verse 16 verse 17", result.VerseText)
	assert.Equal(t, "John 3:16-17", result.Reference)
	assert.False(t, result.Range.Single())
}

func TestAskQuestionNeverTouchesCache(t *testing.T) {
	svc, cache, _ := testAnalysisService(t)

	result, err := svc.AskQuestion(context.Background(), "John 3:16", "What does this mean?", []string{"catholic"})
	require.NoError(t, err)
	assert.Equal(t, "answer from catholic", result.Perspectives["catholic"].ResponseText)
	assert.Empty(t, cache.entries)
	assert.Equal(t, 0, cache.upserts)
}

func TestGetSummaryBadReference(t *testing.T) {
	svc, _, _ := testAnalysisService(t)

	_, err := svc.GetSummary(context.Background(), "Nothing 1:1", []string{"catholic"})
	var perr *reference.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, reference.ReasonBookNotFound, perr.Reason)
}
