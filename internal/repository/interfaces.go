package repository

import (
	"context"
	"errors"

	"github.com/scripture-analysis-api/internal/models"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// AnalysisCacheRepository persists per-perspective analyses keyed by
// (verse range, text hash). Entries are extended at the perspective-key
// level, never replaced wholesale, so concurrent merges of disjoint
// perspective sets both survive.
type AnalysisCacheRepository interface {
	// Get returns the entry for the key, or ErrNotFound when no entry
	// exists at all (distinct from an entry missing some perspectives).
	Get(ctx context.Context, rng models.VerseRange, textHash string) (*models.AnalysisEntry, error)

	// UpsertPerspectives creates the entry if absent, otherwise upserts
	// the given perspective keys and appends the cross-reference
	// aggregate. Keys not named are left untouched.
	UpsertPerspectives(ctx context.Context, rng models.VerseRange, textHash string,
		perspectives map[string]models.Analysis, crossRefs []models.CrossReference) error
}

// ProphecyRepository stores the fulfillment graph. Written only by the
// import pipeline (single writer), read concurrently.
type ProphecyRepository interface {
	// ProphecyRangesTouching returns prophecies whose anchored range
	// starts or ends at any of the given verse ids.
	ProphecyRangesTouching(ctx context.Context, verseIDs []int64) ([]models.ProphecyRecord, error)

	// FulfillmentRangesTouching returns (prophecy, fulfillment) pairs
	// whose fulfillment range starts at any of the given verse ids.
	FulfillmentRangesTouching(ctx context.Context, verseIDs []int64) ([]models.FulfillmentMatch, error)

	// Get returns one prophecy with its fulfillment references.
	Get(ctx context.Context, id int64) (*models.ProphecyRecord, error)

	// Insert commits a fully-resolved record atomically (prophecy row
	// plus fulfillment rows in one transaction).
	Insert(ctx context.Context, rec *models.ProphecyRecord) error

	// DeleteAll clears the graph ahead of a wholesale re-import.
	DeleteAll(ctx context.Context) error

	// All returns every stored prophecy; the import pipeline loads this
	// once at start as its dedup universe.
	All(ctx context.Context) ([]models.ProphecyRecord, error)

	// CategoryStats counts prophecies per category.
	CategoryStats(ctx context.Context) ([]models.CategoryCount, error)

	// Count returns the number of stored prophecies.
	Count(ctx context.Context) (int, error)
}

// SearchCacheRepository is the permanent keyword-search cache, keyed by
// the digest of the query text (same primitive as the analysis cache).
type SearchCacheRepository interface {
	Get(ctx context.Context, queryHash string) (*models.GroupedSearchResult, error)
	Put(ctx context.Context, queryHash, queryText string, result *models.GroupedSearchResult) error
}

// VerseSearchRepository performs keyword search over verse text.
type VerseSearchRepository interface {
	SearchGroupedByBook(ctx context.Context, query string, samplesPerBook int) ([]models.BookGroup, error)
}

// VectorSearchRepository performs vector similarity search over verses.
type VectorSearchRepository interface {
	SearchVersesByEmbedding(ctx context.Context, embedding []float64, topK int) ([]models.ScoredVerse, error)
}
