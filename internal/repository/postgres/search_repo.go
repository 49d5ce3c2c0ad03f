package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/repository"
)

// SearchCacheRepository implements repository.SearchCacheRepository for
// PostgreSQL. Results are cached permanently by query digest; the corpus
// is immutable so entries never go stale.
type SearchCacheRepository struct {
	db *sqlx.DB
}

// NewSearchCacheRepository creates a new PostgreSQL search cache repository
func NewSearchCacheRepository(db *sqlx.DB) repository.SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Get returns the cached result for the query digest, or
// repository.ErrNotFound.
func (r *SearchCacheRepository) Get(ctx context.Context, queryHash string) (*models.GroupedSearchResult, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT results FROM search_cache WHERE query_hash = $1
	`, queryHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search cache entry: %w", err)
	}
	var result models.GroupedSearchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode search cache entry: %w", err)
	}
	return &result, nil
}

// Put stores the result under the query digest. Concurrent writers for
// the same query produce identical payloads, so last-write-wins is fine.
func (r *SearchCacheRepository) Put(ctx context.Context, queryHash, queryText string, result *models.GroupedSearchResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode search cache entry: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO search_cache (query_hash, query_text, results)
		VALUES ($1, $2, $3)
		ON CONFLICT (query_hash) DO UPDATE SET results = EXCLUDED.results
	`, queryHash, queryText, payload)
	if err != nil {
		return fmt.Errorf("put search cache entry: %w", err)
	}
	return nil
}

// VerseSearchRepository implements repository.VerseSearchRepository for
// PostgreSQL with case-insensitive substring matching.
type VerseSearchRepository struct {
	db *sqlx.DB
}

// NewVerseSearchRepository creates a new PostgreSQL verse search repository
func NewVerseSearchRepository(db *sqlx.DB) repository.VerseSearchRepository {
	return &VerseSearchRepository{db: db}
}

// SearchGroupedByBook returns per-book hit counts in canonical order,
// with up to samplesPerBook sample verses per book.
func (r *VerseSearchRepository) SearchGroupedByBook(ctx context.Context, query string, samplesPerBook int) ([]models.BookGroup, error) {
	pattern := "%" + query + "%"

	rows, err := r.db.QueryxContext(ctx, `
		SELECT b.id, b.name, b.abbreviation, b.testament, b.order_number, COUNT(*) AS verse_count
		FROM verses v
		JOIN chapters c ON v.chapter_id = c.id
		JOIN books b ON c.book_id = b.id
		WHERE v.text ILIKE $1
		GROUP BY b.id, b.name, b.abbreviation, b.testament, b.order_number
		ORDER BY b.order_number
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search verses by book: %w", err)
	}
	defer rows.Close()

	var groups []models.BookGroup
	for rows.Next() {
		var g models.BookGroup
		if err := rows.Scan(&g.Book.ID, &g.Book.Name, &g.Book.Abbreviation,
			&g.Book.Testament, &g.Book.OrderNumber, &g.VerseCount); err != nil {
			return nil, fmt.Errorf("scan book group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book groups: %w", err)
	}

	for i := range groups {
		samples, err := r.sampleVerses(ctx, groups[i].Book.ID, pattern, samplesPerBook)
		if err != nil {
			return nil, err
		}
		groups[i].SampleVerses = samples
	}

	if groups == nil {
		groups = []models.BookGroup{}
	}
	return groups, nil
}

func (r *VerseSearchRepository) sampleVerses(ctx context.Context, bookID int, pattern string, limit int) ([]models.Verse, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT v.id, v.chapter_id, v.verse_number, v.text,
		       b.name || ' ' || c.chapter_number || ':' || v.verse_number AS reference
		FROM verses v
		JOIN chapters c ON v.chapter_id = c.id
		JOIN books b ON c.book_id = b.id
		WHERE b.id = $1 AND v.text ILIKE $2
		ORDER BY v.id
		LIMIT $3
	`, bookID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("sample verses for book %d: %w", bookID, err)
	}
	defer rows.Close()

	var verses []models.Verse
	for rows.Next() {
		var v models.Verse
		if err := rows.Scan(&v.ID, &v.ChapterID, &v.VerseNumber, &v.Text, &v.Reference); err != nil {
			return nil, fmt.Errorf("scan sample verse: %w", err)
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample verses: %w", err)
	}
	if verses == nil {
		verses = []models.Verse{}
	}
	return verses, nil
}
