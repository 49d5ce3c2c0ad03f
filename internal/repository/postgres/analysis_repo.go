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

// AnalysisCacheRepository implements repository.AnalysisCacheRepository
// for PostgreSQL. Perspectives and cross-references live in jsonb
// columns; merges happen inside the database with the jsonb || operator
// so concurrent writers extending disjoint perspective sets both land.
type AnalysisCacheRepository struct {
	db *sqlx.DB
}

// NewAnalysisCacheRepository creates a new PostgreSQL analysis cache repository
func NewAnalysisCacheRepository(db *sqlx.DB) repository.AnalysisCacheRepository {
	return &AnalysisCacheRepository{db: db}
}

// Get returns the cached entry for (range, text hash), or
// repository.ErrNotFound when no entry exists.
func (r *AnalysisCacheRepository) Get(ctx context.Context, rng models.VerseRange, textHash string) (*models.AnalysisEntry, error) {
	var row struct {
		Start           int64        `db:"verse_range_start"`
		End             int64        `db:"verse_range_end"`
		TextHash        string       `db:"text_hash"`
		Perspectives    []byte       `db:"perspectives"`
		CrossReferences []byte       `db:"cross_references"`
		CreatedAt       sql.NullTime `db:"created_at"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT verse_range_start, verse_range_end, text_hash,
		       perspectives, cross_references, created_at
		FROM verse_summaries
		WHERE verse_range_start = $1 AND verse_range_end = $2 AND text_hash = $3
	`, rng.Start, rng.End, textHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis entry: %w", err)
	}

	entry := &models.AnalysisEntry{
		Range:    models.VerseRange{Start: row.Start, End: row.End},
		TextHash: row.TextHash,
	}
	if row.CreatedAt.Valid {
		entry.CreatedAt = row.CreatedAt.Time
	}
	if err := json.Unmarshal(row.Perspectives, &entry.Perspectives); err != nil {
		return nil, fmt.Errorf("decode perspectives: %w", err)
	}
	if err := json.Unmarshal(row.CrossReferences, &entry.CrossReferences); err != nil {
		return nil, fmt.Errorf("decode cross references: %w", err)
	}
	if entry.Perspectives == nil {
		entry.Perspectives = map[string]models.Analysis{}
	}
	if entry.CrossReferences == nil {
		entry.CrossReferences = []models.CrossReference{}
	}
	return entry, nil
}

// UpsertPerspectives inserts or extends the entry for (range, text hash).
// On conflict the new perspective keys are merged over the stored map and
// the cross-reference aggregate is appended; stored keys not named in
// this call are untouched.
func (r *AnalysisCacheRepository) UpsertPerspectives(ctx context.Context, rng models.VerseRange, textHash string,
	perspectives map[string]models.Analysis, crossRefs []models.CrossReference) error {

	if crossRefs == nil {
		crossRefs = []models.CrossReference{}
	}
	perspectivesJSON, err := json.Marshal(perspectives)
	if err != nil {
		return fmt.Errorf("encode perspectives: %w", err)
	}
	crossRefsJSON, err := json.Marshal(crossRefs)
	if err != nil {
		return fmt.Errorf("encode cross references: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO verse_summaries (verse_range_start, verse_range_end, text_hash, perspectives, cross_references)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (verse_range_start, verse_range_end, text_hash)
		DO UPDATE SET
			perspectives = verse_summaries.perspectives || EXCLUDED.perspectives,
			cross_references = verse_summaries.cross_references || EXCLUDED.cross_references
	`, rng.Start, rng.End, textHash, perspectivesJSON, crossRefsJSON)
	if err != nil {
		return fmt.Errorf("upsert analysis entry: %w", err)
	}
	return nil
}
