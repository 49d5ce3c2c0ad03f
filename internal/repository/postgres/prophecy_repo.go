package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/repository"
)

// ProphecyRepository implements repository.ProphecyRepository for
// PostgreSQL. Fulfillment references live in an indexed join table so
// "what fulfills in this chapter" is an index lookup, not a scan of
// every prophecy's reference list.
type ProphecyRepository struct {
	db *sqlx.DB
}

// NewProphecyRepository creates a new PostgreSQL prophecy repository
func NewProphecyRepository(db *sqlx.DB) repository.ProphecyRepository {
	return &ProphecyRepository{db: db}
}

const prophecyColumns = `id, claim, category, prophecy_verse_start, prophecy_verse_end,
	fulfillment_explanation, generated_from_book, created_at`

// ProphecyRangesTouching returns prophecies whose anchored range starts
// or ends at one of the given verse ids, ordered by range start.
func (r *ProphecyRepository) ProphecyRangesTouching(ctx context.Context, verseIDs []int64) ([]models.ProphecyRecord, error) {
	if len(verseIDs) == 0 {
		return []models.ProphecyRecord{}, nil
	}
	var records []models.ProphecyRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+prophecyColumns+`
		FROM prophecies
		WHERE prophecy_verse_start = ANY($1) OR prophecy_verse_end = ANY($1)
		ORDER BY prophecy_verse_start, id
	`, pq.Array(verseIDs))
	if err != nil {
		return nil, fmt.Errorf("query prophecies by range: %w", err)
	}
	if err := r.attachFulfillments(ctx, records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.ProphecyRecord{}
	}
	return records, nil
}

// FulfillmentRangesTouching returns (prophecy, fulfillment) pairs whose
// fulfillment range starts at one of the given verse ids.
func (r *ProphecyRepository) FulfillmentRangesTouching(ctx context.Context, verseIDs []int64) ([]models.FulfillmentMatch, error) {
	if len(verseIDs) == 0 {
		return []models.FulfillmentMatch{}, nil
	}
	rows, err := r.db.QueryxContext(ctx, `
		SELECT p.id, p.claim, p.category, p.prophecy_verse_start, p.prophecy_verse_end,
		       p.fulfillment_explanation, p.generated_from_book, p.created_at,
		       f.book_name, f.chapter, f.verse_start, f.verse_end,
		       f.verse_start_id, f.verse_end_id, f.fulfillment_type
		FROM prophecy_fulfillments f
		JOIN prophecies p ON p.id = f.prophecy_id
		WHERE f.verse_start_id = ANY($1)
		ORDER BY f.verse_start_id, p.id
	`, pq.Array(verseIDs))
	if err != nil {
		return nil, fmt.Errorf("query fulfillments by range: %w", err)
	}
	defer rows.Close()

	var matches []models.FulfillmentMatch
	for rows.Next() {
		var m models.FulfillmentMatch
		if err := rows.Scan(
			&m.Prophecy.ID, &m.Prophecy.Claim, &m.Prophecy.Category,
			&m.Prophecy.ProphecyVerseStart, &m.Prophecy.ProphecyVerseEnd,
			&m.Prophecy.FulfillmentExplanation, &m.Prophecy.GeneratedFromBook, &m.Prophecy.CreatedAt,
			&m.Fulfillment.BookName, &m.Fulfillment.Chapter,
			&m.Fulfillment.VerseStart, &m.Fulfillment.VerseEnd,
			&m.Fulfillment.VerseStartID, &m.Fulfillment.VerseEndID,
			&m.Fulfillment.FulfillmentType,
		); err != nil {
			return nil, fmt.Errorf("scan fulfillment match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fulfillment matches: %w", err)
	}
	if matches == nil {
		matches = []models.FulfillmentMatch{}
	}
	return matches, nil
}

// Get returns one prophecy with its fulfillment references, or
// repository.ErrNotFound.
func (r *ProphecyRepository) Get(ctx context.Context, id int64) (*models.ProphecyRecord, error) {
	var rec models.ProphecyRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT `+prophecyColumns+`
		FROM prophecies
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prophecy %d: %w", id, err)
	}
	recs := []models.ProphecyRecord{rec}
	if err := r.attachFulfillments(ctx, recs); err != nil {
		return nil, err
	}
	return &recs[0], nil
}

// Insert commits the record and its fulfillment rows in one transaction.
func (r *ProphecyRepository) Insert(ctx context.Context, rec *models.ProphecyRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin prophecy insert: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO prophecies (claim, category, prophecy_verse_start, prophecy_verse_end,
			fulfillment_explanation, generated_from_book)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, rec.Claim, rec.Category, rec.ProphecyVerseStart, rec.ProphecyVerseEnd,
		rec.FulfillmentExplanation, rec.GeneratedFromBook,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prophecy: %w", err)
	}

	for _, f := range rec.FulfillmentReferences {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prophecy_fulfillments (prophecy_id, book_name, chapter, verse_start, verse_end,
				verse_start_id, verse_end_id, fulfillment_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, rec.ID, f.BookName, f.Chapter, f.VerseStart, f.VerseEnd,
			f.VerseStartID, f.VerseEndID, f.FulfillmentType)
		if err != nil {
			return fmt.Errorf("insert fulfillment for prophecy %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prophecy insert: %w", err)
	}
	return nil
}

// DeleteAll clears prophecies and their fulfillment rows (cascade).
func (r *ProphecyRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prophecies`); err != nil {
		return fmt.Errorf("delete prophecies: %w", err)
	}
	return nil
}

// All returns every stored prophecy with fulfillment references.
func (r *ProphecyRepository) All(ctx context.Context) ([]models.ProphecyRecord, error) {
	var records []models.ProphecyRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+prophecyColumns+`
		FROM prophecies
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query all prophecies: %w", err)
	}
	if err := r.attachFulfillments(ctx, records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.ProphecyRecord{}
	}
	return records, nil
}

// CategoryStats counts prophecies per category.
func (r *ProphecyRepository) CategoryStats(ctx context.Context) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := r.db.SelectContext(ctx, &counts, `
		SELECT category, COUNT(*) AS count
		FROM prophecies
		GROUP BY category
		ORDER BY count DESC, category
	`)
	if err != nil {
		return nil, fmt.Errorf("query category stats: %w", err)
	}
	if counts == nil {
		counts = []models.CategoryCount{}
	}
	return counts, nil
}

// Count returns the number of stored prophecies.
func (r *ProphecyRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prophecies`); err != nil {
		return 0, fmt.Errorf("count prophecies: %w", err)
	}
	return n, nil
}

// attachFulfillments loads fulfillment rows for the given records in one
// query and distributes them by prophecy id.
func (r *ProphecyRepository) attachFulfillments(ctx context.Context, records []models.ProphecyRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]int64, len(records))
	byID := make(map[int64]*models.ProphecyRecord, len(records))
	for i := range records {
		ids[i] = records[i].ID
		byID[records[i].ID] = &records[i]
		records[i].FulfillmentReferences = []models.FulfillmentReference{}
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT prophecy_id, book_name, chapter, verse_start, verse_end,
		       verse_start_id, verse_end_id, fulfillment_type
		FROM prophecy_fulfillments
		WHERE prophecy_id = ANY($1)
		ORDER BY prophecy_id, verse_start_id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query fulfillments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var prophecyID int64
		var f models.FulfillmentReference
		if err := rows.Scan(&prophecyID, &f.BookName, &f.Chapter, &f.VerseStart, &f.VerseEnd,
			&f.VerseStartID, &f.VerseEndID, &f.FulfillmentType); err != nil {
			return fmt.Errorf("scan fulfillment: %w", err)
		}
		if rec, ok := byID[prophecyID]; ok {
			rec.FulfillmentReferences = append(rec.FulfillmentReferences, f)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate fulfillments: %w", err)
	}
	return nil
}
