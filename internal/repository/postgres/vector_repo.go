package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/repository"
)

// VectorSearchRepository implements repository.VectorSearchRepository for PostgreSQL with pgvector
type VectorSearchRepository struct {
	db *sqlx.DB
}

// NewVectorSearchRepository creates a new PostgreSQL vector search repository
func NewVectorSearchRepository(db *sqlx.DB) repository.VectorSearchRepository {
	return &VectorSearchRepository{db: db}
}

// SearchVersesByEmbedding performs vector similarity search on verses using pgvector
func (r *VectorSearchRepository) SearchVersesByEmbedding(ctx context.Context, embedding []float64, topK int) ([]models.ScoredVerse, error) {
	vec := pgvector.NewVector(float32Slice(embedding))

	rows, err := r.db.QueryxContext(ctx, `
		SELECT v.id AS verse_id, b.name AS book, c.chapter_number, v.verse_number, v.text,
		       1 - (v.embedding <=> $1::vector) AS score
		FROM verses v
		JOIN chapters c ON v.chapter_id = c.id
		JOIN books b ON c.book_id = b.id
		WHERE v.embedding IS NOT NULL
		ORDER BY v.embedding <=> $1::vector
		LIMIT $2
	`, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search verses: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredVerse
	for rows.Next() {
		var v models.ScoredVerse
		if err := rows.Scan(&v.VerseID, &v.Book, &v.Chapter, &v.Verse, &v.Text, &v.Score); err != nil {
			return nil, fmt.Errorf("scan verse result: %w", err)
		}
		results = append(results, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verse results: %w", err)
	}

	if results == nil {
		results = []models.ScoredVerse{}
	}
	return results, nil
}

// float32Slice converts []float64 to []float32 for pgvector
func float32Slice(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
