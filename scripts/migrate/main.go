// migrate.go
//
// This script creates the database schema: the corpus tables, the
// analysis and search caches, and the prophecy fulfillment graph.
// Statements are idempotent (IF NOT EXISTS), so re-running is safe.
//
// Usage:
//   go run scripts/migrate/main.go

package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var statements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS books (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		abbreviation TEXT NOT NULL,
		testament TEXT NOT NULL,
		order_number INT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS chapters (
		id SERIAL PRIMARY KEY,
		book_id INT NOT NULL REFERENCES books(id),
		chapter_number INT NOT NULL,
		UNIQUE (book_id, chapter_number)
	)`,

	// Verse ids are assigned densely in canonical order by the seed
	// script; range reads depend on BETWEEN over id.
	`CREATE TABLE IF NOT EXISTS verses (
		id BIGINT PRIMARY KEY,
		chapter_id INT NOT NULL REFERENCES chapters(id),
		verse_number INT NOT NULL,
		text TEXT NOT NULL,
		embedding vector(3072),
		UNIQUE (chapter_id, verse_number)
	)`,

	// Analysis cache. The perspectives jsonb map is extended key by key
	// with the || operator; the row is never rewritten wholesale.
	`CREATE TABLE IF NOT EXISTS verse_summaries (
		id SERIAL PRIMARY KEY,
		verse_range_start BIGINT NOT NULL,
		verse_range_end BIGINT NOT NULL,
		text_hash TEXT NOT NULL,
		perspectives JSONB NOT NULL DEFAULT '{}',
		cross_references JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (verse_range_start, verse_range_end, text_hash)
	)`,

	`CREATE TABLE IF NOT EXISTS search_cache (
		query_hash TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		results JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS prophecies (
		id BIGSERIAL PRIMARY KEY,
		claim TEXT NOT NULL,
		category TEXT NOT NULL,
		prophecy_verse_start BIGINT NOT NULL,
		prophecy_verse_end BIGINT NOT NULL,
		fulfillment_explanation TEXT NOT NULL DEFAULT '',
		generated_from_book TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS prophecy_fulfillments (
		id BIGSERIAL PRIMARY KEY,
		prophecy_id BIGINT NOT NULL REFERENCES prophecies(id) ON DELETE CASCADE,
		book_name TEXT NOT NULL,
		chapter INT NOT NULL,
		verse_start INT NOT NULL,
		verse_end INT NOT NULL,
		verse_start_id BIGINT NOT NULL,
		verse_end_id BIGINT NOT NULL,
		fulfillment_type TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_prophecies_range_start ON prophecies (prophecy_verse_start)`,
	`CREATE INDEX IF NOT EXISTS idx_prophecies_range_end ON prophecies (prophecy_verse_end)`,
	`CREATE INDEX IF NOT EXISTS idx_prophecies_category ON prophecies (category)`,
	`CREATE INDEX IF NOT EXISTS idx_fulfillments_prophecy ON prophecy_fulfillments (prophecy_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fulfillments_verse_start ON prophecy_fulfillments (verse_start_id)`,
}

func main() {
	godotenv.Load()

	postgresURI := os.Getenv("POSTGRES_URI")
	if postgresURI == "" {
		log.Fatal("POSTGRES_URI environment variable is required")
	}

	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, "postgres", postgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("Statement %d failed: %v", i+1, err)
		}
	}

	log.Printf("Migration complete (%d statements)", len(statements))
}
