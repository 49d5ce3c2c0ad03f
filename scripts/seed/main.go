// seed.go
//
// This script loads a Bible translation JSON into PostgreSQL, assigning
// dense verse ids in canonical (book order, chapter, verse) order. The
// corpus is immutable once seeded; reseeding truncates and reloads, which
// silently retires existing cache entries via their text hashes.
//
// Input format (one object per book, in canonical order):
//   [{"name": "Genesis", "abbreviation": "Gen", "testament": "OT",
//     "chapters": [["In the beginning...", "And the earth..."], ...]}, ...]
//
// Usage:
//   go run scripts/seed/main.go -input bible.json

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// BookInput is one book of the translation file.
type BookInput struct {
	Name         string     `json:"name"`
	Abbreviation string     `json:"abbreviation"`
	Testament    string     `json:"testament"`
	Chapters     [][]string `json:"chapters"`
}

func main() {
	inputFile := flag.String("input", "bible.json", "Translation JSON file")
	flag.Parse()

	godotenv.Load()

	postgresURI := os.Getenv("POSTGRES_URI")
	if postgresURI == "" {
		log.Fatal("POSTGRES_URI environment variable is required")
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *inputFile, err)
	}
	var books []BookInput
	if err := json.Unmarshal(data, &books); err != nil {
		log.Fatalf("Failed to parse %s: %v", *inputFile, err)
	}
	if len(books) == 0 {
		log.Fatal("Input file contains no books")
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", postgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Reload from scratch so verse ids stay dense.
	for _, stmt := range []string{
		`TRUNCATE prophecy_fulfillments, prophecies, verse_summaries, search_cache RESTART IDENTITY`,
		`TRUNCATE verses, chapters, books RESTART IDENTITY CASCADE`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("Failed to truncate: %v", err)
		}
	}

	verseID := int64(0)
	totalVerses := 0

	for order, book := range books {
		var bookID int
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO books (name, abbreviation, testament, order_number)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, book.Name, book.Abbreviation, book.Testament, order+1).Scan(&bookID)
		if err != nil {
			log.Fatalf("Failed to insert book %s: %v", book.Name, err)
		}

		bookVerses := 0
		for chapterIdx, chapterVerses := range book.Chapters {
			var chapterID int
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO chapters (book_id, chapter_number)
				VALUES ($1, $2)
				RETURNING id
			`, bookID, chapterIdx+1).Scan(&chapterID)
			if err != nil {
				log.Fatalf("Failed to insert %s chapter %d: %v", book.Name, chapterIdx+1, err)
			}

			for verseIdx, text := range chapterVerses {
				verseID++
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO verses (id, chapter_id, verse_number, text)
					VALUES ($1, $2, $3, $4)
				`, verseID, chapterID, verseIdx+1, text); err != nil {
					log.Fatalf("Failed to insert %s %d:%d: %v", book.Name, chapterIdx+1, verseIdx+1, err)
				}
				bookVerses++
			}
		}
		totalVerses += bookVerses
		log.Printf("  %s: %d chapters, %d verses", book.Name, len(book.Chapters), bookVerses)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Printf("Seeded %d books, %d verses (ids 1-%d)", len(books), totalVerses, verseID)
}
