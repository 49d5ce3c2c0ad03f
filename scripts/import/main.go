// import_prophecies.go
//
// This script runs the prophecy import pipeline over a generated
// candidates file. The pipeline validates enums, resolves every
// reference against the corpus, and skips duplicates, so re-running
// over the same file is a no-op.
//
// Usage:
//   go run scripts/import/main.go -input prophecies.json
//   go run scripts/import/main.go -input prophecies.json -replace

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
	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/importer"
	"github.com/scripture-analysis-api/internal/repository/postgres"
)

func main() {
	inputFile := flag.String("input", "prophecies.json", "Candidates JSON file")
	replace := flag.Bool("replace", false, "Delete all existing prophecies before importing")
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
	var books []importer.SourceBook
	if err := json.Unmarshal(data, &books); err != nil {
		log.Fatalf("Failed to parse %s: %v", *inputFile, err)
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", postgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	idx, err := corpus.Load(ctx, db)
	if err != nil {
		log.Fatalf("Failed to load corpus index: %v", err)
	}
	log.Printf("Corpus index loaded: %d verses", idx.VerseCount())

	repo := postgres.NewProphecyRepository(db)

	if *replace {
		log.Println("Replacing existing prophecies...")
		if err := repo.DeleteAll(ctx); err != nil {
			log.Fatalf("Failed to delete existing prophecies: %v", err)
		}
	}

	pipeline := importer.NewPipeline(idx, repo)
	stats, err := pipeline.Run(ctx, books)
	if err != nil {
		log.Fatalf("Import failed after %d books: %v", stats.BooksProcessed, err)
	}

	log.Printf("Import complete: %d books, %d imported, %d duplicates, %d dropped",
		stats.BooksProcessed, stats.Imported, stats.Duplicates, len(stats.Dropped))
	for _, d := range stats.Dropped {
		log.Printf("  dropped: %s", d.Error())
	}
}
