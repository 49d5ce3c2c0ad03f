// generate_prophecies.go
//
// This script asks Gemini for messianic prophecy candidates, one
// prophetic book at a time, and accumulates them in a JSON file the
// import pipeline consumes. The output file doubles as the resume
// checkpoint: books already present are skipped, so an interrupted run
// picks up where it left off.
//
// Usage:
//   go run scripts/generate/main.go -output prophecies.json

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/joho/godotenv"
	"github.com/scripture-analysis-api/internal/importer"
)

// sourceBooks lists the prophetic books to mine, in canonical order.
var sourceBooks = []string{
	"Genesis", "Deuteronomy", "2 Samuel", "Psalms", "Isaiah",
	"Jeremiah", "Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Micah", "Zechariah", "Malachi",
}

const prophecyPrompt = `You are a biblical scholar specializing in messianic prophecy.

List the messianic prophecies found in the book of %s. For each prophecy provide:
- the claim (one sentence stating what is prophesied)
- a category, one of: birth_circumstances, genealogy_lineage, geographic_locations, ministry_mission, character_attributes, death_crucifixion, resurrection_exaltation, second_coming, kingdom_reign, priestly_work, prophetic_office, divine_nature
- the prophecy reference (book, chapter, verse_start, verse_end)
- 1-4 New Testament fulfillment references, each with book, chapter, verse_start, verse_end, and a fulfillment_type, one of: direct, typological, thematic, progressive, inaugurated
- a brief fulfillment_explanation

Use full book names ("1 Samuel", not "1Sam"). Return ONLY a JSON array, no explanation:
[{"claim": "...", "category": "...", "prophecy_reference": {"book": "%s", "chapter": 1, "verse_start": 1, "verse_end": 1}, "fulfillment_references": [{"book": "Matthew", "chapter": 1, "verse_start": 1, "verse_end": 1, "fulfillment_type": "direct"}], "fulfillment_explanation": "..."}]`

func main() {
	outputFile := flag.String("output", "prophecies.json", "Output JSON file (also the resume checkpoint)")
	flag.Parse()

	if err := run(*outputFile); err != nil {
		log.Fatal(err)
	}
}

func run(outputFile string) error {
	godotenv.Load()

	ctx := context.Background()

	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID environment variable is required")
	}
	location := os.Getenv("GEMINI_LOCATION")
	if location == "" {
		location = "us-central1"
	}
	modelName := os.Getenv("GEMINI_MODEL")
	if modelName == "" {
		modelName = "gemini-2.0-flash-001"
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}
	defer client.Close()

	done, err := loadCheckpoint(outputFile)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if len(done) > 0 {
		log.Printf("Resuming: %d books already generated", len(done))
	}

	completed := make(map[string]bool, len(done))
	for _, b := range done {
		completed[b.Book] = true
	}

	for i, book := range sourceBooks {
		if completed[book] {
			log.Printf("[%d/%d] %s already done, skipping", i+1, len(sourceBooks), book)
			continue
		}
		log.Printf("[%d/%d] Generating prophecies for %s...", i+1, len(sourceBooks), book)

		candidates, err := generateForBook(ctx, client, modelName, book)
		if err != nil {
			log.Printf("  Warning: %s failed: %v", book, err)
			continue
		}
		log.Printf("  %s: %d candidates", book, len(candidates))

		done = append(done, importer.SourceBook{Book: book, Candidates: candidates})

		// Checkpoint after every book so an interrupted run loses at
		// most the current book.
		if err := writeCheckpoint(outputFile, done); err != nil {
			return fmt.Errorf("write checkpoint: %w", err)
		}
	}

	total := 0
	for _, b := range done {
		total += len(b.Candidates)
	}
	log.Printf("Done: %d candidates across %d books in %s", total, len(done), outputFile)
	return nil
}

func generateForBook(ctx context.Context, client *genai.Client, modelName, book string) ([]importer.Candidate, error) {
	model := client.GenerativeModel(modelName)
	prompt := fmt.Sprintf(prophecyPrompt, book, book)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	text := extractText(resp)
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var candidates []importer.Candidate
	if err := json.Unmarshal([]byte(text), &candidates); err != nil {
		return nil, fmt.Errorf("parse candidates: %w (raw: %.200s)", err, text)
	}
	return candidates, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var text string
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}

func loadCheckpoint(filename string) ([]importer.SourceBook, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var books []importer.SourceBook
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func writeCheckpoint(filename string, books []importer.SourceBook) error {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
