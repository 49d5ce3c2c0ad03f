// Package importer loads generated prophecy candidates into the
// fulfillment graph. It is the single integrity guard for that data:
// enums are checked against the closed sets, every reference is resolved
// against the corpus index before commit, and duplicates across source
// books are collapsed. Runs are resumable; re-running over the same
// input is a no-op.
package importer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/repository"
)

// Candidate is one generated prophecy claim before validation. Shapes
// match the generation script's JSON output.
type Candidate struct {
	Claim                  string               `json:"claim"`
	Category               string               `json:"category"`
	ProphecyReference      CandidateReference   `json:"prophecy_reference"`
	FulfillmentReferences  []CandidateReference `json:"fulfillment_references"`
	FulfillmentExplanation string               `json:"fulfillment_explanation"`
}

// CandidateReference is an unresolved human-readable verse range.
type CandidateReference struct {
	Book            string `json:"book"`
	Chapter         int    `json:"chapter"`
	VerseStart      int    `json:"verse_start"`
	VerseEnd        int    `json:"verse_end"`
	FulfillmentType string `json:"fulfillment_type,omitempty"`
}

// SourceBook is the per-book unit of work: the prophetic book the
// candidates were generated from, plus its candidates. Books commit
// independently so a failed run resumes at book granularity.
type SourceBook struct {
	Book       string      `json:"book"`
	Candidates []Candidate `json:"prophecies"`
}

// ValidationReason identifies why a candidate was dropped.
type ValidationReason string

const (
	ReasonBadEnum             ValidationReason = "bad-enum"
	ReasonUnresolvedReference ValidationReason = "unresolved-reference"
)

// ValidationError reports a dropped candidate. Dropping never aborts the
// run; the pipeline records the error and moves on.
type ValidationError struct {
	Reason ValidationReason
	Claim  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("candidate %q dropped: %s (%s)", truncateClaim(e.Claim), e.Reason, e.Detail)
}

// Stats summarizes one pipeline run.
type Stats struct {
	BooksProcessed int
	Imported       int
	Duplicates     int
	Dropped        []ValidationError
}

// Pipeline imports candidates into the fulfillment graph.
type Pipeline struct {
	idx  *corpus.Index
	repo repository.ProphecyRepository
	seen map[string]bool
}

// NewPipeline creates an import pipeline over the corpus index.
func NewPipeline(idx *corpus.Index, repo repository.ProphecyRepository) *Pipeline {
	return &Pipeline{idx: idx, repo: repo}
}

// Run imports all source books in order, committing each candidate as it
// validates. The stored graph is loaded first as the dedup universe, so
// a re-run after a partial failure skips everything already committed.
func (p *Pipeline) Run(ctx context.Context, books []SourceBook) (*Stats, error) {
	if err := p.loadDedupUniverse(ctx); err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		imported, err := p.importBook(ctx, book, stats)
		if err != nil {
			return stats, fmt.Errorf("import book %s: %w", book.Book, err)
		}
		stats.BooksProcessed++
		log.Printf("importer: %s done (%d imported, %d candidates)", book.Book, imported, len(book.Candidates))
	}
	return stats, nil
}

func (p *Pipeline) importBook(ctx context.Context, book SourceBook, stats *Stats) (int, error) {
	imported := 0
	for _, c := range book.Candidates {
		rec, verr := p.validate(c, book.Book)
		if verr != nil {
			log.Printf("importer: %v", verr)
			stats.Dropped = append(stats.Dropped, *verr)
			continue
		}

		key := p.dedupKey(c)
		if p.seen[key] {
			stats.Duplicates++
			continue
		}

		if err := p.repo.Insert(ctx, rec); err != nil {
			return imported, fmt.Errorf("insert prophecy: %w", err)
		}
		p.seen[key] = true
		stats.Imported++
		imported++
	}
	return imported, nil
}

// validate checks enums and resolves every reference. Any failure drops
// the whole candidate, fulfillments included.
func (p *Pipeline) validate(c Candidate, sourceBook string) (*models.ProphecyRecord, *ValidationError) {
	category := models.ProphecyCategory(c.Category)
	if !category.Valid() {
		return nil, &ValidationError{Reason: ReasonBadEnum, Claim: c.Claim, Detail: "category " + c.Category}
	}
	for _, f := range c.FulfillmentReferences {
		if !models.FulfillmentType(f.FulfillmentType).Valid() {
			return nil, &ValidationError{Reason: ReasonBadEnum, Claim: c.Claim, Detail: "fulfillment_type " + f.FulfillmentType}
		}
	}

	start, end, verr := p.resolveRange(c.ProphecyReference, c.Claim)
	if verr != nil {
		return nil, verr
	}

	rec := &models.ProphecyRecord{
		Claim:                  c.Claim,
		Category:               category,
		ProphecyVerseStart:     start,
		ProphecyVerseEnd:       end,
		FulfillmentExplanation: c.FulfillmentExplanation,
		GeneratedFromBook:      sourceBook,
		FulfillmentReferences:  make([]models.FulfillmentReference, 0, len(c.FulfillmentReferences)),
	}

	for _, f := range c.FulfillmentReferences {
		fstart, fend, verr := p.resolveRange(f, c.Claim)
		if verr != nil {
			return nil, verr
		}
		rec.FulfillmentReferences = append(rec.FulfillmentReferences, models.FulfillmentReference{
			BookName:        f.Book,
			Chapter:         f.Chapter,
			VerseStart:      f.VerseStart,
			VerseEnd:        f.VerseEnd,
			VerseStartID:    fstart,
			VerseEndID:      fend,
			FulfillmentType: models.FulfillmentType(f.FulfillmentType),
		})
	}
	return rec, nil
}

// resolveRange resolves a candidate reference to verse ids.
func (p *Pipeline) resolveRange(ref CandidateReference, claim string) (int64, int64, *ValidationError) {
	book, ok := p.idx.ResolveBookName(ref.Book)
	if !ok {
		return 0, 0, &ValidationError{Reason: ReasonUnresolvedReference, Claim: claim, Detail: "book " + ref.Book}
	}
	verseEnd := ref.VerseEnd
	if verseEnd == 0 {
		verseEnd = ref.VerseStart
	}
	start, startOK := p.idx.VerseID(book.ID, ref.Chapter, ref.VerseStart)
	end, endOK := p.idx.VerseID(book.ID, ref.Chapter, verseEnd)
	if !startOK || !endOK || start > end {
		return 0, 0, &ValidationError{
			Reason: ReasonUnresolvedReference,
			Claim:  claim,
			Detail: fmt.Sprintf("%s %d:%d-%d", ref.Book, ref.Chapter, ref.VerseStart, verseEnd),
		}
	}
	return start, end, nil
}

// loadDedupUniverse seeds the seen set from already-committed records.
func (p *Pipeline) loadDedupUniverse(ctx context.Context) error {
	existing, err := p.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("load existing prophecies: %w", err)
	}
	p.seen = make(map[string]bool, len(existing))
	for _, rec := range existing {
		start, ok := p.idx.Verse(rec.ProphecyVerseStart)
		if !ok {
			continue
		}
		end, ok := p.idx.Verse(rec.ProphecyVerseEnd)
		if !ok {
			continue
		}
		p.seen[dedupKeyParts(start.BookName, start.Chapter, start.VerseNumber, end.VerseNumber, rec.Claim)] = true
	}
	return nil
}

// dedupKey identifies a candidate by its anchored range plus a
// case-folded claim prefix. Two claims on the same range count as
// distinct only when their prefixes differ.
func (p *Pipeline) dedupKey(c Candidate) string {
	verseEnd := c.ProphecyReference.VerseEnd
	if verseEnd == 0 {
		verseEnd = c.ProphecyReference.VerseStart
	}
	book := c.ProphecyReference.Book
	if b, ok := p.idx.ResolveBookName(book); ok {
		book = b.Name
	}
	return dedupKeyParts(book, c.ProphecyReference.Chapter, c.ProphecyReference.VerseStart, verseEnd, c.Claim)
}

func dedupKeyParts(book string, chapter, verseStart, verseEnd int, claim string) string {
	return fmt.Sprintf("%s_%d_%d_%d_%s", book, chapter, verseStart, verseEnd, truncateClaim(claim))
}

// truncateClaim case-folds and keeps the first 50 characters.
func truncateClaim(claim string) string {
	claim = strings.ToLower(strings.TrimSpace(claim))
	if len(claim) > 50 {
		claim = claim[:50]
	}
	return claim
}
