package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scripture-analysis-api/internal/analyzer"
	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/reference"
	"github.com/scripture-analysis-api/internal/repository"
	"github.com/scripture-analysis-api/internal/texthash"
)

// AnalysisService orchestrates the summary flow: resolve the reference,
// hash the passage text, satisfy what it can from the cache, generate
// only the missing perspectives, and merge the new ones back in.
type AnalysisService struct {
	idx       *corpus.Index
	resolver  *reference.Resolver
	cacheRepo repository.AnalysisCacheRepository
	analyzer  analyzer.Analyzer
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(idx *corpus.Index, resolver *reference.Resolver,
	cacheRepo repository.AnalysisCacheRepository, an analyzer.Analyzer) *AnalysisService {
	return &AnalysisService{
		idx:       idx,
		resolver:  resolver,
		cacheRepo: cacheRepo,
		analyzer:  an,
	}
}

// GetSummary returns per-perspective analyses for a reference, serving
// cached perspectives and generating only the missing ones. Cached is
// true only when every requested perspective came from the cache.
func (s *AnalysisService) GetSummary(ctx context.Context, ref string, perspectives []string) (*models.SummaryResult, error) {
	rng, text, hash, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	if len(perspectives) == 0 {
		perspectives = analyzer.DefaultPerspectives
	}
	if err := analyzer.ValidatePerspectives(perspectives); err != nil {
		return nil, err
	}

	cached := map[string]models.Analysis{}
	var cachedRefs []models.CrossReference
	entry, err := s.cacheRepo.Get(ctx, rng, hash)
	switch {
	case err == nil:
		cached = entry.Perspectives
		cachedRefs = entry.CrossReferences
	case errors.Is(err, repository.ErrNotFound):
		// first request for this (range, text) pair
	default:
		return nil, fmt.Errorf("lookup analysis cache: %w", err)
	}

	var missing []string
	for _, p := range perspectives {
		if _, ok := cached[p]; !ok {
			missing = append(missing, p)
		}
	}

	result := &models.SummaryResult{
		Range:        rng,
		Reference:    s.resolver.Format(rng),
		VerseText:    text,
		Perspectives: make(map[string]models.Analysis, len(perspectives)),
		Cached:       len(missing) == 0,
	}

	if len(missing) > 0 {
		generated, err := s.analyzer.GenerateAnalyses(ctx, text, result.Reference, missing)
		if err != nil {
			// Cancelled or failed outright: nothing reaches the cache.
			return nil, fmt.Errorf("generate analyses: %w", err)
		}
		newRefs := collectCrossReferences(generated, missing)
		if err := s.cacheRepo.UpsertPerspectives(ctx, rng, hash, generated, newRefs); err != nil {
			return nil, fmt.Errorf("store analyses: %w", err)
		}
		for p, a := range generated {
			cached[p] = a
		}
		cachedRefs = append(cachedRefs, newRefs...)
	}

	for _, p := range perspectives {
		if a, ok := cached[p]; ok {
			result.Perspectives[p] = a
		}
	}
	result.CrossReferences = cachedRefs
	if result.CrossReferences == nil {
		result.CrossReferences = []models.CrossReference{}
	}
	return result, nil
}

// AskQuestion answers a free-form question about the passage from each
// perspective. Question responses are never cached; only the standing
// per-passage analyses are.
func (s *AnalysisService) AskQuestion(ctx context.Context, ref, question string, perspectives []string) (*models.SummaryResult, error) {
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	rng, text, _, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	if len(perspectives) == 0 {
		perspectives = analyzer.DefaultPerspectives
	}
	if err := analyzer.ValidatePerspectives(perspectives); err != nil {
		return nil, err
	}

	display := s.resolver.Format(rng)
	answers, err := s.analyzer.AnswerQuestion(ctx, text, display, question, perspectives)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	return &models.SummaryResult{
		Range:           rng,
		Reference:       display,
		VerseText:       text,
		Perspectives:    answers,
		CrossReferences: collectCrossReferences(answers, perspectives),
	}, nil
}

// GetConsensus generates a consensus report over the passage's analyses,
// running the summary flow first so every requested perspective exists.
func (s *AnalysisService) GetConsensus(ctx context.Context, ref string, perspectives []string) (*models.ConsensusReport, error) {
	summary, err := s.GetSummary(ctx, ref, perspectives)
	if err != nil {
		return nil, err
	}
	report, err := s.analyzer.SummarizeConsensus(ctx, summary.VerseText, summary.Reference, summary.Perspectives)
	if err != nil {
		return nil, fmt.Errorf("summarize consensus: %w", err)
	}
	return report, nil
}

// resolve parses the reference and derives the passage text and digest.
func (s *AnalysisService) resolve(ref string) (models.VerseRange, string, string, error) {
	rng, err := s.resolver.Parse(ref)
	if err != nil {
		return models.VerseRange{}, "", "", err
	}
	text, err := s.idx.RangeText(rng.Start, rng.End)
	if err != nil {
		return models.VerseRange{}, "", "", err
	}
	return rng, text, texthash.Sum(text), nil
}

// collectCrossReferences concatenates per-perspective cross-references
// in request order. Duplicates across perspectives are kept; the
// aggregate records what each tradition cited, not a deduplicated set.
func collectCrossReferences(analyses map[string]models.Analysis, order []string) []models.CrossReference {
	var refs []models.CrossReference
	for _, p := range order {
		if a, ok := analyses[p]; ok {
			refs = append(refs, a.CrossReferences...)
		}
	}
	if refs == nil {
		refs = []models.CrossReference{}
	}
	return refs
}
