// Package analyzer is the boundary to the external generative analysis
// process. Its output is opaque and non-deterministic; this service only
// validates shape, never content.
package analyzer

import (
	"context"
	"fmt"

	"github.com/scripture-analysis-api/internal/models"
)

// Analyzer produces perspective analyses and consensus reports for a
// passage. Implementations must honor ctx cancellation: a cancelled call
// returns an error and callers perform no cache merge.
type Analyzer interface {
	// GenerateAnalyses returns one analysis per requested perspective.
	// A perspective whose generation fails is returned as a degraded
	// placeholder rather than failing the whole call.
	GenerateAnalyses(ctx context.Context, verseText, reference string, perspectives []string) (map[string]models.Analysis, error)

	// AnswerQuestion answers a free-form question about the passage from
	// each requested perspective. Same degradation semantics as
	// GenerateAnalyses.
	AnswerQuestion(ctx context.Context, verseText, reference, question string, perspectives []string) (map[string]models.Analysis, error)

	// SummarizeConsensus aggregates existing perspective analyses into a
	// scholarly consensus report. Scores are passed through uninspected.
	SummarizeConsensus(ctx context.Context, verseText, reference string, analyses map[string]models.Analysis) (*models.ConsensusReport, error)
}

// PlaceholderAnalysis is the degraded per-perspective result cached when
// generation fails. Distinguished by the Degraded flag so entries can be
// selectively regenerated later.
func PlaceholderAnalysis(perspective string) models.Analysis {
	return models.Analysis{
		ResponseText:    fmt.Sprintf("Analysis temporarily unavailable for %s perspective.", DisplayName(perspective)),
		CrossReferences: []models.CrossReference{},
		Degraded:        true,
	}
}
