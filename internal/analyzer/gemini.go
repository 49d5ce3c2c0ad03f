package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/pkg/platform/config"
)

// GeminiAnalyzer implements Analyzer against Vertex AI Gemini (ADC auth).
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

var _ Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer creates a Vertex AI Gemini analyzer.
func NewGeminiAnalyzer(ctx context.Context, cfg *config.Config) (*GeminiAnalyzer, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for the Gemini analyzer")
	}
	client, err := genai.NewClient(ctx, cfg.GCPProjectID, cfg.GeminiLocation)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: cfg.GeminiModel}, nil
}

// Close closes the underlying genai client.
func (a *GeminiAnalyzer) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

const analysisSystemPrompt = `You are a biblical scholar providing theological analysis from a %s perspective.

Analyze the provided passage and respond with a thoughtful analysis rooted in that tradition, plus relevant cross-references.

Guidelines:
- Be respectful of other theological traditions while maintaining your perspective
- Emphasize: %s
- Keep your response between 50-70 words
- Provide 2-5 cross-references from the Bible directly

Return ONLY a JSON object, no explanation:
{"response_text": "...", "cross_references": [{"book": "Genesis", "chapter": 1, "verse_start": 1, "verse_end": 1, "reference_display": "Genesis 1:1", "relevance_note": "..."}]}`

// GenerateAnalyses produces one analysis per perspective. A failed
// perspective degrades to a cached placeholder; a cancelled context
// aborts the whole call so no partial merge reaches the cache.
func (a *GeminiAnalyzer) GenerateAnalyses(ctx context.Context, verseText, reference string, perspectives []string) (map[string]models.Analysis, error) {
	out := make(map[string]models.Analysis, len(perspectives))
	for _, p := range perspectives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prompt := fmt.Sprintf("Analyze this biblical passage from a %s perspective:\n\nReference: %s\nText: %q\n\nProvide your theological analysis with relevant cross-references.",
			DisplayName(p), reference, verseText)
		analysis, err := a.generateOne(ctx, p, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("analyzer: generation failed for %s: %v", p, err)
			out[p] = PlaceholderAnalysis(p)
			continue
		}
		out[p] = analysis
	}
	return out, nil
}

// AnswerQuestion answers a user question from each perspective.
func (a *GeminiAnalyzer) AnswerQuestion(ctx context.Context, verseText, reference, question string, perspectives []string) (map[string]models.Analysis, error) {
	out := make(map[string]models.Analysis, len(perspectives))
	for _, p := range perspectives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prompt := fmt.Sprintf("Answer this question about the biblical passage from a %s perspective:\n\nReference: %s\nText: %q\n\nQuestion: %s\n\nAddress the question directly, supported by relevant cross-references.",
			DisplayName(p), reference, verseText, question)
		analysis, err := a.generateOne(ctx, p, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("analyzer: question response failed for %s: %v", p, err)
			out[p] = PlaceholderAnalysis(p)
			continue
		}
		out[p] = analysis
	}
	return out, nil
}

func (a *GeminiAnalyzer) generateOne(ctx context.Context, perspective, prompt string) (models.Analysis, error) {
	model := a.client.GenerativeModel(a.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(analysisSystemPrompt, DisplayName(perspective), perspectiveEmphases[perspective]))},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.Analysis{}, err
	}

	var analysis models.Analysis
	if err := decodeJSON(extractText(resp), &analysis); err != nil {
		return models.Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	if analysis.ResponseText == "" {
		return models.Analysis{}, fmt.Errorf("empty response_text")
	}
	if analysis.CrossReferences == nil {
		analysis.CrossReferences = []models.CrossReference{}
	}
	return analysis, nil
}

const consensusSystemPrompt = `You are a theological scholar conducting a comprehensive consensus analysis across Christian denominational perspectives.

Analyze the provided denominational responses and report agreement and disagreement patterns across soteriology, Christology, pneumatology, ecclesiology, eschatology, and sacramentology. Score consensus 0.0-1.0 where 1.0 is complete agreement. Format perspective-specific data as "perspective:description" strings in lists.

Return ONLY a JSON object matching this shape:
{"overall_consensus_score": 0.0, "consensus_classification": "unanimous|strong|moderate|divided|contentious", "summary": "...", "theological_dimensions": [{"dimension_name": "...", "consensus_score": 0.0, "agreement_summary": "...", "disagreement_summary": "...", "denominational_positions": []}], "interpretive_approach_alignment": 0.0, "literal_vs_figurative": [], "historical_context_emphasis": [], "application_focus": [], "cross_reference_overlap": 0.0, "early_church_alignment": [], "reformation_era_impact": [], "modern_theological_development": [], "historical_trajectory": "...", "creedal_connections": [{"creed_name": "...", "relevant_doctrine": "...", "denominational_adherence": [], "interpretive_influence": "..."}]}`

// SummarizeConsensus aggregates existing analyses into a consensus
// report. The report is passed through as generated; scores are not
// recomputed or validated here.
func (a *GeminiAnalyzer) SummarizeConsensus(ctx context.Context, verseText, reference string, analyses map[string]models.Analysis) (*models.ConsensusReport, error) {
	names := make([]string, 0, len(analyses))
	for p := range analyses {
		names = append(names, p)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, p := range names {
		an := analyses[p]
		fmt.Fprintf(&sb, "**%s perspective:**\n%s\n", DisplayName(p), an.ResponseText)
		refs := make([]string, 0, len(an.CrossReferences))
		for _, r := range an.CrossReferences {
			refs = append(refs, fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.VerseStart))
		}
		fmt.Fprintf(&sb, "Cross-references: %s\n\n", strings.Join(refs, ", "))
	}

	model := a.client.GenerativeModel(a.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(consensusSystemPrompt)},
	}

	prompt := fmt.Sprintf("Biblical Passage: %s\nText: %s\n\nDenominational Analyses:\n%s\nGenerate a comprehensive scholarly consensus analysis of these perspectives.",
		reference, verseText, sb.String())

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate consensus: %w", err)
	}

	var report models.ConsensusReport
	if err := decodeJSON(extractText(resp), &report); err != nil {
		return nil, fmt.Errorf("parse consensus: %w", err)
	}
	return &report, nil
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

// decodeJSON strips markdown code fences before unmarshalling.
func decodeJSON(text string, v interface{}) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("unmarshal response: %w (raw: %.120s)", err, text)
	}
	return nil
}
