package models

import "time"

// CrossReference is a verse citation attached to a perspective analysis.
type CrossReference struct {
	Book             string `json:"book"`
	Chapter          int    `json:"chapter"`
	VerseStart       int    `json:"verse_start"`
	VerseEnd         int    `json:"verse_end,omitempty"`
	ReferenceDisplay string `json:"reference_display,omitempty"`
	RelevanceNote    string `json:"relevance_note,omitempty"`
}

// Analysis is one perspective's response for a verse range.
// Degraded marks a placeholder produced when generation failed for
// that perspective; it is cached like any other result.
type Analysis struct {
	ResponseText    string           `json:"response_text"`
	CrossReferences []CrossReference `json:"cross_references"`
	Degraded        bool             `json:"degraded,omitempty"`
}

// AnalysisEntry is the stored cache row for (range, text hash).
// Perspectives is append-only at the key level: keys are added or
// replaced individually, the entry itself is never rewritten wholesale.
type AnalysisEntry struct {
	Range           VerseRange            `json:"range"`
	TextHash        string                `json:"text_hash"`
	Perspectives    map[string]Analysis   `json:"perspectives"`
	CrossReferences []CrossReference      `json:"cross_references"`
	CreatedAt       time.Time             `json:"created_at"`
}

// SummaryResult is the assembled response for a summary request.
type SummaryResult struct {
	Range           VerseRange          `json:"range"`
	Reference       string              `json:"reference"`
	VerseText       string              `json:"verse_text"`
	Perspectives    map[string]Analysis `json:"perspectives"`
	CrossReferences []CrossReference    `json:"cross_references"`
	Cached          bool                `json:"cached"`
}

// DimensionConsensus scores agreement across perspectives on one
// theological dimension.
type DimensionConsensus struct {
	DimensionName           string   `json:"dimension_name"`
	ConsensusScore          float64  `json:"consensus_score"`
	AgreementSummary        string   `json:"agreement_summary"`
	DisagreementSummary     string   `json:"disagreement_summary"`
	DenominationalPositions []string `json:"denominational_positions"`
}

// CreedConnection links the passage to a creed or council.
type CreedConnection struct {
	CreedName               string   `json:"creed_name"`
	RelevantDoctrine        string   `json:"relevant_doctrine"`
	DenominationalAdherence []string `json:"denominational_adherence"`
	InterpretiveInfluence   string   `json:"interpretive_influence"`
}

// ConsensusReport is the structured aggregate produced by the external
// consensus analyzer. Opaque to this service: scores are passed through,
// never recomputed.
type ConsensusReport struct {
	OverallConsensusScore        float64              `json:"overall_consensus_score"`
	ConsensusClassification      string               `json:"consensus_classification"`
	Summary                      string               `json:"summary"`
	TheologicalDimensions        []DimensionConsensus `json:"theological_dimensions"`
	InterpretiveAlignment        float64              `json:"interpretive_approach_alignment"`
	LiteralVsFigurative          []string             `json:"literal_vs_figurative"`
	HistoricalContextEmphasis    []string             `json:"historical_context_emphasis"`
	ApplicationFocus             []string             `json:"application_focus"`
	CrossReferenceOverlap        float64              `json:"cross_reference_overlap"`
	EarlyChurchAlignment         []string             `json:"early_church_alignment"`
	ReformationEraImpact         []string             `json:"reformation_era_impact"`
	ModernTheologicalDevelopment []string             `json:"modern_theological_development"`
	HistoricalTrajectory         string               `json:"historical_trajectory"`
	CreedalConnections           []CreedConnection    `json:"creedal_connections"`
}
