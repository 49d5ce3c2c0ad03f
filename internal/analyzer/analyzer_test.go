package analyzer

import (
	"testing"

	"github.com/scripture-analysis-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePerspectives(t *testing.T) {
	assert.NoError(t, ValidatePerspectives([]string{"catholic", "eastern_orthodox"}))
	assert.NoError(t, ValidatePerspectives(nil))

	err := ValidatePerspectives([]string{"catholic", "gnostic", "arian"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gnostic")
	assert.Contains(t, err.Error(), "arian")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "eastern orthodox", DisplayName("eastern_orthodox"))
	assert.Equal(t, "catholic", DisplayName("catholic"))
}

func TestEveryPerspectiveHasAnEmphasis(t *testing.T) {
	for _, p := range AllPerspectives {
		assert.NotEmpty(t, perspectiveEmphases[p], p)
	}
}

func TestPlaceholderAnalysisIsDegraded(t *testing.T) {
	a := PlaceholderAnalysis("baptist")
	assert.True(t, a.Degraded)
	assert.Contains(t, a.ResponseText, "baptist")
	assert.NotNil(t, a.CrossReferences)
}

func TestDecodeJSONStripsFences(t *testing.T) {
	raw := "```json\n{\"response_text\": \"ok\", \"cross_references\": []}\n```"

	var a models.Analysis
	require.NoError(t, decodeJSON(raw, &a))
	assert.Equal(t, "ok", a.ResponseText)
}

func TestDecodeJSONRejectsEmpty(t *testing.T) {
	var a models.Analysis
	assert.Error(t, decodeJSON("``````", &a))
	assert.Error(t, decodeJSON("not json", &a))
}
