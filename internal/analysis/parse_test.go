package analysis

import (
	"testing"

	"intakedesk/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompletionFullPayload(t *testing.T) {
	raw := `{
		"summary": "Refonte du portail",
		"objectives": "Réduire les erreurs de saisie",
		"proposedSolution": "Portail web avec API",
		"complexityLevel": "HIGH",
		"estimatedDuration": "3 mois",
		"estimatedBudgetRange": "20000€ - 35000€",
		"risks": "Migration des données existantes",
		"priorityScore": 85,
		"isUrgent": true,
		"recommendations": "Commencer par un MVP",
		"technicalSpecs": "Go, PostgreSQL"
	}`

	result, err := parseCompletion(raw)
	require.NoError(t, err)

	assert.Equal(t, "Refonte du portail", result.Summary)
	assert.Equal(t, types.ComplexityHigh, result.complexity())

	score, ok := result.priorityScore()
	require.True(t, ok)
	assert.Equal(t, 85, score)

	urgent, ok := result.isUrgentFlag()
	require.True(t, ok)
	assert.True(t, urgent)
}

func TestParseCompletionStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"summary\": \"ok\", \"complexityLevel\": \"LOW\"}\n```"

	result, err := parseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Summary)
	assert.Equal(t, types.ComplexityLow, result.complexity())
}

func TestParseCompletionRejectsNonJSON(t *testing.T) {
	_, err := parseCompletion("Je ne peux pas répondre à cette demande.")
	assert.Error(t, err)
}

func TestPriorityScoreUnusableValues(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"priorityScore": null}`,
		`{"priorityScore": "high"}`,
		`{"priorityScore": -5}`,
		`{"priorityScore": 145}`,
	} {
		result, err := parseCompletion(raw)
		require.NoError(t, err, raw)

		_, ok := result.priorityScore()
		assert.False(t, ok, raw)
	}
}

func TestPriorityScoreBoundaryValues(t *testing.T) {
	for raw, want := range map[string]int{
		`{"priorityScore": 0}`:    0,
		`{"priorityScore": 100}`:  100,
		`{"priorityScore": 72.4}`: 72,
	} {
		result, err := parseCompletion(raw)
		require.NoError(t, err)

		score, ok := result.priorityScore()
		require.True(t, ok, raw)
		assert.Equal(t, want, score, raw)
	}
}

func TestIsUrgentFlagUnusableValues(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"isUrgent": null}`,
		`{"isUrgent": "yes"}`,
		`{"isUrgent": 1}`,
	} {
		result, err := parseCompletion(raw)
		require.NoError(t, err, raw)

		_, ok := result.isUrgentFlag()
		assert.False(t, ok, raw)
	}
}

func TestComplexityDefaultsToMedium(t *testing.T) {
	result, err := parseCompletion(`{"complexityLevel": "Moyenne"}`)
	require.NoError(t, err)
	assert.Equal(t, types.ComplexityMedium, result.complexity())

	result, err = parseCompletion(`{}`)
	require.NoError(t, err)
	assert.Equal(t, types.ComplexityMedium, result.complexity())
}
