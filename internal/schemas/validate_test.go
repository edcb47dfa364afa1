package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AnalysisConforming(t *testing.T) {
	doc := `{
		"pain_points": ["scaling"],
		"interests": ["platform engineering"],
		"relevance_score": 0.85,
		"communication_style": "direct"
	}`

	problems, err := Validate(SchemaAnalysis, doc)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestValidate_AnalysisMissingRequired(t *testing.T) {
	problems, err := Validate(SchemaAnalysis, `{"pain_points": ["scaling"]}`)
	require.NoError(t, err)
	assert.NotEmpty(t, problems)
}

func TestValidate_AnalysisRelevanceOutOfRange(t *testing.T) {
	problems, err := Validate(SchemaAnalysis, `{"relevance_score": 1.5}`)
	require.NoError(t, err)
	assert.NotEmpty(t, problems)
}

func TestValidate_EmailConforming(t *testing.T) {
	doc := `{
		"subject_line": "Scaling at Acme",
		"email_body": "Saw your platform work...",
		"personalization_elements": ["funding"],
		"expected_response_rate": 0.2
	}`

	problems, err := Validate(SchemaEmail, doc)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestValidate_UnknownSchema(t *testing.T) {
	_, err := Validate("bogus", `{}`)
	assert.Error(t, err)
}

func TestValidate_MalformedDocument(t *testing.T) {
	_, err := Validate(SchemaAnalysis, `not json`)
	assert.Error(t, err)
}
