package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/outreach-architect/internal/types"
)

// bodyOfWords builds an email body with exactly n words, ending with the
// given closing sentence (whose words count toward n).
func bodyOfWords(n int, closing string) string {
	closingWords := len(strings.Fields(closing))
	filler := strings.TrimSpace(strings.Repeat("insight ", n-closingWords))
	return filler + " " + closing
}

func TestEvaluate_PerfectDraft(t *testing.T) {
	e := NewEvaluator(0.7)
	draft := &types.EmailDraft{
		EmailBody:               bodyOfWords(100, "Would you be open to a quick call next week?"),
		PersonalizationElements: []string{"recent funding", "hiring push", "shared interest"},
	}
	analysis := &types.AnalysisResult{RelevanceScore: 1.0}

	check := e.Evaluate(draft, analysis)

	assert.InDelta(t, 1.0, check.QualityScore, 1e-9)
	assert.True(t, check.PassesQA)
	assert.Empty(t, check.Issues)
	assert.Equal(t, 100, check.WordCount)
	assert.Equal(t, 3, check.PersonalizationCount)
}

func TestEvaluate_ChecksAreAdditive(t *testing.T) {
	goodBody := bodyOfWords(100, "Would you be open to a quick call next week?")

	tests := []struct {
		name      string
		draft     *types.EmailDraft
		relevance float64
		want      float64
		issue     string
	}{
		{
			name: "missing personalization",
			draft: &types.EmailDraft{
				EmailBody:               goodBody,
				PersonalizationElements: []string{"one", "two"},
			},
			relevance: 1.0,
			want:      0.7,
			issue:     "Only 2 personalization elements (need 3+)",
		},
		{
			name: "too short",
			draft: &types.EmailDraft{
				EmailBody:               "Quick call?",
				PersonalizationElements: []string{"one", "two", "three"},
			},
			relevance: 1.0,
			want:      0.8,
			issue:     "Word count 2 (ideal: 50-200)",
		},
		{
			name: "no call to action",
			draft: &types.EmailDraft{
				EmailBody:               bodyOfWords(100, "Great work on the launch."),
				PersonalizationElements: []string{"one", "two", "three"},
			},
			relevance: 1.0,
			want:      0.8,
			issue:     "No clear call-to-action",
		},
		{
			name: "spam phrase",
			draft: &types.EmailDraft{
				EmailBody:               bodyOfWords(100, "I hope this email finds you well. Interested in a call?"),
				PersonalizationElements: []string{"one", "two", "three"},
			},
			relevance: 1.0,
			want:      0.8,
			issue:     "Contains generic spam phrases",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(0.7)
			check := e.Evaluate(tt.draft, &types.AnalysisResult{RelevanceScore: tt.relevance})
			assert.InDelta(t, tt.want, check.QualityScore, 1e-9)
			assert.Contains(t, check.Issues, tt.issue)
		})
	}
}

func TestEvaluate_RelevanceContributionScales(t *testing.T) {
	e := NewEvaluator(0.7)
	draft := &types.EmailDraft{
		EmailBody:               bodyOfWords(100, "Would you be open to a quick call next week?"),
		PersonalizationElements: []string{"one", "two", "three"},
	}

	low := e.Evaluate(draft, &types.AnalysisResult{RelevanceScore: 0.2})
	high := e.Evaluate(draft, &types.AnalysisResult{RelevanceScore: 0.9})

	assert.InDelta(t, 0.92, low.QualityScore, 1e-9)
	assert.InDelta(t, 0.99, high.QualityScore, 1e-9)
}

func TestEvaluate_NilAnalysisContributesNothing(t *testing.T) {
	e := NewEvaluator(0.7)
	draft := &types.EmailDraft{
		EmailBody:               bodyOfWords(100, "Would you be open to a quick call next week?"),
		PersonalizationElements: []string{"one", "two", "three"},
	}

	check := e.Evaluate(draft, nil)

	assert.InDelta(t, 0.9, check.QualityScore, 1e-9)
}

func TestEvaluate_WordCountBoundsAreInclusive(t *testing.T) {
	e := NewEvaluator(0.7)
	closing := "Interested in a chat?"

	atMin := e.Evaluate(&types.EmailDraft{EmailBody: bodyOfWords(MinWordCount, closing)}, nil)
	atMax := e.Evaluate(&types.EmailDraft{EmailBody: bodyOfWords(MaxWordCount, closing)}, nil)
	over := e.Evaluate(&types.EmailDraft{EmailBody: bodyOfWords(MaxWordCount+1, closing)}, nil)

	assert.Equal(t, MinWordCount, atMin.WordCount)
	assert.NotContains(t, strings.Join(atMin.Issues, "\n"), "Word count")
	assert.NotContains(t, strings.Join(atMax.Issues, "\n"), "Word count")
	assert.Contains(t, strings.Join(over.Issues, "\n"), "Word count")
}

func TestEvaluate_PassThresholdBoundary(t *testing.T) {
	draft := &types.EmailDraft{
		EmailBody:               bodyOfWords(100, "Would you be open to a quick call next week?"),
		PersonalizationElements: []string{"one", "two"},
	}
	// Score is exactly 0.7: length + CTA + non-generic + relevance 1.0
	analysis := &types.AnalysisResult{RelevanceScore: 1.0}

	atThreshold := NewEvaluator(0.7).Evaluate(draft, analysis)
	aboveThreshold := NewEvaluator(0.71).Evaluate(draft, analysis)

	assert.True(t, atThreshold.PassesQA)
	assert.False(t, aboveThreshold.PassesQA)
}

func TestEvaluate_CTAKeywordsAreCaseInsensitive(t *testing.T) {
	e := NewEvaluator(0.7)
	check := e.Evaluate(&types.EmailDraft{
		EmailBody: bodyOfWords(100, "Let me know if you are INTERESTED."),
	}, nil)

	assert.NotContains(t, check.Issues, "No clear call-to-action")
}
