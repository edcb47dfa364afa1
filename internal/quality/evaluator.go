// Package quality provides deterministic quality scoring for generated
// outreach drafts. Scoring is pure: no I/O, no state, same inputs always
// produce the same check.
package quality

import (
	"fmt"
	"strings"

	"github.com/jonathan/outreach-architect/internal/types"
)

// Check weights. The score is the unclamped sum of whichever checks pass,
// plus the relevance contribution.
const (
	WeightPersonalization = 0.3
	WeightLength          = 0.2
	WeightCallToAction    = 0.2
	WeightNonGeneric      = 0.2
	WeightRelevance       = 0.1
)

// Word-count bounds for the length check, inclusive.
const (
	MinWordCount = 50
	MaxWordCount = 200
)

// MinPersonalizationElements is the number of declared personalization
// elements needed to earn the personalization weight.
const MinPersonalizationElements = 3

// ctaKeywords is the call-to-action keyword set, matched case-insensitively
// anywhere in the body.
var ctaKeywords = []string{"call", "chat", "meet", "discuss", "connect", "interested"}

// spamPhrases is the generic-filler phrase set; any match fails the
// non-genericness check.
var spamPhrases = []string{
	"hope this email finds you well",
	"i wanted to reach out",
	"just touching base",
	"hope all is well",
	"checking in",
}

// Evaluator scores drafts. PassThreshold feeds the PassesQA bit only; the
// refinement loop and auto-send gate apply their own separate threshold.
type Evaluator struct {
	PassThreshold float64
}

// NewEvaluator creates an evaluator with the given pass threshold.
func NewEvaluator(passThreshold float64) *Evaluator {
	return &Evaluator{PassThreshold: passThreshold}
}

// Evaluate scores a draft against its analysis. Each failed check appends a
// human-readable issue; no check ever contributes negatively.
func (e *Evaluator) Evaluate(draft *types.EmailDraft, analysis *types.AnalysisResult) *types.QualityCheck {
	score := 0.0
	var issues []string

	// Check 1: personalization elements
	personalizationCount := len(draft.PersonalizationElements)
	if personalizationCount >= MinPersonalizationElements {
		score += WeightPersonalization
	} else {
		issues = append(issues, fmt.Sprintf("Only %d personalization elements (need %d+)",
			personalizationCount, MinPersonalizationElements))
	}

	// Check 2: length
	body := draft.EmailBody
	wordCount := len(strings.Fields(body))
	if wordCount >= MinWordCount && wordCount <= MaxWordCount {
		score += WeightLength
	} else {
		issues = append(issues, fmt.Sprintf("Word count %d (ideal: %d-%d)", wordCount, MinWordCount, MaxWordCount))
	}

	lowerBody := strings.ToLower(body)

	// Check 3: clear call-to-action
	hasCTA := false
	for _, keyword := range ctaKeywords {
		if strings.Contains(lowerBody, keyword) {
			hasCTA = true
			break
		}
	}
	if hasCTA {
		score += WeightCallToAction
	} else {
		issues = append(issues, "No clear call-to-action")
	}

	// Check 4: no generic spam phrases
	hasSpam := false
	for _, phrase := range spamPhrases {
		if strings.Contains(lowerBody, phrase) {
			hasSpam = true
			break
		}
	}
	if !hasSpam {
		score += WeightNonGeneric
	} else {
		issues = append(issues, "Contains generic spam phrases")
	}

	// Check 5: analysis relevance contribution
	if analysis != nil {
		score += analysis.RelevanceScore * WeightRelevance
	}

	return &types.QualityCheck{
		QualityScore:         score,
		PassesQA:             score >= e.PassThreshold,
		Issues:               issues,
		WordCount:            wordCount,
		PersonalizationCount: personalizationCount,
	}
}
