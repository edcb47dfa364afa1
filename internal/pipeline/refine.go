package pipeline

import (
	"context"
	"log"

	"github.com/jonathan/outreach-architect/internal/generation"
	"github.com/jonathan/outreach-architect/internal/types"
)

// refineEmail runs the bounded generate-and-evaluate loop. A draft scoring
// at or above the acceptance threshold is returned immediately; when every
// attempt falls short the last draft is returned best-effort with its check
// attached. Generation errors are hard failures and are not retried.
func (p *Processor) refineEmail(ctx context.Context, lead *types.Lead, analysis *types.AnalysisResult, opts Options) (*types.EmailDraft, *types.QualityCheck, int, error) {
	maxAttempts := p.cfg.MaxGenerationAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	params := generation.EmailParams{
		CompanyContext:   opts.CompanyContext,
		ValueProposition: opts.ValueProposition,
	}

	var draft *types.EmailDraft
	var check *types.QualityCheck
	attempts := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		log.Printf("[pipeline] generation attempt %d/%d for %s", attempt, maxAttempts, lead.Name)
		attempts = attempt

		var err error
		draft, err = p.generator.GenerateEmail(ctx, identityOf(lead), analysis, params)
		if err != nil {
			return nil, nil, attempts, err
		}

		check = p.evaluator.Evaluate(draft, analysis)
		if check.QualityScore >= p.cfg.QualityAcceptThreshold {
			log.Printf("[pipeline] quality check passed with score %.2f", check.QualityScore)
			return draft, check, attempts, nil
		}

		log.Printf("[pipeline] quality score %.2f below threshold, issues: %v", check.QualityScore, check.Issues)
	}

	return draft, check, attempts, nil
}
