package pipeline

import (
	"context"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-architect/internal/types"
)

// ProcessBatch processes a set of leads concurrently with a bounded worker
// count. Lead IDs that do not resolve to a stored lead are skipped. Failures
// are isolated per lead; the returned error is only non-nil when the lead
// lookups themselves fail.
func (p *Processor) ProcessBatch(ctx context.Context, leadIDs []uuid.UUID, opts Options) ([]types.ProcessResult, *types.BatchStats, error) {
	log.Printf("[pipeline] batch processing %d leads", len(leadIDs))

	var leads []*types.Lead
	for _, id := range leadIDs {
		lead, err := p.store.GetLead(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if lead == nil {
			log.Printf("[pipeline] lead %s not found, skipping", id)
			continue
		}
		leads = append(leads, lead)
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = p.cfg.MaxConcurrent
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]types.ProcessResult, len(leads))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrent)

	for i, lead := range leads {
		group.Go(func() error {
			results[i] = *p.ProcessLead(groupCtx, lead, opts)
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = group.Wait()

	stats := TallyStats(results)
	log.Printf("[pipeline] batch complete: total=%d successful=%d sent=%d low_relevance=%d failed=%d",
		stats.Total, stats.Successful, stats.Sent, stats.LowRelevance, stats.Failed)

	return results, stats, nil
}

// TallyStats aggregates batch outcomes. Outcomes with status pending_review
// or send_failed contribute to Total only.
func TallyStats(results []types.ProcessResult) *types.BatchStats {
	stats := &types.BatchStats{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case types.ProcessReady, types.ProcessSent:
			stats.Successful++
		case types.ProcessLowRelevance:
			stats.LowRelevance++
		case types.ProcessError, types.ProcessEnrichmentFailed:
			stats.Failed++
		}
		if result.Status == types.ProcessSent {
			stats.Sent++
		}
	}
	return stats
}
