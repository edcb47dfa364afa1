package enrich

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-architect/internal/types"
)

// Enricher runs the full enrichment stage for a lead: profile scraping and
// company intelligence gathering, in parallel.
type Enricher struct {
	Profiles ProfileSource
	Intel    IntelSource
}

// NewEnricher creates an enricher over the given sources.
func NewEnricher(profiles ProfileSource, intel IntelSource) *Enricher {
	return &Enricher{Profiles: profiles, Intel: intel}
}

// EnrichLead gathers everything available for a lead. A lead with no profile
// URL and no company yields an empty result without error. Profile and
// intelligence failures are returned as errors; a failed activity fetch only
// logs, since activity is a nice-to-have on top of the profile.
func (e *Enricher) EnrichLead(ctx context.Context, lead *types.Lead) (*types.EnrichmentResult, error) {
	result := &types.EnrichmentResult{}

	group, groupCtx := errgroup.WithContext(ctx)

	if lead.ProfileURL != "" {
		group.Go(func() error {
			profile, err := e.Profiles.FetchProfile(groupCtx, lead.ProfileURL)
			if err != nil {
				return err
			}
			result.Profile = profile

			activity, err := e.Profiles.FetchRecentActivity(groupCtx, lead.ProfileURL, DefaultActivityLimit)
			if err != nil {
				log.Printf("[enrich] recent activity failed for %s: %v", lead.ProfileURL, err)
				return nil
			}
			result.RecentActivity = activity
			return nil
		})
	}

	if lead.Company != "" {
		group.Go(func() error {
			intel, err := e.Intel.Gather(groupCtx, lead.Company, lead.CompanyWebsite)
			if err != nil {
				return err
			}
			result.CompanyIntel = intel
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
