// Package pipeline orchestrates the end-to-end outreach workflow for a
// lead: enrichment, analysis, bounded generation refinement, persistence
// and the send decision.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-architect/internal/config"
	"github.com/jonathan/outreach-architect/internal/dispatch"
	"github.com/jonathan/outreach-architect/internal/generation"
	"github.com/jonathan/outreach-architect/internal/quality"
	"github.com/jonathan/outreach-architect/internal/types"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error)
	UpdateLeadEnrichment(ctx context.Context, id uuid.UUID, enrichment *types.EnrichmentResult) error
	UpdateLeadAnalysis(ctx context.Context, id uuid.UUID, analysis *types.AnalysisResult) error
	CreateCampaign(ctx context.Context, campaign *types.OutreachCampaign) error
	MarkCampaignSent(ctx context.Context, id uuid.UUID) error
}

// LeadEnricher runs the enrichment stage for one lead.
type LeadEnricher interface {
	EnrichLead(ctx context.Context, lead *types.Lead) (*types.EnrichmentResult, error)
}

// Options configures one processing run.
type Options struct {
	CompanyContext   string
	ValueProposition string
	AutoSend         bool
	GenerateVariants bool
	MaxConcurrent    int
}

// Processor runs leads through the outreach stages.
type Processor struct {
	store     Store
	enricher  LeadEnricher
	generator generation.Service
	evaluator *quality.Evaluator
	sender    dispatch.Sender
	cfg       config.Config
}

// NewProcessor wires the pipeline collaborators.
func NewProcessor(store Store, enricher LeadEnricher, generator generation.Service, evaluator *quality.Evaluator, sender dispatch.Sender, cfg config.Config) *Processor {
	return &Processor{
		store:     store,
		enricher:  enricher,
		generator: generator,
		evaluator: evaluator,
		sender:    sender,
		cfg:       cfg,
	}
}

// ProcessLead runs one lead end to end. It never returns an error: every
// failure mode maps to a terminal status on the result, so batch callers
// can keep going.
func (p *Processor) ProcessLead(ctx context.Context, lead *types.Lead, opts Options) *types.ProcessResult {
	log.Printf("[pipeline] processing lead: %s (%s)", lead.Name, lead.Email)

	result := &types.ProcessResult{
		LeadID:   lead.ID,
		LeadName: lead.Name,
		Status:   types.ProcessProcessing,
	}

	// Stage 1: enrichment
	enrichment, err := p.enricher.EnrichLead(ctx, lead)
	if err != nil {
		log.Printf("[pipeline] enrichment failed for %s: %v", lead.Name, err)
		result.Status = types.ProcessEnrichmentFailed
		result.Error = err.Error()
		return result
	}
	result.Enrichment = enrichment

	if err := p.store.UpdateLeadEnrichment(ctx, lead.ID, enrichment); err != nil {
		log.Printf("[pipeline] persisting enrichment failed for %s: %v", lead.Name, err)
		result.Status = types.ProcessEnrichmentFailed
		result.Error = err.Error()
		return result
	}
	lead.Profile = enrichment.Profile
	lead.RecentActivity = enrichment.RecentActivity
	lead.CompanyIntel = enrichment.CompanyIntel

	// Stage 2: analysis
	analysis, err := p.generator.AnalyzeLead(ctx, generation.AnalysisPayload{
		LeadIdentity:   identityOf(lead),
		Profile:        enrichment.Profile,
		RecentActivity: enrichment.RecentActivity,
		CompanyIntel:   enrichment.CompanyIntel,
	})
	if err != nil {
		result.Status = types.ProcessError
		result.Error = err.Error()
		return result
	}
	result.Analysis = analysis
	result.RelevanceScore = analysis.RelevanceScore

	if err := p.store.UpdateLeadAnalysis(ctx, lead.ID, analysis); err != nil {
		result.Status = types.ProcessError
		result.Error = err.Error()
		return result
	}

	if analysis.RelevanceScore < p.cfg.MinRelevanceScore {
		log.Printf("[pipeline] lead %s below relevance threshold: %.2f", lead.Name, analysis.RelevanceScore)
		result.Status = types.ProcessLowRelevance
		return result
	}

	// Stages 3 and 4: generation with bounded refinement
	draft, check, attempts, err := p.refineEmail(ctx, lead, analysis, opts)
	if err != nil {
		result.Status = types.ProcessError
		result.Error = err.Error()
		return result
	}
	result.Email = draft
	result.QualityCheck = check

	// Stage 5: persist the campaign
	campaign := &types.OutreachCampaign{
		LeadID:                  lead.ID,
		SubjectLine:             draft.SubjectLine,
		EmailBody:               draft.EmailBody,
		PersonalizationElements: draft.PersonalizationElements,
		ModelUsed:               p.generator.ModelName(),
		GenerationMetadata: &types.GenerationMetadata{
			Analysis:             analysis,
			QualityCheck:         check,
			ExpectedResponseRate: draft.ExpectedResponseRate,
			Attempts:             attempts,
		},
		Status: types.StatusReady,
	}
	if err := p.store.CreateCampaign(ctx, campaign); err != nil {
		result.Status = types.ProcessError
		result.Error = err.Error()
		return result
	}
	result.CampaignID = &campaign.ID
	result.Status = types.ProcessReady
	log.Printf("[pipeline] created campaign %s for lead %s", campaign.ID, lead.Name)

	if opts.GenerateVariants {
		p.persistVariants(ctx, lead, campaign, draft)
	}

	// Stage 6: send decision
	if opts.AutoSend && check.QualityScore >= p.cfg.QualityAcceptThreshold {
		if err := p.sender.Send(ctx, campaign, lead); err != nil {
			log.Printf("[pipeline] send failed for campaign %s: %v", campaign.ID, err)
			result.Status = types.ProcessSendFailed
			result.Error = err.Error()
			return result
		}
		if err := p.store.MarkCampaignSent(ctx, campaign.ID); err != nil {
			result.Status = types.ProcessSendFailed
			result.Error = err.Error()
			return result
		}
		result.Status = types.ProcessSent
		result.SentAt = time.Now().UTC().Format(time.RFC3339)
	} else {
		result.Status = types.ProcessPendingReview
	}

	log.Printf("[pipeline] lead processing complete: %s -> %s", lead.Name, result.Status)
	return result
}

// persistVariants generates A/B variants of the accepted draft and stores
// each as its own campaign. Variant failures never affect the main outcome.
func (p *Processor) persistVariants(ctx context.Context, lead *types.Lead, original *types.OutreachCampaign, draft *types.EmailDraft) {
	variants, err := p.generator.GenerateVariants(ctx, draft, identityOf(lead), 2)
	if err != nil {
		log.Printf("[pipeline] variant generation failed for lead %s: %v", lead.Name, err)
		return
	}

	for _, variant := range variants {
		campaign := &types.OutreachCampaign{
			LeadID:                  lead.ID,
			SubjectLine:             variant.SubjectLine,
			EmailBody:               variant.EmailBody,
			PersonalizationElements: variant.PersonalizationElements,
			ModelUsed:               p.generator.ModelName(),
			Status:                  types.StatusReady,
			Variant:                 variant.VariantName,
			TestGroup:               original.ID.String(),
		}
		if err := p.store.CreateCampaign(ctx, campaign); err != nil {
			log.Printf("[pipeline] failed to persist variant for lead %s: %v", lead.Name, err)
		}
	}
}

func identityOf(lead *types.Lead) generation.LeadIdentity {
	return generation.LeadIdentity{
		Name:     lead.Name,
		Email:    lead.Email,
		Company:  lead.Company,
		JobTitle: lead.JobTitle,
		Location: lead.Location,
	}
}
