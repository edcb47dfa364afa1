// Package generation provides the AI generation service used by the
// outreach pipeline: lead analysis, email drafting, A/B variants and
// follow-ups.
package generation

import (
	"context"

	"github.com/jonathan/outreach-architect/internal/types"
)

// LeadIdentity carries the identity fields the generator needs about a lead.
type LeadIdentity struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
	Location string `json:"location,omitempty"`
}

// AnalysisPayload is the full bundle handed to lead analysis: identity plus
// whatever enrichment data is available.
type AnalysisPayload struct {
	LeadIdentity
	Profile        *types.ProfileSnapshot `json:"profile,omitempty"`
	RecentActivity []types.ActivityItem   `json:"recent_activity,omitempty"`
	CompanyIntel   *types.OrgIntelligence `json:"company_intel,omitempty"`
}

// EmailParams configures a single email generation call.
type EmailParams struct {
	CompanyContext   string
	ValueProposition string
	Goal             string
}

// Engagement describes how a recipient interacted with an earlier email.
type Engagement struct {
	Opened  bool
	Clicked bool
}

// Service is the generation collaborator consumed by the pipeline. All
// methods return either a well-formed result or an error; malformed model
// output is recovered into a best-effort result rather than surfaced as an
// error.
type Service interface {
	// AnalyzeLead produces a structured analysis of the lead.
	AnalyzeLead(ctx context.Context, payload AnalysisPayload) (*types.AnalysisResult, error)
	// GenerateEmail produces one personalized outreach draft.
	GenerateEmail(ctx context.Context, identity LeadIdentity, analysis *types.AnalysisResult, params EmailParams) (*types.EmailDraft, error)
	// GenerateVariants produces A/B variants of an existing draft.
	GenerateVariants(ctx context.Context, original *types.EmailDraft, identity LeadIdentity, count int) ([]types.EmailDraft, error)
	// GenerateFollowUp produces a follow-up email in a sequence.
	GenerateFollowUp(ctx context.Context, original *types.EmailDraft, daysSinceSent int, engagement Engagement, sequenceNumber int) (*types.EmailDraft, error)
	// ModelName reports the model identity recorded in campaign provenance.
	ModelName() string
	// Close releases underlying client resources.
	Close() error
}
