// Package types provides type definitions for structured data used throughout the outreach-architect system.
package types

import "github.com/google/uuid"

// AnalysisResult is the structured output of lead analysis.
type AnalysisResult struct {
	PainPoints           []string       `json:"pain_points,omitempty"`
	Interests            []string       `json:"interests,omitempty"`
	TriggerEvents        []TriggerEvent `json:"trigger_events,omitempty"`
	PersonalizationHooks []string       `json:"personalization_hooks,omitempty"`
	CommunicationStyle   string         `json:"communication_style,omitempty"`
	RelevanceScore       float64        `json:"relevance_score"`
	RecommendedApproach  string         `json:"recommended_approach,omitempty"`

	// RawAnalysis carries the unparsed model output when the response
	// could not be decoded into the fields above.
	RawAnalysis string `json:"raw_analysis,omitempty"`
}

// EmailDraft is one generated outreach email.
type EmailDraft struct {
	SubjectLine             string   `json:"subject_line"`
	EmailBody               string   `json:"email_body"`
	PersonalizationElements []string `json:"personalization_elements,omitempty"`
	Reasoning               string   `json:"reasoning,omitempty"`
	ExpectedResponseRate    float64  `json:"expected_response_rate,omitempty"`

	// Variant metadata, set only for A/B variant drafts.
	VariantName string `json:"variant_name,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
}

// QualityCheck is the result of evaluating a draft.
type QualityCheck struct {
	QualityScore         float64  `json:"quality_score"`
	PassesQA             bool     `json:"passes_qa"`
	Issues               []string `json:"issues,omitempty"`
	WordCount            int      `json:"word_count"`
	PersonalizationCount int      `json:"personalization_count"`
}

// ProcessStatus is the terminal status of one lead's pipeline run.
type ProcessStatus string

// Terminal statuses produced by the stage sequencer.
const (
	ProcessProcessing       ProcessStatus = "processing"
	ProcessEnrichmentFailed ProcessStatus = "enrichment_failed"
	ProcessLowRelevance     ProcessStatus = "low_relevance"
	ProcessReady            ProcessStatus = "ready"
	ProcessSent             ProcessStatus = "sent"
	ProcessSendFailed       ProcessStatus = "send_failed"
	ProcessPendingReview    ProcessStatus = "pending_review"
	ProcessError            ProcessStatus = "error"
)

// EnrichmentResult holds the bundles gathered during the enrichment stage.
type EnrichmentResult struct {
	Profile        *ProfileSnapshot `json:"profile,omitempty"`
	RecentActivity []ActivityItem   `json:"recent_activity,omitempty"`
	CompanyIntel   *OrgIntelligence `json:"company_intel,omitempty"`
}

// ProcessResult is the per-lead outcome of one pipeline run. It exists only
// for the duration of the call and is returned to the batch runner or a
// synchronous caller.
type ProcessResult struct {
	LeadID   uuid.UUID     `json:"lead_id"`
	LeadName string        `json:"lead_name"`
	Status   ProcessStatus `json:"status"`

	Enrichment   *EnrichmentResult `json:"enrichment,omitempty"`
	Analysis     *AnalysisResult   `json:"analysis,omitempty"`
	Email        *EmailDraft       `json:"email,omitempty"`
	QualityCheck *QualityCheck     `json:"quality_check,omitempty"`
	SentAt       string            `json:"sent_at,omitempty"`

	RelevanceScore float64    `json:"relevance_score,omitempty"`
	CampaignID     *uuid.UUID `json:"campaign_id,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// BatchStats aggregates outcomes across one batch run.
// Successful counts ready and sent outcomes; Failed counts error and
// enrichment_failed. Outcomes with status pending_review or send_failed
// appear in Total only.
type BatchStats struct {
	Total        int `json:"total"`
	Successful   int `json:"successful"`
	Sent         int `json:"sent"`
	LowRelevance int `json:"low_relevance"`
	Failed       int `json:"failed"`
}
