// Package types provides type definitions for structured data used throughout the outreach-architect system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle status of an outreach campaign.
type CampaignStatus string

// Campaign statuses. Ready and Sent are the only statuses the pipeline
// writes; the engagement statuses are set by tracking callbacks.
const (
	StatusPending   CampaignStatus = "pending"
	StatusAnalyzing CampaignStatus = "analyzing"
	StatusReady     CampaignStatus = "ready"
	StatusSent      CampaignStatus = "sent"
	StatusOpened    CampaignStatus = "opened"
	StatusClicked   CampaignStatus = "clicked"
	StatusReplied   CampaignStatus = "replied"
	StatusFailed    CampaignStatus = "failed"
	StatusSkipped   CampaignStatus = "skipped"
)

// OutreachCampaign is one generated outreach attempt tied to a lead.
type OutreachCampaign struct {
	ID     uuid.UUID `json:"id"`
	LeadID uuid.UUID `json:"lead_id"`

	SubjectLine             string   `json:"subject_line"`
	EmailBody               string   `json:"email_body"`
	PersonalizationElements []string `json:"personalization_elements,omitempty"`

	// Generation provenance
	ModelUsed          string              `json:"model_used,omitempty"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty"`

	Status CampaignStatus `json:"status"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	OpenedAt  *time.Time `json:"opened_at,omitempty"`
	ClickedAt *time.Time `json:"clicked_at,omitempty"`
	RepliedAt *time.Time `json:"replied_at,omitempty"`

	OpenCount     int    `json:"open_count"`
	ClickCount    int    `json:"click_count"`
	ReplyReceived bool   `json:"reply_received"`
	ReplyContent  string `json:"reply_content,omitempty"`

	// A/B testing
	Variant   string `json:"variant,omitempty"`
	TestGroup string `json:"test_group,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerationMetadata captures the analysis and quality check that produced
// a campaign. The quality check stored here is always the one that caused
// the draft to be accepted or to exhaust its retries.
type GenerationMetadata struct {
	Analysis             *AnalysisResult `json:"analysis,omitempty"`
	QualityCheck         *QualityCheck   `json:"quality_check,omitempty"`
	ExpectedResponseRate float64         `json:"expected_response_rate,omitempty"`
	Attempts             int             `json:"attempts,omitempty"`
}

// FollowUp is a follow-up email in a campaign sequence.
type FollowUp struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`

	SequenceNumber int    `json:"sequence_number"`
	SubjectLine    string `json:"subject_line"`
	EmailBody      string `json:"email_body"`

	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	Status       CampaignStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}
