// Package dispatch delivers approved outreach emails. The default sender
// only logs, so nothing leaves the machine unless a webhook is configured.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/outreach-architect/internal/types"
)

// Sender delivers one campaign email to its lead.
type Sender interface {
	Send(ctx context.Context, campaign *types.OutreachCampaign, lead *types.Lead) error
}

// SendError indicates a delivery failure.
type SendError struct {
	CampaignID string
	Message    string
	Cause      error
}

func (e *SendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("send failed for campaign %s: %s: %v", e.CampaignID, e.Message, e.Cause)
	}
	return fmt.Sprintf("send failed for campaign %s: %s", e.CampaignID, e.Message)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// LogSender logs the outgoing email instead of delivering it.
type LogSender struct{}

// Send logs the campaign and succeeds.
func (LogSender) Send(_ context.Context, campaign *types.OutreachCampaign, lead *types.Lead) error {
	log.Printf("[SEND] to=%s subject=%q campaign=%s (dry run)", lead.Email, campaign.SubjectLine, campaign.ID)
	return nil
}

// outboundEmail is the payload posted to the delivery webhook.
type outboundEmail struct {
	CampaignID string `json:"campaign_id"`
	To         string `json:"to"`
	ToName     string `json:"to_name,omitempty"`
	FromEmail  string `json:"from_email,omitempty"`
	FromName   string `json:"from_name,omitempty"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// WebhookSender posts emails to an external delivery webhook.
type WebhookSender struct {
	URL       string
	FromEmail string
	FromName  string

	client *http.Client
}

// NewWebhookSender creates a sender targeting the given webhook URL.
func NewWebhookSender(url, fromEmail, fromName string) *WebhookSender {
	return &WebhookSender{
		URL:       url,
		FromEmail: fromEmail,
		FromName:  fromName,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the campaign email to the webhook. Any non-2xx response is a
// delivery failure.
func (s *WebhookSender) Send(ctx context.Context, campaign *types.OutreachCampaign, lead *types.Lead) error {
	payload := outboundEmail{
		CampaignID: campaign.ID.String(),
		To:         lead.Email,
		ToName:     lead.Name,
		FromEmail:  s.FromEmail,
		FromName:   s.FromName,
		Subject:    campaign.SubjectLine,
		Body:       campaign.EmailBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &SendError{CampaignID: campaign.ID.String(), Message: "failed to encode payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return &SendError{CampaignID: campaign.ID.String(), Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &SendError{CampaignID: campaign.ID.String(), Message: "webhook request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{
			CampaignID: campaign.ID.String(),
			Message:    fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}
	}
	return nil
}
