package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-architect/internal/types"
)

func testCampaignAndLead() (*types.OutreachCampaign, *types.Lead) {
	campaign := &types.OutreachCampaign{
		ID:          uuid.New(),
		SubjectLine: "Quick question",
		EmailBody:   "Hi Jane, saw your latest launch.",
	}
	lead := &types.Lead{Name: "Jane Doe", Email: "jane@example.com"}
	return campaign, lead
}

func TestLogSender_AlwaysSucceeds(t *testing.T) {
	campaign, lead := testCampaignAndLead()
	assert.NoError(t, LogSender{}.Send(context.Background(), campaign, lead))
}

func TestWebhookSender_PostsPayload(t *testing.T) {
	var received outboundEmail
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	campaign, lead := testCampaignAndLead()
	sender := NewWebhookSender(server.URL, "me@company.com", "Me")

	require.NoError(t, sender.Send(context.Background(), campaign, lead))
	assert.Equal(t, campaign.ID.String(), received.CampaignID)
	assert.Equal(t, "jane@example.com", received.To)
	assert.Equal(t, "me@company.com", received.FromEmail)
	assert.Equal(t, "Quick question", received.Subject)
}

func TestWebhookSender_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	campaign, lead := testCampaignAndLead()
	sender := NewWebhookSender(server.URL, "", "")

	err := sender.Send(context.Background(), campaign, lead)
	require.Error(t, err)

	var sendErr *SendError
	assert.ErrorAs(t, err, &sendErr)
	assert.Contains(t, err.Error(), "502")
}
