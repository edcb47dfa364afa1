package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/outreach-architect/internal/db"
	"github.com/jonathan/outreach-architect/internal/generation"
	"github.com/jonathan/outreach-architect/internal/pipeline"
	"github.com/jonathan/outreach-architect/internal/types"
)

// handleCreateCampaigns runs the outreach pipeline for the requested leads.
// Small batches are processed synchronously; larger ones run in the
// background and the caller polls GET /campaigns for results.
func (s *Server) handleCreateCampaigns(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Validate every lead exists before starting any work
	for _, id := range req.LeadIDs {
		lead, err := s.store.GetLead(r.Context(), id)
		if err != nil {
			s.errorResponse(w, httpStatusFor(err), err.Error())
			return
		}
		if lead == nil {
			s.errorResponse(w, http.StatusNotFound, "some lead IDs not found")
			return
		}
	}

	opts := pipeline.Options{
		CompanyContext:   req.CompanyContext,
		ValueProposition: req.ValueProposition,
		AutoSend:         req.AutoSend,
		GenerateVariants: req.GenerateVariants,
	}

	if len(req.LeadIDs) <= maxSyncBatch {
		log.Printf("Processing %d leads synchronously", len(req.LeadIDs))
		results, stats, err := s.batcher.ProcessBatch(r.Context(), req.LeadIDs, opts)
		if err != nil {
			s.errorResponse(w, httpStatusFor(err), err.Error())
			return
		}
		s.jsonResponse(w, http.StatusOK, types.BatchResponse{
			Status:     "completed",
			Results:    results,
			Statistics: stats,
		})
		return
	}

	log.Printf("Processing %d leads in background", len(req.LeadIDs))
	go func() {
		if _, _, err := s.batcher.ProcessBatch(context.Background(), req.LeadIDs, opts); err != nil {
			log.Printf("background batch failed: %v", err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, types.BatchResponse{
		Status:  "processing",
		Message: "processing leads in background",
		LeadIDs: req.LeadIDs,
	})
}

// handleListCampaigns lists campaigns with optional status filter.
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := db.CampaignFilters{
		Status: types.CampaignStatus(query.Get("status")),
	}
	if v := query.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Limit = n
		}
	}
	if v := query.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Offset = n
		}
	}

	campaigns, err := s.store.ListCampaigns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if campaigns == nil {
		campaigns = []types.OutreachCampaign{}
	}
	s.jsonResponse(w, http.StatusOK, campaigns)
}

// handleGetCampaign returns a single campaign.
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	campaign, err := s.store.GetCampaign(r.Context(), id)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if campaign == nil {
		s.errorResponse(w, http.StatusNotFound, "campaign not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, campaign)
}

// handleSendCampaign manually sends a generated campaign that was not
// auto-sent.
func (s *Server) handleSendCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	campaign, err := s.store.GetCampaign(r.Context(), id)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if campaign == nil {
		s.errorResponse(w, http.StatusNotFound, "campaign not found")
		return
	}
	if campaign.Status == types.StatusSent {
		s.errorResponse(w, http.StatusBadRequest, "campaign already sent")
		return
	}

	lead, err := s.store.GetLead(r.Context(), campaign.LeadID)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if lead == nil {
		s.errorResponse(w, http.StatusNotFound, "lead not found for campaign")
		return
	}

	if err := s.sender.Send(r.Context(), campaign, lead); err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := s.store.MarkCampaignSent(r.Context(), id); err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "sent",
		"campaign_id": id,
		"sent_at":     time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListFollowUps lists the follow-up sequence for a campaign.
func (s *Server) handleListFollowUps(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	followUps, err := s.store.ListFollowUps(r.Context(), id)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if followUps == nil {
		followUps = []types.FollowUp{}
	}
	s.jsonResponse(w, http.StatusOK, followUps)
}

// handleCreateFollowUp generates the next follow-up in a campaign's
// sequence, informed by how the recipient engaged so far.
func (s *Server) handleCreateFollowUp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	campaign, err := s.store.GetCampaign(r.Context(), id)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if campaign == nil {
		s.errorResponse(w, http.StatusNotFound, "campaign not found")
		return
	}
	if campaign.SentAt == nil {
		s.errorResponse(w, http.StatusBadRequest, "campaign has not been sent yet")
		return
	}

	existing, err := s.store.ListFollowUps(r.Context(), id)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	original := &types.EmailDraft{
		SubjectLine: campaign.SubjectLine,
		EmailBody:   campaign.EmailBody,
	}
	engagement := generation.Engagement{
		Opened:  campaign.OpenCount > 0,
		Clicked: campaign.ClickCount > 0,
	}
	daysSinceSent := int(time.Since(*campaign.SentAt).Hours() / 24)
	sequenceNumber := len(existing) + 1

	draft, err := s.generator.GenerateFollowUp(r.Context(), original, daysSinceSent, engagement, sequenceNumber)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	followUp := &types.FollowUp{
		CampaignID:     id,
		SequenceNumber: sequenceNumber,
		SubjectLine:    draft.SubjectLine,
		EmailBody:      draft.EmailBody,
		Status:         types.StatusPending,
	}
	if err := s.store.CreateFollowUp(r.Context(), followUp); err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, followUp)
}

// trackEventRequest is the engagement callback payload.
type trackEventRequest struct {
	Event   string `json:"event"`
	Content string `json:"content,omitempty"`
}

// handleTrackEvent records an engagement event (open, click or reply)
// reported by the delivery provider.
func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	var req trackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Event {
	case "open":
		err = s.store.RecordOpen(r.Context(), id)
	case "click":
		err = s.store.RecordClick(r.Context(), id)
	case "reply":
		err = s.store.RecordReply(r.Context(), id, req.Content)
	default:
		s.errorResponse(w, http.StatusBadRequest, "unknown event type")
		return
	}
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// handleAnalytics returns overall outreach performance metrics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	totalLeads, err := s.store.CountLeads(r.Context())
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	stats, err := s.store.GetCampaignStats(r.Context())
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total_leads":     totalLeads,
		"total_campaigns": stats.Total,
		"sent_campaigns":  stats.Sent,
		"replied":         stats.Replied,
		"open_rate":       stats.OpenRate,
		"reply_rate":      stats.ReplyRate,
	})
}
