package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/outreach-architect/internal/db"
	"github.com/jonathan/outreach-architect/internal/types"
)

// handleCreateLead creates a lead record. Processing happens later via
// POST /campaigns.
func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req types.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := s.store.CreateLead(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	log.Printf("Created lead: %s (%s)", lead.Name, lead.Email)
	s.jsonResponse(w, http.StatusCreated, lead)
}

// handleListLeads lists leads with optional filters.
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := db.LeadFilters{
		Company: query.Get("company"),
		Source:  query.Get("source"),
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
	if v := query.Get("min_relevance"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinRelevance = f
		}
	}

	leads, err := s.store.ListLeads(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if leads == nil {
		leads = []types.Lead{}
	}
	s.jsonResponse(w, http.StatusOK, leads)
}

// handleGetLead returns a single lead.
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid lead ID")
		return
	}

	lead, err := s.store.GetLead(r.Context(), id)
	if err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	if lead == nil {
		s.errorResponse(w, http.StatusNotFound, "lead not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, lead)
}

// handleDeleteLead removes a lead and its campaigns.
func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid lead ID")
		return
	}

	if err := s.store.DeleteLead(r.Context(), id); err != nil {
		s.errorResponse(w, httpStatusFor(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
