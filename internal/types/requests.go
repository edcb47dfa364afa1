// Package types provides type definitions for structured data used throughout the outreach-architect system.
package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateLeadRequest represents the request to create a new lead.
type CreateLeadRequest struct {
	Name           string   `json:"name" validate:"required,min=1"`
	Email          string   `json:"email" validate:"required,email"`
	Company        string   `json:"company,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	Location       string   `json:"location,omitempty"`
	ProfileURL     string   `json:"profile_url,omitempty" validate:"omitempty,url"`
	CompanyWebsite string   `json:"company_website,omitempty" validate:"omitempty,url"`
	Source         string   `json:"source,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// CreateCampaignRequest represents the request to generate outreach for a
// set of leads.
type CreateCampaignRequest struct {
	LeadIDs          []uuid.UUID `json:"lead_ids" validate:"required,min=1"`
	CompanyContext   string      `json:"company_context" validate:"required"`
	ValueProposition string      `json:"value_proposition" validate:"required"`
	AutoSend         bool        `json:"auto_send"`
	GenerateVariants bool        `json:"generate_variants"`
}

// BatchResponse is returned by a batch campaign run.
type BatchResponse struct {
	Status     string          `json:"status"`
	Results    []ProcessResult `json:"results,omitempty"`
	Statistics *BatchStats     `json:"statistics,omitempty"`
	Message    string          `json:"message,omitempty"`
	LeadIDs    []uuid.UUID     `json:"lead_ids,omitempty"`
}

// Validate validates the CreateLeadRequest using the validator.
func (r *CreateLeadRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateCampaignRequest using the validator.
func (r *CreateCampaignRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
