package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-architect/internal/types"
)

// leadColumns is the select list shared by every lead query.
const leadColumns = `id, name, email,
	COALESCE(company, ''), COALESCE(job_title, ''), COALESCE(location, ''),
	COALESCE(profile_url, ''), COALESCE(company_website, ''),
	profile, recent_activity, company_intel,
	pain_points, interests, trigger_events, relevance_score,
	COALESCE(source, ''), tags, created_at, updated_at, last_enriched_at`

// CreateLead inserts a new lead. A duplicate email returns a
// DuplicateError.
func (db *DB) CreateLead(ctx context.Context, req *types.CreateLeadRequest) (*types.Lead, error) {
	tagsJSON, err := json.Marshal(req.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	var id uuid.UUID
	var createdAt, updatedAt time.Time
	err = db.pool.QueryRow(ctx,
		`INSERT INTO leads (name, email, company, job_title, location, profile_url, company_website, source, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		req.Name, req.Email, req.Company, req.JobTitle, req.Location,
		req.ProfileURL, req.CompanyWebsite, req.Source, tagsJSON,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateError{Resource: "lead", Field: "email", Value: req.Email}
		}
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return &types.Lead{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		Company:        req.Company,
		JobTitle:       req.JobTitle,
		Location:       req.Location,
		ProfileURL:     req.ProfileURL,
		CompanyWebsite: req.CompanyWebsite,
		Source:         req.Source,
		Tags:           req.Tags,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// GetLead retrieves a lead by ID. Returns nil when not found.
func (db *DB) GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// LeadFilters holds optional filters for listing leads.
type LeadFilters struct {
	Company      string
	Source       string
	MinRelevance float64
	Limit        int
	Offset       int
}

// buildLeadsQuery assembles the filtered leads listing query.
func buildLeadsQuery(filters LeadFilters) (string, []any, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	builder := psql.Select(leadColumns).
		From("leads").
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	if filters.Company != "" {
		builder = builder.Where(sq.ILike{"company": "%" + filters.Company + "%"})
	}
	if filters.Source != "" {
		builder = builder.Where(sq.Eq{"source": filters.Source})
	}
	if filters.MinRelevance > 0 {
		builder = builder.Where(sq.GtOrEq{"relevance_score": filters.MinRelevance})
	}

	return builder.ToSql()
}

// ListLeads retrieves leads matching the filters, newest first.
func (db *DB) ListLeads(ctx context.Context, filters LeadFilters) ([]types.Lead, error) {
	query, args, err := buildLeadsQuery(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to build leads query: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []types.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, nil
}

// CountLeads returns the total number of leads.
func (db *DB) CountLeads(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// UpdateLeadEnrichment stores the enrichment bundles on a lead and stamps
// last_enriched_at.
func (db *DB) UpdateLeadEnrichment(ctx context.Context, id uuid.UUID, enrichment *types.EnrichmentResult) error {
	profileJSON, err := json.Marshal(enrichment.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	activityJSON, err := json.Marshal(enrichment.RecentActivity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}
	intelJSON, err := json.Marshal(enrichment.CompanyIntel)
	if err != nil {
		return fmt.Errorf("failed to marshal company intel: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE leads SET profile = $1, recent_activity = $2, company_intel = $3,
		 last_enriched_at = NOW(), updated_at = NOW()
		 WHERE id = $4`,
		profileJSON, activityJSON, intelJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead enrichment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "lead", ID: id.String()}
	}
	return nil
}

// UpdateLeadAnalysis stores the analysis-derived signals on a lead.
func (db *DB) UpdateLeadAnalysis(ctx context.Context, id uuid.UUID, analysis *types.AnalysisResult) error {
	painJSON, err := json.Marshal(analysis.PainPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal pain points: %w", err)
	}
	interestsJSON, err := json.Marshal(analysis.Interests)
	if err != nil {
		return fmt.Errorf("failed to marshal interests: %w", err)
	}
	triggersJSON, err := json.Marshal(analysis.TriggerEvents)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger events: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE leads SET pain_points = $1, interests = $2, trigger_events = $3,
		 relevance_score = $4, updated_at = NOW()
		 WHERE id = $5`,
		painJSON, interestsJSON, triggersJSON, analysis.RelevanceScore, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "lead", ID: id.String()}
	}
	return nil
}

// DeleteLead removes a lead and its campaigns (via cascade).
func (db *DB) DeleteLead(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "lead", ID: id.String()}
	}
	return nil
}

// scanLead reads one lead row, decoding the JSONB columns.
func scanLead(row pgx.Row) (*types.Lead, error) {
	var lead types.Lead
	var profileJSON, activityJSON, intelJSON, painJSON, interestsJSON, triggersJSON, tagsJSON []byte

	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email,
		&lead.Company, &lead.JobTitle, &lead.Location,
		&lead.ProfileURL, &lead.CompanyWebsite,
		&profileJSON, &activityJSON, &intelJSON,
		&painJSON, &interestsJSON, &triggersJSON, &lead.RelevanceScore,
		&lead.Source, &tagsJSON, &lead.CreatedAt, &lead.UpdatedAt, &lead.LastEnrichedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(profileJSON, &lead.Profile); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(activityJSON, &lead.RecentActivity); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(intelJSON, &lead.CompanyIntel); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(painJSON, &lead.PainPoints); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(interestsJSON, &lead.Interests); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(triggersJSON, &lead.TriggerEvents); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(tagsJSON, &lead.Tags); err != nil {
		return nil, err
	}

	return &lead, nil
}

// unmarshalJSONB decodes a JSONB column, treating NULL as absent.
func unmarshalJSONB(data []byte, target any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, target)
}
