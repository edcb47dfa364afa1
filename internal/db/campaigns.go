package db

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-architect/internal/types"
)

// campaignColumns is the select list shared by every campaign query.
const campaignColumns = `id, lead_id, subject_line, email_body, personalization_elements,
	COALESCE(model_used, ''), generation_metadata, status,
	sent_at, opened_at, clicked_at, replied_at,
	open_count, click_count, reply_received, COALESCE(reply_content, ''),
	COALESCE(variant, ''), COALESCE(test_group, ''), created_at, updated_at`

// CreateCampaign inserts a campaign and fills in its generated ID and
// timestamps.
func (db *DB) CreateCampaign(ctx context.Context, campaign *types.OutreachCampaign) error {
	elementsJSON, err := json.Marshal(campaign.PersonalizationElements)
	if err != nil {
		return fmt.Errorf("failed to marshal personalization elements: %w", err)
	}
	metadataJSON, err := json.Marshal(campaign.GenerationMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal generation metadata: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO campaigns (lead_id, subject_line, email_body, personalization_elements,
		 model_used, generation_metadata, status, variant, test_group)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		campaign.LeadID, campaign.SubjectLine, campaign.EmailBody, elementsJSON,
		campaign.ModelUsed, metadataJSON, campaign.Status, campaign.Variant, campaign.TestGroup,
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetCampaign retrieves a campaign by ID. Returns nil when not found.
func (db *DB) GetCampaign(ctx context.Context, id uuid.UUID) (*types.OutreachCampaign, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)

	campaign, err := scanCampaign(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

// CampaignFilters holds optional filters for listing campaigns.
type CampaignFilters struct {
	LeadID uuid.UUID
	Status types.CampaignStatus
	Limit  int
	Offset int
}

// buildCampaignsQuery assembles the filtered campaigns listing query.
func buildCampaignsQuery(filters CampaignFilters) (string, []any, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	builder := psql.Select(campaignColumns).
		From("campaigns").
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	if filters.LeadID != uuid.Nil {
		builder = builder.Where(sq.Eq{"lead_id": filters.LeadID})
	}
	if filters.Status != "" {
		builder = builder.Where(sq.Eq{"status": filters.Status})
	}

	return builder.ToSql()
}

// ListCampaigns retrieves campaigns matching the filters, newest first.
func (db *DB) ListCampaigns(ctx context.Context, filters CampaignFilters) ([]types.OutreachCampaign, error) {
	query, args, err := buildCampaignsQuery(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to build campaigns query: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []types.OutreachCampaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, *campaign)
	}
	return campaigns, nil
}

// UpdateCampaignStatus sets a campaign's status.
func (db *DB) UpdateCampaignStatus(ctx context.Context, id uuid.UUID, status types.CampaignStatus) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "campaign", ID: id.String()}
	}
	return nil
}

// MarkCampaignSent sets a campaign to sent and stamps sent_at.
func (db *DB) MarkCampaignSent(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE campaigns SET status = 'sent', sent_at = NOW(), updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark campaign sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "campaign", ID: id.String()}
	}
	return nil
}

// RecordOpen increments the open counter; the first open also stamps
// opened_at and advances the status.
func (db *DB) RecordOpen(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE campaigns SET open_count = open_count + 1,
		 opened_at = COALESCE(opened_at, NOW()),
		 status = CASE WHEN status = 'sent' THEN 'opened' ELSE status END,
		 updated_at = NOW()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to record open: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "campaign", ID: id.String()}
	}
	return nil
}

// RecordClick increments the click counter; the first click also stamps
// clicked_at and advances the status.
func (db *DB) RecordClick(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE campaigns SET click_count = click_count + 1,
		 clicked_at = COALESCE(clicked_at, NOW()),
		 status = CASE WHEN status IN ('sent', 'opened') THEN 'clicked' ELSE status END,
		 updated_at = NOW()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "campaign", ID: id.String()}
	}
	return nil
}

// RecordReply stores a reply and marks the campaign replied.
func (db *DB) RecordReply(ctx context.Context, id uuid.UUID, content string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE campaigns SET reply_received = TRUE, reply_content = $1,
		 replied_at = COALESCE(replied_at, NOW()), status = 'replied', updated_at = NOW()
		 WHERE id = $2`,
		content, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record reply: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "campaign", ID: id.String()}
	}
	return nil
}

// CampaignStats aggregates engagement across all campaigns.
type CampaignStats struct {
	Total     int     `json:"total"`
	Ready     int     `json:"ready"`
	Sent      int     `json:"sent"`
	Opened    int     `json:"opened"`
	Clicked   int     `json:"clicked"`
	Replied   int     `json:"replied"`
	OpenRate  float64 `json:"open_rate"`
	ReplyRate float64 `json:"reply_rate"`
}

// GetCampaignStats computes aggregate engagement statistics. A campaign
// counts as sent once sent_at is set, regardless of later status changes.
func (db *DB) GetCampaignStats(ctx context.Context) (*CampaignStats, error) {
	var stats CampaignStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		 COUNT(*) FILTER (WHERE status = 'ready'),
		 COUNT(*) FILTER (WHERE sent_at IS NOT NULL),
		 COUNT(*) FILTER (WHERE opened_at IS NOT NULL),
		 COUNT(*) FILTER (WHERE clicked_at IS NOT NULL),
		 COUNT(*) FILTER (WHERE reply_received)
		 FROM campaigns`,
	).Scan(&stats.Total, &stats.Ready, &stats.Sent, &stats.Opened, &stats.Clicked, &stats.Replied)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign stats: %w", err)
	}

	if stats.Sent > 0 {
		stats.OpenRate = float64(stats.Opened) / float64(stats.Sent)
		stats.ReplyRate = float64(stats.Replied) / float64(stats.Sent)
	}
	return &stats, nil
}

// scanCampaign reads one campaign row, decoding the JSONB columns.
func scanCampaign(row pgx.Row) (*types.OutreachCampaign, error) {
	var campaign types.OutreachCampaign
	var elementsJSON, metadataJSON []byte

	err := row.Scan(
		&campaign.ID, &campaign.LeadID, &campaign.SubjectLine, &campaign.EmailBody, &elementsJSON,
		&campaign.ModelUsed, &metadataJSON, &campaign.Status,
		&campaign.SentAt, &campaign.OpenedAt, &campaign.ClickedAt, &campaign.RepliedAt,
		&campaign.OpenCount, &campaign.ClickCount, &campaign.ReplyReceived, &campaign.ReplyContent,
		&campaign.Variant, &campaign.TestGroup, &campaign.CreatedAt, &campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(elementsJSON, &campaign.PersonalizationElements); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(metadataJSON, &campaign.GenerationMetadata); err != nil {
		return nil, err
	}

	return &campaign, nil
}
