package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-architect/internal/types"
)

// CreateFollowUp inserts a follow-up for a campaign and fills in its
// generated ID and timestamp.
func (db *DB) CreateFollowUp(ctx context.Context, followUp *types.FollowUp) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO follow_ups (campaign_id, sequence_number, subject_line, email_body, scheduled_for, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		followUp.CampaignID, followUp.SequenceNumber, followUp.SubjectLine,
		followUp.EmailBody, followUp.ScheduledFor, followUp.Status,
	).Scan(&followUp.ID, &followUp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	return nil
}

// ListFollowUps retrieves all follow-ups for a campaign in sequence order.
func (db *DB) ListFollowUps(ctx context.Context, campaignID uuid.UUID) ([]types.FollowUp, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, campaign_id, sequence_number, subject_line, email_body,
		 scheduled_for, sent_at, status, created_at
		 FROM follow_ups WHERE campaign_id = $1 ORDER BY sequence_number ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	defer rows.Close()

	var followUps []types.FollowUp
	for rows.Next() {
		var f types.FollowUp
		if err := rows.Scan(&f.ID, &f.CampaignID, &f.SequenceNumber, &f.SubjectLine,
			&f.EmailBody, &f.ScheduledFor, &f.SentAt, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		followUps = append(followUps, f)
	}
	return followUps, nil
}

// GetFollowUp retrieves a follow-up by ID. Returns nil when not found.
func (db *DB) GetFollowUp(ctx context.Context, id uuid.UUID) (*types.FollowUp, error) {
	var f types.FollowUp
	err := db.pool.QueryRow(ctx,
		`SELECT id, campaign_id, sequence_number, subject_line, email_body,
		 scheduled_for, sent_at, status, created_at
		 FROM follow_ups WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.CampaignID, &f.SequenceNumber, &f.SubjectLine,
		&f.EmailBody, &f.ScheduledFor, &f.SentAt, &f.Status, &f.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}
	return &f, nil
}

// MarkFollowUpSent sets a follow-up to sent and stamps sent_at.
func (db *DB) MarkFollowUpSent(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE follow_ups SET status = 'sent', sent_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark follow-up sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Resource: "follow-up", ID: id.String()}
	}
	return nil
}
