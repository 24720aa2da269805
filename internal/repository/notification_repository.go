package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type externalNotificationRepository struct {
	q Querier
}

// NewExternalNotificationRepository builds repository.
func NewExternalNotificationRepository(q Querier) ExternalNotificationRepository {
	return &externalNotificationRepository{q: q}
}

func (r *externalNotificationRepository) Save(ctx context.Context, n *domain.ExternalNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO external_notifications (id, case_id, destination_area, destination_address, reason, detail, sent_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(ctx, query,
		n.ID,
		n.CaseID,
		n.DestinationArea,
		n.DestinationAddress,
		n.Reason,
		n.Detail,
		n.SentAt,
	)
	return err
}

func (r *externalNotificationRepository) LatestForCase(ctx context.Context, caseID string) (*domain.ExternalNotification, error) {
	const query = `
        SELECT id, case_id, destination_area, destination_address, reason, detail, sent_at, response, responded_at
        FROM external_notifications WHERE case_id=$1
        ORDER BY sent_at DESC, id DESC LIMIT 1`
	var n domain.ExternalNotification
	err := r.q.QueryRow(ctx, query, caseID).Scan(
		&n.ID,
		&n.CaseID,
		&n.DestinationArea,
		&n.DestinationAddress,
		&n.Reason,
		&n.Detail,
		&n.SentAt,
		&n.Response,
		&n.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *externalNotificationRepository) RecordResponse(ctx context.Context, id, response string, at time.Time) error {
	const query = `UPDATE external_notifications SET response=$1, responded_at=$2 WHERE id=$3`
	cmd, err := r.q.Exec(ctx, query, response, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
