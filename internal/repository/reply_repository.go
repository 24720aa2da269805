package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type replyRepository struct {
	q Querier
}

// NewReplyRepository builds repository.
func NewReplyRepository(q Querier) ReplyRepository {
	return &replyRepository{q: q}
}

func (r *replyRepository) Create(ctx context.Context, reply *domain.ManualResponse) error {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO manual_responses (id, case_id, author_id, body, sent_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.q.Exec(ctx, query, reply.ID, reply.CaseID, reply.AuthorID, reply.Body, reply.SentAt)
	return err
}

func (r *replyRepository) HasManualResponse(ctx context.Context, caseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM manual_responses WHERE case_id=$1)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, caseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
