package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type assignmentRepository struct {
	q Querier
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(q Querier) AssignmentRepository {
	return &assignmentRepository{q: q}
}

func (r *assignmentRepository) GetActive(ctx context.Context, caseID string) (*domain.Assignment, error) {
	const query = `
        SELECT id, case_id, handler_id, started_at, ended_at
        FROM assignments WHERE case_id=$1 AND ended_at IS NULL`
	var a domain.Assignment
	err := r.q.QueryRow(ctx, query, caseID).Scan(&a.ID, &a.CaseID, &a.HandlerID, &a.StartedAt, &a.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) Close(ctx context.Context, assignmentID string, endedAt time.Time) error {
	const query = `UPDATE assignments SET ended_at=$1 WHERE id=$2 AND ended_at IS NULL`
	cmd, err := r.q.Exec(ctx, query, endedAt, assignmentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Open relies on the partial unique index on (case_id) WHERE ended_at IS
// NULL: inserting a second active row for a case fails instead of
// duplicating the handler slot.
func (r *assignmentRepository) Open(ctx context.Context, caseID, handlerID string, startedAt time.Time) (*domain.Assignment, error) {
	a := &domain.Assignment{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		HandlerID: handlerID,
		StartedAt: startedAt,
	}
	const query = `
        INSERT INTO assignments (id, case_id, handler_id, started_at)
        VALUES ($1,$2,$3,$4)`
	if _, err := r.q.Exec(ctx, query, a.ID, a.CaseID, a.HandlerID, a.StartedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *assignmentRepository) ListByCase(ctx context.Context, caseID string) ([]domain.Assignment, error) {
	const query = `
        SELECT id, case_id, handler_id, started_at, ended_at
        FROM assignments WHERE case_id=$1 ORDER BY started_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.CaseID, &a.HandlerID, &a.StartedAt, &a.EndedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
