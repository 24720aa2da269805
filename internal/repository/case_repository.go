package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-workflow/internal/domain"
)

const caseColumns = `id, subject, description, customer_id, motive_id, category, details, state,
               created_at, updated_at, closed_at`

type caseRepository struct {
	q Querier
}

// NewCaseRepository instantiates repository.
func NewCaseRepository(q Querier) CaseRepository {
	return &caseRepository{q: q}
}

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO cases (id, subject, description, customer_id, motive_id, category, details, state, created_at, updated_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.q.Exec(ctx, query,
		c.ID,
		c.Subject,
		c.Description,
		c.CustomerID,
		c.MotiveID,
		c.Category,
		c.Details,
		c.State,
		c.CreatedAt,
		c.UpdatedAt,
		c.ClosedAt,
	)
	return err
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET subject=$1, description=$2, details=$3, state=$4, closed_at=$5, updated_at=$6
        WHERE id=$7`
	cmd, err := r.q.Exec(ctx, query,
		c.Subject,
		c.Description,
		c.Details,
		c.State,
		c.ClosedAt,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetForUpdate locks the case row for the rest of the transaction. Only
// meaningful when the repository is bound to a pgx.Tx.
func (r *caseRepository) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) ListResolved(ctx context.Context, category domain.CaseCategory, from, to time.Time) ([]domain.Case, error) {
	query := `SELECT ` + caseColumns + `
             FROM cases
             WHERE category=$1 AND state=$2 AND closed_at >= $3 AND closed_at < $4
             ORDER BY closed_at ASC`
	rows, err := r.q.Query(ctx, query, category, domain.CaseStateClosed, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	c, err := scanCase(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func scanCase(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID,
		&c.Subject,
		&c.Description,
		&c.CustomerID,
		&c.MotiveID,
		&c.Category,
		&c.Details,
		&c.State,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCases(rows pgx.Rows) ([]domain.Case, error) {
	var result []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
