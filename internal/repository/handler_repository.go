package repository

import (
	"context"

	"github.com/spec-kit/case-workflow/internal/domain"
)

type handlerRepository struct {
	q Querier
}

// NewHandlerRepository builds repository.
func NewHandlerRepository(q Querier) HandlerRepository {
	return &handlerRepository{q: q}
}

func (r *handlerRepository) GetByID(ctx context.Context, id string) (*domain.Handler, error) {
	const query = `
        SELECT id, name, kind, pool_id, load, capacity, active_flag
        FROM handlers WHERE id=$1`
	var h domain.Handler
	err := r.q.QueryRow(ctx, query, id).Scan(&h.ID, &h.Name, &h.Kind, &h.PoolID, &h.Load, &h.Capacity, &h.Active)
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func (r *handlerRepository) ListPool(ctx context.Context, poolID string) ([]domain.Handler, error) {
	const query = `
        SELECT id, name, kind, pool_id, load, capacity, active_flag
        FROM handlers WHERE pool_id=$1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Handler
	for rows.Next() {
		var h domain.Handler
		if err := rows.Scan(&h.ID, &h.Name, &h.Kind, &h.PoolID, &h.Load, &h.Capacity, &h.Active); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// AdjustLoad applies delta to the handler's load counter. Decrements floor at
// zero; increments fail with ErrCapacityExceeded when capacity is set and
// would be exceeded.
func (r *handlerRepository) AdjustLoad(ctx context.Context, handlerID string, delta int) error {
	const query = `
        UPDATE handlers SET load = GREATEST(load + $1, 0)
        WHERE id=$2 AND (capacity = 0 OR $1 <= 0 OR load + $1 <= capacity)`
	cmd, err := r.q.Exec(ctx, query, delta, handlerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, handlerID); err != nil {
		return err
	}
	return ErrCapacityExceeded
}
