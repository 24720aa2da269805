package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewStores binds every postgres repository to q.
func NewStores(q Querier) Stores {
	return Stores{
		Cases:         NewCaseRepository(q),
		Assignments:   NewAssignmentRepository(q),
		Documentation: NewDocumentationRepository(q),
		Replies:       NewReplyRepository(q),
		Notifications: NewExternalNotificationRepository(q),
		Handlers:      NewHandlerRepository(q),
		Stats:         NewStatsRepository(q),
	}
}

type pgUnitOfWork struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewUnitOfWork returns a postgres-backed unit of work. lockTimeout bounds
// how long a second writer waits on a locked case row before failing with
// a lock_not_available error.
func NewUnitOfWork(pool *pgxpool.Pool, lockTimeout time.Duration) UnitOfWork {
	return &pgUnitOfWork{pool: pool, lockTimeout: lockTimeout}
}

func (u *pgUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if u.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(ctx, NewStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// sqlStateInvalidText is raised when a lookup key cannot be cast to the
// column type, e.g. a malformed UUID. Such a key matches no row.
const sqlStateInvalidText = "22P02"

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateInvalidText {
		return ErrNotFound
	}
	return err
}
