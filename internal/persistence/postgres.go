package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/config"
	"github.com/spec-kit/case-workflow/internal/repository"
)

// ErrNoDSN is returned when the case store is asked to connect without a DSN.
var ErrNoDSN = errors.New("postgres: dsn is required")

// Postgres owns the pool behind the case store and hands out the
// transactional and read-only views the workflow runs on.
type Postgres struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgres connects the case store pool and verifies it answers.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("connected to postgres",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns),
		zap.Duration("lock_timeout", cfg.LockTimeout()),
		zap.String("application_name", poolCfg.ConnConfig.RuntimeParams["application_name"]),
	)
	return &Postgres{pool: pool, lockTimeout: cfg.LockTimeout()}, nil
}

// poolConfig turns the service settings into a pgx pool config. Sessions
// run in UTC so business-day windows line up with stored timestamps, and
// carry a session lock_timeout as a ceiling for writes outside a unit of
// work. The unit of work narrows it again per transaction.
func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrNoDSN
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = min(cfg.MinConns, poolCfg.MaxConns)
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	params := poolCfg.ConnConfig.RuntimeParams
	// A DSN that already names the application wins.
	if _, ok := params["application_name"]; !ok && cfg.ApplicationName != "" {
		params["application_name"] = cfg.ApplicationName
	}
	params["timezone"] = "UTC"
	if timeout := cfg.LockTimeout(); timeout > 0 {
		params["lock_timeout"] = strconv.FormatInt(timeout.Milliseconds(), 10)
	}

	return poolCfg, nil
}

// Migrate applies the schema files in dir.
func (p *Postgres) Migrate(ctx context.Context, dir string, logger *zap.Logger) error {
	return RunMigrations(ctx, p.pool, dir, logger)
}

// UnitOfWork returns the transactional view used by every workflow write.
func (p *Postgres) UnitOfWork() repository.UnitOfWork {
	return repository.NewUnitOfWork(p.pool, p.lockTimeout)
}

// Stores returns repositories bound to the pool for reads outside a
// transaction.
func (p *Postgres) Stores() repository.Stores {
	return repository.NewStores(p.pool)
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.pool.Ping(ctx)
}
