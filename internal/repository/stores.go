package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/case-workflow/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup by ID matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrCapacityExceeded is returned when a load increment would push a
	// handler past its capacity.
	ErrCapacityExceeded = errors.New("handler capacity exceeded")
)

// CaseRepository persists cases. GetForUpdate must hold the row lock until
// the surrounding unit of work ends.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Case, error)
	ListResolved(ctx context.Context, category domain.CaseCategory, from, to time.Time) ([]domain.Case, error)
}

// AssignmentRepository manages assignment history. GetActive returns nil,
// nil when the case has no open assignment.
type AssignmentRepository interface {
	GetActive(ctx context.Context, caseID string) (*domain.Assignment, error)
	Close(ctx context.Context, assignmentID string, endedAt time.Time) error
	Open(ctx context.Context, caseID, handlerID string, startedAt time.Time) (*domain.Assignment, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.Assignment, error)
}

// DocumentationRepository stores one documentation record per assignment.
// GetForAssignment returns nil, nil when none exists.
type DocumentationRepository interface {
	Save(ctx context.Context, doc *domain.Documentation) error
	GetForAssignment(ctx context.Context, assignmentID string) (*domain.Documentation, error)
}

// ReplyRepository exposes the reply subsystem's manual responses.
type ReplyRepository interface {
	Create(ctx context.Context, reply *domain.ManualResponse) error
	HasManualResponse(ctx context.Context, caseID string) (bool, error)
}

// ExternalNotificationRepository records derivations to external areas.
// LatestForCase returns nil, nil when the case was never derived.
type ExternalNotificationRepository interface {
	Save(ctx context.Context, n *domain.ExternalNotification) error
	LatestForCase(ctx context.Context, caseID string) (*domain.ExternalNotification, error)
	RecordResponse(ctx context.Context, id, response string, at time.Time) error
}

// HandlerRepository reads handler pools and maintains load counters.
type HandlerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Handler, error)
	ListPool(ctx context.Context, poolID string) ([]domain.Handler, error)
	AdjustLoad(ctx context.Context, handlerID string, delta int) error
}

// StatsRepository reads batch-computed KPI snapshots.
type StatsRepository interface {
	ListDailyAverages(ctx context.Context, category domain.CaseCategory, from, to time.Time) ([]domain.DailyResolutionStat, error)
}

// Stores bundles every repository bound to the same connection or
// transaction.
type Stores struct {
	Cases         CaseRepository
	Assignments   AssignmentRepository
	Documentation DocumentationRepository
	Replies       ReplyRepository
	Notifications ExternalNotificationRepository
	Handlers      HandlerRepository
	Stats         StatsRepository
}

// UnitOfWork runs fn atomically: every write made through the provided
// Stores commits together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
