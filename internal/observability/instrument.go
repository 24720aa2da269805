package observability

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// OutcomeOK labels operations that returned no error.
const OutcomeOK = "ok"

// Instrumenter wraps workflow operations with start/end logging and metrics.
type Instrumenter struct {
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewInstrumenter builds an instrumenter. Either argument may be nil.
func NewInstrumenter(logger *zap.Logger, metrics *Metrics) *Instrumenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumenter{logger: logger, metrics: metrics, now: time.Now}
}

// Instrument runs fn and records its duration and outcome. The outcome is
// the error code of the returned error, or OutcomeOK. The error is returned
// unchanged.
func (i *Instrumenter) Instrument(ctx context.Context, operation, caseID string, fn func(ctx context.Context) error) error {
	if i == nil {
		return fn(ctx)
	}
	fields := []zap.Field{zap.String("operation", operation)}
	if caseID != "" {
		fields = append(fields, zap.String("case_id", caseID))
	}

	start := i.now()
	i.logger.Debug("workflow operation started", fields...)

	err := fn(ctx)
	duration := i.now().Sub(start)

	outcome := OutcomeOK
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	i.metrics.RecordOperation(operation, outcome, duration)

	fields = append(fields, zap.String("outcome", outcome), zap.Duration("duration", duration))
	switch {
	case err == nil:
		i.logger.Info("workflow operation completed", fields...)
	case outcome == apperrors.CodeInternal:
		i.logger.Error("workflow operation failed", append(fields, zap.Error(err))...)
	default:
		i.logger.Warn("workflow operation rejected", append(fields, zap.Error(err))...)
	}
	return err
}
