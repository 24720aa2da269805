package events

import (
	"context"

	"go.uber.org/zap"
)

// Claimer records that a key has been processed. Claim returns false when
// the key was already claimed.
type Claimer interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Deduplicate wraps handler so a redelivered event is applied at most once
// per consumer. A failed handler releases its claim so the retry can run.
// When the claimer itself fails the event is processed anyway.
func Deduplicate(claimer Claimer, consumer string, handler EventHandler, logger *zap.Logger) EventHandler {
	if claimer == nil {
		return handler
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, event Event) error {
		key := "events:" + consumer + ":" + event.ID
		claimed, err := claimer.Claim(ctx, key)
		if err != nil {
			logger.Warn("dedup claim failed; processing without it",
				zap.String("consumer", consumer),
				zap.String("event_id", event.ID),
				zap.Error(err))
			return handler(ctx, event)
		}
		if !claimed {
			logger.Debug("duplicate event skipped",
				zap.String("consumer", consumer),
				zap.String("event_id", event.ID))
			return nil
		}
		if err := handler(ctx, event); err != nil {
			if relErr := claimer.Release(ctx, key); relErr != nil {
				logger.Warn("dedup release failed", zap.String("key", key), zap.Error(relErr))
			}
			return err
		}
		return nil
	}
}
