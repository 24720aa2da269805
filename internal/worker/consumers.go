package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/events"
)

// Registrar is a consumer that subscribes itself to the dispatcher.
type Registrar interface {
	Register(dispatcher events.Dispatcher, wrap func(string, events.EventHandler) events.EventHandler)
}

// StartConsumers registers every after-commit consumer on dispatcher. Each
// handler is wrapped for deduplication when claimer is non-nil.
func StartConsumers(dispatcher events.Dispatcher, claimer events.Claimer, logger *zap.Logger, consumers ...Registrar) {
	if dispatcher == nil {
		return
	}
	wrap := DedupWrapper(claimer, logger)
	for _, consumer := range consumers {
		if consumer == nil {
			continue
		}
		consumer.Register(dispatcher, wrap)
	}
}

// DedupWrapper returns a handler decorator bound to claimer, or nil when
// claimer is nil.
func DedupWrapper(claimer events.Claimer, logger *zap.Logger) func(string, events.EventHandler) events.EventHandler {
	if claimer == nil {
		return nil
	}
	return func(consumer string, h events.EventHandler) events.EventHandler {
		return events.Deduplicate(claimer, consumer, h, logger)
	}
}
