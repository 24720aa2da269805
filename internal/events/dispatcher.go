package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventHandler handles a published event. Handlers may be invoked more than
// once for the same event and must tolerate redelivery.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(name string, handler EventHandler, types ...EventType)
}

// DeliveryRecorder observes delivery outcomes per consumer.
type DeliveryRecorder interface {
	RecordDelivery(consumer, outcome string)
}

// ErrDispatcherClosed is returned by Publish after Shutdown.
var ErrDispatcherClosed = errors.New("event dispatcher closed")

// Options tunes the asynchronous dispatcher.
type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	Recorder    DeliveryRecorder
}

type subscription struct {
	name    string
	handler EventHandler
	types   map[EventType]struct{}
}

func (s subscription) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// AsyncDispatcher queues events and delivers them on worker goroutines.
// Publish never blocks on consumers; each consumer is retried up to
// MaxAttempts and a final failure is logged, never returned to the publisher.
type AsyncDispatcher struct {
	mu        sync.RWMutex
	listeners []subscription

	queue   chan Event
	opts    Options
	logger  *zap.Logger
	wg      sync.WaitGroup
	pending sync.WaitGroup

	stateMu   sync.RWMutex
	closing   bool
	closeOnce sync.Once
}

// NewAsyncDispatcher creates a dispatcher and starts its workers.
func NewAsyncDispatcher(opts Options, logger *zap.Logger) *AsyncDispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AsyncDispatcher{
		queue:  make(chan Event, opts.QueueSize),
		opts:   opts,
		logger: logger,
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Subscribe registers a named consumer for the given types, or for every
// type when none are given.
func (d *AsyncDispatcher) Subscribe(name string, handler EventHandler, types ...EventType) {
	sub := subscription{name: name, handler: handler, types: make(map[EventType]struct{}, len(types))}
	for _, t := range types {
		sub.types[t] = struct{}{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, sub)
}

// Publish enqueues the event for delivery and returns immediately. When the
// buffer is full the hand-off continues in the background.
func (d *AsyncDispatcher) Publish(_ context.Context, event Event) error {
	d.stateMu.RLock()
	if d.closing {
		d.stateMu.RUnlock()
		return ErrDispatcherClosed
	}
	d.pending.Add(1)
	d.stateMu.RUnlock()

	select {
	case d.queue <- event:
		d.pending.Done()
	default:
		go func() {
			defer d.pending.Done()
			d.queue <- event
		}()
	}
	return nil
}

// Shutdown stops accepting events, drains the queue and waits for workers
// until ctx expires.
func (d *AsyncDispatcher) Shutdown(ctx context.Context) error {
	d.stateMu.Lock()
	d.closing = true
	d.stateMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		d.closeOnce.Do(func() { close(d.queue) })
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *AsyncDispatcher) deliver(event Event) {
	d.mu.RLock()
	subs := make([]subscription, 0, len(d.listeners))
	for _, s := range d.listeners {
		if s.wants(event.Type) {
			subs = append(subs, s)
		}
	}
	d.mu.RUnlock()

	for _, sub := range subs {
		d.deliverTo(sub, event)
	}
}

func (d *AsyncDispatcher) deliverTo(sub subscription, event Event) {
	var err error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		err = d.invoke(sub, event)
		if err == nil {
			d.record(sub.name, "delivered")
			return
		}
		d.logger.Warn("event delivery failed",
			zap.String("consumer", sub.name),
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < d.opts.MaxAttempts {
			time.Sleep(d.opts.RetryDelay * time.Duration(attempt))
		}
	}
	d.record(sub.name, "failed")
	d.logger.Error("event delivery abandoned",
		zap.String("consumer", sub.name),
		zap.String("event_id", event.ID),
		zap.String("case_id", event.CaseID),
		zap.Error(err))
}

func (d *AsyncDispatcher) invoke(sub subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("consumer panicked")
			d.logger.Error("event consumer panic", zap.String("consumer", sub.name), zap.Any("panic", r))
		}
	}()
	return sub.handler(context.Background(), event)
}

func (d *AsyncDispatcher) record(consumer, outcome string) {
	if d.opts.Recorder != nil {
		d.opts.Recorder.RecordDelivery(consumer, outcome)
	}
}
