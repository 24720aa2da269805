package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/config"
	"github.com/spec-kit/case-workflow/internal/events"
	"github.com/spec-kit/case-workflow/internal/service"
)

type subscriptions struct {
	names []string
}

func (s *subscriptions) Publish(context.Context, events.Event) error { return nil }

func (s *subscriptions) Subscribe(name string, _ events.EventHandler, _ ...events.EventType) {
	s.names = append(s.names, name)
}

type fakeRelay struct {
	wrapped bool
}

func (f *fakeRelay) Register(d events.Dispatcher, wrap func(string, events.EventHandler) events.EventHandler) {
	f.wrapped = wrap != nil
	d.Subscribe("fake", func(context.Context, events.Event) error { return nil })
}

type noopClaimer struct{}

func (noopClaimer) Claim(context.Context, string) (bool, error) { return true, nil }
func (noopClaimer) Release(context.Context, string) error       { return nil }

func TestStartConsumersRegistersEverything(t *testing.T) {
	d := &subscriptions{}
	relay := &fakeRelay{}
	notifications := service.NewNotificationService(zap.NewNop(), config.NotificationConfig{})

	StartConsumers(d, noopClaimer{}, zap.NewNop(), notifications, relay, nil)

	assert.Equal(t, []string{service.ConsumerNotifications, service.ConsumerSurvey, "fake"}, d.names)
	assert.True(t, relay.wrapped)
}

func TestDedupWrapperNilClaimer(t *testing.T) {
	assert.Nil(t, DedupWrapper(nil, zap.NewNop()))
}
