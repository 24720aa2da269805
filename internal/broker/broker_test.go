package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

type subscribeRecorder struct {
	name  string
	types []events.EventType
}

func (s *subscribeRecorder) Publish(context.Context, events.Event) error { return nil }

func (s *subscribeRecorder) Subscribe(name string, _ events.EventHandler, types ...events.EventType) {
	s.name = name
	s.types = types
}

var sampleEvent = events.Event{
	ID:        "evt-1",
	Type:      events.EventCaseDerived,
	CaseID:    "case-1",
	Actor:     events.Actor{EmployeeID: "bo-2"},
	Timestamp: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
	Payload: events.CaseDerivedPayload{
		DestinationArea:    "it",
		DestinationAddress: "it@areas.example.com",
	},
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope("case-workflow", sampleEvent)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", env.Meta.ID)
	assert.Equal(t, "case-1", env.Meta.CorrelationID)
	assert.Equal(t, "case_derived", env.Meta.Type)
	assert.Equal(t, "case-workflow", env.Meta.Producer)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &decoded))
	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "it@areas.example.com", payload["destination_address"])
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "case.case_closed", RoutingKey(events.EventCaseClosed))
}

func TestAuditStreamWritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	stream := newAuditStream(w, "case-workflow", zap.NewNop())

	require.NoError(t, stream.Handle(context.Background(), sampleEvent))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("case-1"), msg.Key)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("case_derived"), msg.Headers[0].Value)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "evt-1", env.Meta.ID)

	require.NoError(t, stream.Close())
	assert.True(t, w.closed)
}

func TestAuditStreamPropagatesWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	stream := newAuditStream(w, "case-workflow", zap.NewNop())
	assert.Error(t, stream.Handle(context.Background(), sampleEvent))
}

func TestAuditStreamRegistersForAllTypes(t *testing.T) {
	rec := &subscribeRecorder{}
	wrapped := ""
	stream := newAuditStream(&fakeWriter{}, "case-workflow", zap.NewNop())
	stream.Register(rec, func(name string, h events.EventHandler) events.EventHandler {
		wrapped = name
		return h
	})

	assert.Equal(t, ConsumerKafkaAudit, rec.name)
	assert.Equal(t, ConsumerKafkaAudit, wrapped)
	assert.ElementsMatch(t, events.AllTypes(), rec.types)
}
