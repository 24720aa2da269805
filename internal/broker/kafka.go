package broker

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/events"
)

// ConsumerKafkaAudit is the subscription name of the audit stream writer.
const ConsumerKafkaAudit = "kafka-audit"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditStream appends every event to a Kafka topic keyed by case id, so
// one case's history stays ordered within a partition.
type AuditStream struct {
	writer   messageWriter
	producer string
	logger   *zap.Logger
}

// NewAuditStream builds a writer for topic on brokers.
func NewAuditStream(brokers []string, topic, producer string, logger *zap.Logger) *AuditStream {
	return newAuditStream(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}, producer, logger)
}

func newAuditStream(w messageWriter, producer string, logger *zap.Logger) *AuditStream {
	return &AuditStream{writer: w, producer: producer, logger: logger}
}

// Handle writes event to the topic. It satisfies events.EventHandler.
func (a *AuditStream) Handle(ctx context.Context, event events.Event) error {
	env, err := NewEnvelope(a.producer, event)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.CaseID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
		Time: event.Timestamp,
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	a.logger.Debug("sent audit event", zap.String("case_id", event.CaseID), zap.String("event_type", string(event.Type)))
	return nil
}

// Register subscribes the stream to every event type.
func (a *AuditStream) Register(dispatcher events.Dispatcher, wrap func(string, events.EventHandler) events.EventHandler) {
	handler := events.EventHandler(a.Handle)
	if wrap != nil {
		handler = wrap(ConsumerKafkaAudit, handler)
	}
	dispatcher.Subscribe(ConsumerKafkaAudit, handler, events.AllTypes()...)
}

// Close flushes and closes the writer.
func (a *AuditStream) Close() error {
	if a == nil || a.writer == nil {
		return nil
	}
	return a.writer.Close()
}
