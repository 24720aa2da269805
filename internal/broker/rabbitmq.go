package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/events"
)

// ConsumerRabbit is the subscription name of the RabbitMQ relay.
const ConsumerRabbit = "rabbitmq-relay"

// RabbitPublisher forwards events to a durable topic exchange and waits for
// the broker to confirm each message.
type RabbitPublisher struct {
	conn     *amqp.Connection
	exchange string
	producer string
	logger   *zap.Logger
}

// NewRabbitPublisher dials url and declares exchange.
func NewRabbitPublisher(url, exchange, producer string, logger *zap.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("connected to rabbitmq", zap.String("exchange", exchange))
	return &RabbitPublisher{conn: conn, exchange: exchange, producer: producer, logger: logger}, nil
}

// Handle publishes event. It satisfies events.EventHandler.
func (p *RabbitPublisher) Handle(ctx context.Context, event events.Event) error {
	env, err := NewEnvelope(p.producer, event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := ch.Confirm(false); err != nil {
		return err
	}

	key := RoutingKey(event.Type)
	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     env.Meta.Time,
		Type:          env.Meta.Type,
		Body:          body,
	})
	if err != nil {
		return err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return errors.New("rabbitmq nacked message")
	}
	p.logger.Debug("published", zap.String("key", key), zap.String("exchange", p.exchange))
	return nil
}

// Register subscribes the publisher to every event type.
func (p *RabbitPublisher) Register(dispatcher events.Dispatcher, wrap func(string, events.EventHandler) events.EventHandler) {
	handler := events.EventHandler(p.Handle)
	if wrap != nil {
		handler = wrap(ConsumerRabbit, handler)
	}
	dispatcher.Subscribe(ConsumerRabbit, handler, events.AllTypes()...)
}

// Close closes the connection.
func (p *RabbitPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
