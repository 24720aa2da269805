// Package broker relays committed workflow events to external messaging
// systems.
package broker

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/case-workflow/internal/events"
)

// Meta describes an envelope. ID is the domain event id, so downstream
// consumers can deduplicate redeliveries.
type Meta struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Producer      string    `json:"producer"`
	Time          time.Time `json:"time"`
	Type          string    `json:"type"`
}

// Envelope is the wire format shared by every relay.
type Envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope wraps event. The case id doubles as the correlation id.
func NewEnvelope(producer string, event events.Event) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Meta: Meta{
			ID:            event.ID,
			CorrelationID: event.CaseID,
			Producer:      producer,
			Time:          event.Timestamp,
			Type:          string(event.Type),
		},
		Data: data,
	}, nil
}

// RoutingKey maps an event type to a topic routing key.
func RoutingKey(t events.EventType) string {
	return "case." + string(t)
}
