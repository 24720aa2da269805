package events

import (
	"time"

	"github.com/spec-kit/case-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated   EventType = "case_created"
	EventCaseEscalated EventType = "case_escalated"
	EventCaseDerived   EventType = "case_derived"
	EventCaseReturned  EventType = "case_returned"
	EventCaseClosed    EventType = "case_closed"
)

// AllTypes lists every event type, for consumers subscribing to everything.
func AllTypes() []EventType {
	return []EventType{EventCaseCreated, EventCaseEscalated, EventCaseDerived, EventCaseReturned, EventCaseClosed}
}

// Actor identifies the employee that triggered an event.
type Actor struct {
	EmployeeID string `json:"employee_id"`
}

// Event represents a domain event emitted after a workflow commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	Category  domain.CaseCategory `json:"category"`
	HandlerID string              `json:"handler_id"`
}

// CaseEscalatedPayload payload.
type CaseEscalatedPayload struct {
	FromHandlerID string `json:"from_handler_id"`
	ToHandlerID   string `json:"to_handler_id"`
	PoolID        string `json:"pool_id"`
	Reason        string `json:"reason"`
}

// CaseDerivedPayload payload.
type CaseDerivedPayload struct {
	DestinationArea    string `json:"destination_area"`
	DestinationAddress string `json:"destination_address"`
	NotificationID     string `json:"notification_id"`
}

// CaseReturnedPayload payload.
type CaseReturnedPayload struct {
	NotificationID string `json:"notification_id,omitempty"`
}

// CaseClosedPayload payload.
type CaseClosedPayload struct {
	ClosedBy string    `json:"closed_by"`
	ClosedAt time.Time `json:"closed_at"`
}
