package domain

import "time"

// HandlerKind differentiates who can hold a case.
type HandlerKind string

const (
	HandlerKindAgent        HandlerKind = "AGENT"
	HandlerKindBackOffice   HandlerKind = "BACK_OFFICE"
	HandlerKindExternalArea HandlerKind = "EXTERNAL_AREA"
)

// Handler is an employee or external area eligible to own cases.
type Handler struct {
	ID       string
	Name     string
	Kind     HandlerKind
	PoolID   string
	Load     int
	Capacity int
	Active   bool
}

// Assignment is a time-bounded ownership record linking a case to a handler.
// EndedAt is nil while the assignment is the case's current one.
type Assignment struct {
	ID        string
	CaseID    string
	HandlerID string
	StartedAt time.Time
	EndedAt   *time.Time
}

// Active reports whether the assignment is the current handler slot.
func (a *Assignment) Active() bool {
	return a.EndedAt == nil
}
