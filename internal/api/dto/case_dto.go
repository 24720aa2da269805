package dto

import (
	"time"

	"github.com/spec-kit/case-workflow/internal/domain"
)

// CreateCaseRequest payload. The creating agent is taken from the token
// unless a supervisor names one explicitly.
type CreateCaseRequest struct {
	Category    domain.CaseCategory `json:"category"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	CustomerID  string              `json:"customer_id"`
	MotiveID    string              `json:"motive_id"`
	AgentID     string              `json:"agent_id"`
	Channel     string              `json:"channel"`
	Severity    string              `json:"severity"`
	RequestType string              `json:"request_type"`
}

// EscalateRequest payload. An empty pool_id falls back to the configured
// back-office pool.
type EscalateRequest struct {
	PoolID string `json:"pool_id"`
	Reason string `json:"reason"`
}

// DeriveRequest payload.
type DeriveRequest struct {
	AreaID string `json:"area_id"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

// ExternalResponseRequest payload.
type ExternalResponseRequest struct {
	Response string `json:"response"`
}

// DocumentationRequest payload.
type DocumentationRequest struct {
	Problem   string  `json:"problem"`
	Solution  string  `json:"solution"`
	ArticleID *string `json:"article_id"`
}

// ManualResponseRequest payload.
type ManualResponseRequest struct {
	Body string `json:"body"`
}

// CaseSummary response.
type CaseSummary struct {
	ID          string              `json:"id"`
	Category    domain.CaseCategory `json:"category"`
	State       domain.CaseState    `json:"state"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	CustomerID  string              `json:"customer_id"`
	MotiveID    string              `json:"motive_id,omitempty"`
	Details     domain.CaseDetails  `json:"details"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	ClosedAt    *time.Time          `json:"closed_at,omitempty"`
}

// AssignmentResponse describes one ownership slot.
type AssignmentResponse struct {
	ID        string     `json:"id"`
	HandlerID string     `json:"handler_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// DocumentationResponse describes the documentation of an assignment.
type DocumentationResponse struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	Problem      string    `json:"problem"`
	Solution     string    `json:"solution"`
	ArticleID    *string   `json:"article_id,omitempty"`
	AuthorID     string    `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CaseDetailResponse provides the case with its assignment history.
type CaseDetailResponse struct {
	CaseSummary
	Active        *AssignmentResponse    `json:"active_assignment,omitempty"`
	History       []AssignmentResponse   `json:"assignments"`
	Documentation *DocumentationResponse `json:"documentation,omitempty"`
}

// NotificationResponse describes a derivation sent to an external area.
type NotificationResponse struct {
	ID                 string    `json:"id"`
	DestinationArea    string    `json:"destination_area"`
	DestinationAddress string    `json:"destination_address"`
	Reason             string    `json:"reason"`
	Detail             string    `json:"detail,omitempty"`
	SentAt             time.Time `json:"sent_at"`
}

// DeriveResponse bundles the derived case and its notification.
type DeriveResponse struct {
	Case         CaseSummary          `json:"case"`
	Notification NotificationResponse `json:"notification"`
}

// ManualResponseResponse describes a stored customer reply.
type ManualResponseResponse struct {
	ID       string    `json:"id"`
	AuthorID string    `json:"author_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// ClosureCheckResponse reports whether the case may be closed now.
type ClosureCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ComplianceResponse reports SLA compliance for one category and window.
type ComplianceResponse struct {
	Category         domain.CaseCategory `json:"category"`
	Mode             string              `json:"mode"`
	ThresholdMinutes int                 `json:"threshold_minutes"`
	Compliance       float64             `json:"compliance"`
	Samples          int                 `json:"samples"`
	From             time.Time           `json:"from"`
	To               time.Time           `json:"to"`
}

// HandlerResponse describes a pool member.
type HandlerResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Kind     domain.HandlerKind `json:"kind"`
	PoolID   string             `json:"pool_id"`
	Load     int                `json:"load"`
	Capacity int                `json:"capacity"`
}
