package domain

import "time"

// CaseState enumerates lifecycle states for support cases.
type CaseState string

const (
	CaseStateOpen      CaseState = "OPEN"
	CaseStateEscalated CaseState = "ESCALATED"
	CaseStateDerived   CaseState = "DERIVED"
	CaseStateClosed    CaseState = "CLOSED"
)

// CaseCategory tags the category-specific payload carried by a case.
type CaseCategory string

const (
	CategoryInquiry         CaseCategory = "INQUIRY"
	CategoryComplaintSoft   CaseCategory = "COMPLAINT_SOFT"
	CategoryComplaintFormal CaseCategory = "COMPLAINT_FORMAL"
	CategoryRequest         CaseCategory = "REQUEST"
)

// Regulatory windows applied to formal complaints at creation.
const (
	FormalComplaintResponseWindow   = 30 * 24 * time.Hour
	FormalComplaintResolutionWindow = 60 * 24 * time.Hour
)

// Valid reports whether c is one of the known categories.
func (c CaseCategory) Valid() bool {
	switch c {
	case CategoryInquiry, CategoryComplaintSoft, CategoryComplaintFormal, CategoryRequest:
		return true
	}
	return false
}

// CaseCore holds the fields shared by every category.
type CaseCore struct {
	Subject     string
	Description string
	CustomerID  string
	MotiveID    string
}

// InquiryDetails is the payload for CategoryInquiry.
type InquiryDetails struct {
	Channel string `json:"channel,omitempty"`
}

// ComplaintDetails is the payload for both complaint categories. Deadlines
// are only set for formal complaints.
type ComplaintDetails struct {
	Severity           string     `json:"severity,omitempty"`
	ResponseDeadline   *time.Time `json:"response_deadline,omitempty"`
	ResolutionDeadline *time.Time `json:"resolution_deadline,omitempty"`
}

// RequestDetails is the payload for CategoryRequest.
type RequestDetails struct {
	RequestType string `json:"request_type,omitempty"`
}

// CaseDetails is the category-specific payload. Exactly one field is set and
// it always matches Case.Category.
type CaseDetails struct {
	Inquiry   *InquiryDetails   `json:"inquiry,omitempty"`
	Complaint *ComplaintDetails `json:"complaint,omitempty"`
	Request   *RequestDetails   `json:"request,omitempty"`
}

// Case is the aggregate for a support ticket moving through the workflow.
type Case struct {
	ID       string
	CaseCore
	Category  CaseCategory
	Details   CaseDetails
	State     CaseState
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
}

// NewInquiry builds an open inquiry case.
func NewInquiry(core CaseCore, details InquiryDetails, now time.Time) *Case {
	return newCase(core, CategoryInquiry, CaseDetails{Inquiry: &details}, now)
}

// NewSoftComplaint builds an open soft complaint case.
func NewSoftComplaint(core CaseCore, details ComplaintDetails, now time.Time) *Case {
	details.ResponseDeadline = nil
	details.ResolutionDeadline = nil
	return newCase(core, CategoryComplaintSoft, CaseDetails{Complaint: &details}, now)
}

// NewFormalComplaint builds an open formal complaint with its regulatory
// response and resolution deadlines computed from now.
func NewFormalComplaint(core CaseCore, details ComplaintDetails, now time.Time) *Case {
	response := now.Add(FormalComplaintResponseWindow)
	resolution := now.Add(FormalComplaintResolutionWindow)
	details.ResponseDeadline = &response
	details.ResolutionDeadline = &resolution
	return newCase(core, CategoryComplaintFormal, CaseDetails{Complaint: &details}, now)
}

// NewRequest builds an open request case.
func NewRequest(core CaseCore, details RequestDetails, now time.Time) *Case {
	return newCase(core, CategoryRequest, CaseDetails{Request: &details}, now)
}

func newCase(core CaseCore, category CaseCategory, details CaseDetails, now time.Time) *Case {
	return &Case{
		CaseCore:  core,
		Category:  category,
		Details:   details,
		State:     CaseStateOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsClosed reports whether the case reached its terminal state.
func (c *Case) IsClosed() bool {
	return c.State == CaseStateClosed
}

// ResolutionMinutes returns the open-to-close duration in minutes.
// ok is false while the case is still open.
func (c *Case) ResolutionMinutes() (minutes float64, ok bool) {
	if c.ClosedAt == nil {
		return 0, false
	}
	return c.ClosedAt.Sub(c.CreatedAt).Minutes(), true
}
