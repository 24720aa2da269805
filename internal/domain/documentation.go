package domain

import "time"

// Documentation records the problem and solution written by the handler of
// one assignment. It is frozen once the case closes.
type Documentation struct {
	ID           string
	AssignmentID string
	CaseID       string
	Problem      string
	Solution     string
	ArticleID    *string
	AuthorID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ManualResponse is a human-authored reply sent to the customer.
type ManualResponse struct {
	ID       string
	CaseID   string
	AuthorID string
	Body     string
	SentAt   time.Time
}

// ExternalNotification is written once per derivation to an external area.
type ExternalNotification struct {
	ID                 string
	CaseID             string
	DestinationArea    string
	DestinationAddress string
	Reason             string
	Detail             string
	SentAt             time.Time
	Response           *string
	RespondedAt        *time.Time
}

// DailyResolutionStat is a batch-computed KPI snapshot: the average
// resolution time of the cases of one category closed on one day.
type DailyResolutionStat struct {
	Day            time.Time
	Category       CaseCategory
	AverageMinutes float64
	ResolvedCount  int
}
