package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/repository"
)

type caseRepository struct{ v view }

func (r *caseRepository) Create(_ context.Context, c *domain.Case) error {
	return r.v.write(func(st *state) error {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, exists := st.cases[c.ID]; exists {
			return fmt.Errorf("case %s already exists", c.ID)
		}
		st.cases[c.ID] = copyCase(*c)
		return nil
	})
}

func (r *caseRepository) Update(_ context.Context, c *domain.Case) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.cases[c.ID]; !ok {
			return repository.ErrNotFound
		}
		st.cases[c.ID] = copyCase(*c)
		return nil
	})
}

func (r *caseRepository) GetByID(_ context.Context, id string) (*domain.Case, error) {
	var (
		out *domain.Case
		err error
	)
	r.v.read(func(st *state) {
		c, ok := st.cases[id]
		if !ok {
			err = repository.ErrNotFound
			return
		}
		cp := copyCase(c)
		out = &cp
	})
	return out, err
}

// GetForUpdate is a plain read: the unit of work already excludes other
// writers.
func (r *caseRepository) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	return r.GetByID(ctx, id)
}

func (r *caseRepository) ListResolved(_ context.Context, category domain.CaseCategory, from, to time.Time) ([]domain.Case, error) {
	var out []domain.Case
	r.v.read(func(st *state) {
		for _, c := range st.cases {
			if c.Category != category || c.State != domain.CaseStateClosed || c.ClosedAt == nil {
				continue
			}
			if c.ClosedAt.Before(from) || !c.ClosedAt.Before(to) {
				continue
			}
			out = append(out, copyCase(c))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClosedAt.Before(*out[j].ClosedAt)
	})
	return out, nil
}

type assignmentRepository struct{ v view }

func (r *assignmentRepository) GetActive(_ context.Context, caseID string) (*domain.Assignment, error) {
	var out *domain.Assignment
	r.v.read(func(st *state) {
		for _, a := range st.assignments {
			if a.CaseID == caseID && a.EndedAt == nil {
				cp := copyAssignment(a)
				out = &cp
				return
			}
		}
	})
	return out, nil
}

func (r *assignmentRepository) Close(_ context.Context, assignmentID string, endedAt time.Time) error {
	return r.v.write(func(st *state) error {
		for i := range st.assignments {
			if st.assignments[i].ID == assignmentID && st.assignments[i].EndedAt == nil {
				ended := endedAt
				st.assignments[i].EndedAt = &ended
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

func (r *assignmentRepository) Open(_ context.Context, caseID, handlerID string, startedAt time.Time) (*domain.Assignment, error) {
	a := domain.Assignment{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		HandlerID: handlerID,
		StartedAt: startedAt,
	}
	err := r.v.write(func(st *state) error {
		for _, existing := range st.assignments {
			if existing.CaseID == caseID && existing.EndedAt == nil {
				return fmt.Errorf("case %s already has active assignment %s", caseID, existing.ID)
			}
		}
		st.assignments = append(st.assignments, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) ListByCase(_ context.Context, caseID string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	r.v.read(func(st *state) {
		for _, a := range st.assignments {
			if a.CaseID == caseID {
				out = append(out, copyAssignment(a))
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

type documentationRepository struct{ v view }

func (r *documentationRepository) Save(_ context.Context, doc *domain.Documentation) error {
	return r.v.write(func(st *state) error {
		if existing, ok := st.docs[doc.AssignmentID]; ok {
			doc.ID = existing.ID
			doc.CreatedAt = existing.CreatedAt
		} else if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		st.docs[doc.AssignmentID] = copyDocumentation(*doc)
		return nil
	})
}

func (r *documentationRepository) GetForAssignment(_ context.Context, assignmentID string) (*domain.Documentation, error) {
	var out *domain.Documentation
	r.v.read(func(st *state) {
		if d, ok := st.docs[assignmentID]; ok {
			cp := copyDocumentation(d)
			out = &cp
		}
	})
	return out, nil
}

type replyRepository struct{ v view }

func (r *replyRepository) Create(_ context.Context, reply *domain.ManualResponse) error {
	return r.v.write(func(st *state) error {
		if reply.ID == "" {
			reply.ID = uuid.NewString()
		}
		st.replies = append(st.replies, *reply)
		return nil
	})
}

func (r *replyRepository) HasManualResponse(_ context.Context, caseID string) (bool, error) {
	found := false
	r.v.read(func(st *state) {
		for _, reply := range st.replies {
			if reply.CaseID == caseID {
				found = true
				return
			}
		}
	})
	return found, nil
}

type notificationRepository struct{ v view }

func (r *notificationRepository) Save(_ context.Context, n *domain.ExternalNotification) error {
	return r.v.write(func(st *state) error {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		st.notifications = append(st.notifications, copyNotification(*n))
		return nil
	})
}

func (r *notificationRepository) LatestForCase(_ context.Context, caseID string) (*domain.ExternalNotification, error) {
	var out *domain.ExternalNotification
	r.v.read(func(st *state) {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			if st.notifications[i].CaseID == caseID {
				cp := copyNotification(st.notifications[i])
				out = &cp
				return
			}
		}
	})
	return out, nil
}

func (r *notificationRepository) RecordResponse(_ context.Context, id, response string, at time.Time) error {
	return r.v.write(func(st *state) error {
		for i := range st.notifications {
			if st.notifications[i].ID == id {
				resp, respondedAt := response, at
				st.notifications[i].Response = &resp
				st.notifications[i].RespondedAt = &respondedAt
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

type handlerRepository struct{ v view }

func (r *handlerRepository) GetByID(_ context.Context, id string) (*domain.Handler, error) {
	var (
		out *domain.Handler
		err error
	)
	r.v.read(func(st *state) {
		h, ok := st.handlers[id]
		if !ok {
			err = repository.ErrNotFound
			return
		}
		out = &h
	})
	return out, err
}

func (r *handlerRepository) ListPool(_ context.Context, poolID string) ([]domain.Handler, error) {
	var out []domain.Handler
	r.v.read(func(st *state) {
		for _, h := range st.handlers {
			if h.PoolID == poolID {
				out = append(out, h)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *handlerRepository) AdjustLoad(_ context.Context, handlerID string, delta int) error {
	return r.v.write(func(st *state) error {
		h, ok := st.handlers[handlerID]
		if !ok {
			return repository.ErrNotFound
		}
		if delta > 0 && h.Capacity > 0 && h.Load+delta > h.Capacity {
			return repository.ErrCapacityExceeded
		}
		h.Load += delta
		if h.Load < 0 {
			h.Load = 0
		}
		st.handlers[handlerID] = h
		return nil
	})
}

type statsRepository struct{ v view }

func (r *statsRepository) ListDailyAverages(_ context.Context, category domain.CaseCategory, from, to time.Time) ([]domain.DailyResolutionStat, error) {
	var out []domain.DailyResolutionStat
	r.v.read(func(st *state) {
		for _, s := range st.stats {
			if s.Category == category && !s.Day.Before(from) && s.Day.Before(to) {
				out = append(out, s)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func copyCase(c domain.Case) domain.Case {
	if c.ClosedAt != nil {
		closed := *c.ClosedAt
		c.ClosedAt = &closed
	}
	if c.Details.Inquiry != nil {
		d := *c.Details.Inquiry
		c.Details.Inquiry = &d
	}
	if c.Details.Complaint != nil {
		d := *c.Details.Complaint
		c.Details.Complaint = &d
	}
	if c.Details.Request != nil {
		d := *c.Details.Request
		c.Details.Request = &d
	}
	return c
}

func copyAssignment(a domain.Assignment) domain.Assignment {
	if a.EndedAt != nil {
		ended := *a.EndedAt
		a.EndedAt = &ended
	}
	return a
}

func copyDocumentation(d domain.Documentation) domain.Documentation {
	if d.ArticleID != nil {
		article := *d.ArticleID
		d.ArticleID = &article
	}
	return d
}

func copyNotification(n domain.ExternalNotification) domain.ExternalNotification {
	if n.Response != nil {
		resp := *n.Response
		n.Response = &resp
	}
	if n.RespondedAt != nil {
		at := *n.RespondedAt
		n.RespondedAt = &at
	}
	return n
}
