// Package memory keeps every store in process memory. A unit of work runs
// against a private copy of the state and swaps it in on success, so a
// failed operation leaves nothing behind. Writers are serialized, which
// gives the same guarantee as a row lock on every case at once.
package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/case-workflow/internal/domain"
	"github.com/spec-kit/case-workflow/internal/repository"
)

type state struct {
	cases         map[string]domain.Case
	assignments   []domain.Assignment
	docs          map[string]domain.Documentation
	replies       []domain.ManualResponse
	notifications []domain.ExternalNotification
	handlers      map[string]domain.Handler
	stats         []domain.DailyResolutionStat
}

func newState() *state {
	return &state{
		cases:    make(map[string]domain.Case),
		docs:     make(map[string]domain.Documentation),
		handlers: make(map[string]domain.Handler),
	}
}

func (s *state) clone() *state {
	out := &state{
		cases:         make(map[string]domain.Case, len(s.cases)),
		assignments:   make([]domain.Assignment, len(s.assignments)),
		docs:          make(map[string]domain.Documentation, len(s.docs)),
		replies:       append([]domain.ManualResponse(nil), s.replies...),
		notifications: make([]domain.ExternalNotification, len(s.notifications)),
		handlers:      make(map[string]domain.Handler, len(s.handlers)),
		stats:         append([]domain.DailyResolutionStat(nil), s.stats...),
	}
	for id, c := range s.cases {
		out.cases[id] = copyCase(c)
	}
	for i, a := range s.assignments {
		out.assignments[i] = copyAssignment(a)
	}
	for id, d := range s.docs {
		out.docs[id] = copyDocumentation(d)
	}
	for i, n := range s.notifications {
		out.notifications[i] = copyNotification(n)
	}
	for id, h := range s.handlers {
		out.handlers[id] = h
	}
	return out
}

// view abstracts how repositories reach the state: directly inside a unit
// of work, or through the store's locks outside one.
type view interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
}

type txView struct {
	st *state
}

func (v txView) read(fn func(st *state))              { fn(v.st) }
func (v txView) write(fn func(st *state) error) error { return fn(v.st) }

type liveView struct {
	s *Store
}

func (v liveView) read(fn func(st *state)) {
	v.s.stateMu.RLock()
	defer v.s.stateMu.RUnlock()
	fn(v.s.st)
}

func (v liveView) write(fn func(st *state) error) error {
	v.s.writeMu.Lock()
	defer v.s.writeMu.Unlock()
	draft := v.s.snapshot()
	if err := fn(draft); err != nil {
		return err
	}
	v.s.swap(draft)
	return nil
}

// Store is an in-memory implementation of every repository plus the unit of
// work.
type Store struct {
	writeMu sync.Mutex
	stateMu sync.RWMutex
	st      *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Do runs fn against a private copy of the state. The copy replaces the
// shared state only when fn returns nil.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	draft := s.snapshot()
	if err := fn(ctx, bind(txView{st: draft})); err != nil {
		return err
	}
	s.swap(draft)
	return nil
}

// Stores returns repositories that read committed state. Each write made
// through them commits on its own.
func (s *Store) Stores() repository.Stores {
	return bind(liveView{s: s})
}

// PutHandler inserts or replaces a handler.
func (s *Store) PutHandler(h domain.Handler) {
	_ = liveView{s: s}.write(func(st *state) error {
		st.handlers[h.ID] = h
		return nil
	})
}

// PutDailyStat appends a batch KPI snapshot.
func (s *Store) PutDailyStat(stat domain.DailyResolutionStat) {
	_ = liveView{s: s}.write(func(st *state) error {
		st.stats = append(st.stats, stat)
		return nil
	})
}

func (s *Store) snapshot() *state {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.st.clone()
}

func (s *Store) swap(next *state) {
	s.stateMu.Lock()
	s.st = next
	s.stateMu.Unlock()
}

func bind(v view) repository.Stores {
	return repository.Stores{
		Cases:         &caseRepository{v: v},
		Assignments:   &assignmentRepository{v: v},
		Documentation: &documentationRepository{v: v},
		Replies:       &replyRepository{v: v},
		Notifications: &notificationRepository{v: v},
		Handlers:      &handlerRepository{v: v},
		Stats:         &statsRepository{v: v},
	}
}

var _ repository.UnitOfWork = (*Store)(nil)
