package assignment

import (
	"context"
	"slices"
	"sort"

	"github.com/spec-kit/case-workflow/internal/domain"
	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

// PoolReader lists the handlers belonging to a pool.
type PoolReader interface {
	ListPool(ctx context.Context, poolID string) ([]domain.Handler, error)
}

// Policy picks one handler from candidates that already have spare capacity.
// Candidates arrive sorted by ID ascending; ok is false when none qualifies.
type Policy interface {
	Pick(candidates []domain.Handler) (domain.Handler, bool)
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(candidates []domain.Handler) (domain.Handler, bool)

// Pick calls f.
func (f PolicyFunc) Pick(candidates []domain.Handler) (domain.Handler, bool) {
	return f(candidates)
}

// LeastLoaded ranks by current load ascending, ties broken by ID ascending.
var LeastLoaded Policy = PolicyFunc(func(candidates []domain.Handler) (domain.Handler, bool) {
	if len(candidates) == 0 {
		return domain.Handler{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Load < best.Load {
			best = c
		}
	}
	return best, true
})

// FirstAvailable returns the lowest ID with spare capacity.
var FirstAvailable Policy = PolicyFunc(func(candidates []domain.Handler) (domain.Handler, bool) {
	if len(candidates) == 0 {
		return domain.Handler{}, false
	}
	return candidates[0], true
})

// PolicyByName resolves a configured policy name. Unknown names fall back to
// LeastLoaded.
func PolicyByName(name string) Policy {
	switch name {
	case "first_available":
		return FirstAvailable
	default:
		return LeastLoaded
	}
}

// Selector chooses the next handler for a pool. It only reads load
// counters; callers adjust them in the same unit of work as the assignment
// write so an aborted operation leaves loads untouched.
type Selector struct {
	pools PoolReader
}

// NewSelector constructs a selector over the given pool source.
func NewSelector(pools PoolReader) *Selector {
	return &Selector{pools: pools}
}

// SelectHandler returns the handler ID chosen by policy from poolID.
func (s *Selector) SelectHandler(ctx context.Context, poolID string, policy Policy) (string, error) {
	handler, err := s.Select(ctx, poolID, policy)
	if err != nil {
		return "", err
	}
	return handler.ID, nil
}

// Select is SelectHandler returning the full handler record.
func (s *Selector) Select(ctx context.Context, poolID string, policy Policy) (domain.Handler, error) {
	return SelectFrom(ctx, s.pools, poolID, policy)
}

// SelectFrom runs the selection against an explicit pool reader, typically
// one bound to an open transaction. Handlers listed in exclude are never
// chosen; a hand-off passes the current holder here.
func SelectFrom(ctx context.Context, pools PoolReader, poolID string, policy Policy, exclude ...string) (domain.Handler, error) {
	if policy == nil {
		policy = LeastLoaded
	}
	members, err := pools.ListPool(ctx, poolID)
	if err != nil {
		return domain.Handler{}, err
	}
	candidates := eligible(members, exclude)
	if len(candidates) == 0 {
		return domain.Handler{}, apperrors.NewNoHandlerAvailable(poolID)
	}
	chosen, ok := policy.Pick(candidates)
	if !ok {
		return domain.Handler{}, apperrors.NewNoHandlerAvailable(poolID)
	}
	return chosen, nil
}

func eligible(members []domain.Handler, exclude []string) []domain.Handler {
	out := make([]domain.Handler, 0, len(members))
	for _, m := range members {
		if !m.Active || slices.Contains(exclude, m.ID) {
			continue
		}
		if m.Capacity > 0 && m.Load >= m.Capacity {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
