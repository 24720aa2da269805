// Package workflow holds the case state machine. The table is built once at
// package initialization and never mutated afterwards, so it is safe for
// concurrent readers without locking.
package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/case-workflow/internal/domain"
)

var allowedTransitions = buildTable(map[domain.CaseState][]domain.CaseState{
	domain.CaseStateOpen:      {domain.CaseStateEscalated, domain.CaseStateClosed},
	domain.CaseStateEscalated: {domain.CaseStateDerived, domain.CaseStateOpen, domain.CaseStateClosed},
	domain.CaseStateDerived:   {domain.CaseStateEscalated, domain.CaseStateClosed},
	domain.CaseStateClosed:    {},
})

func buildTable(edges map[domain.CaseState][]domain.CaseState) map[domain.CaseState]map[domain.CaseState]struct{} {
	table := make(map[domain.CaseState]map[domain.CaseState]struct{}, len(edges))
	for from, targets := range edges {
		set := make(map[domain.CaseState]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		table[from] = set
	}
	return table
}

// States returns every known state in a stable order.
func States() []domain.CaseState {
	return []domain.CaseState{
		domain.CaseStateOpen,
		domain.CaseStateEscalated,
		domain.CaseStateDerived,
		domain.CaseStateClosed,
	}
}

// IsValidTransition reports whether current may move to requested.
// A request to stay in the same state is never a transition.
func IsValidTransition(current, requested domain.CaseState) bool {
	if current == requested {
		return false
	}
	_, ok := allowedTransitions[current][requested]
	return ok
}

// AllowedTargets returns the states reachable from current, sorted.
func AllowedTargets(current domain.CaseState) []domain.CaseState {
	targets := make([]domain.CaseState, 0, len(allowedTransitions[current]))
	for to := range allowedTransitions[current] {
		targets = append(targets, to)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// ExplainRejection describes why current cannot move to requested. It
// returns an empty string when the transition is allowed.
func ExplainRejection(current, requested domain.CaseState) string {
	if IsValidTransition(current, requested) {
		return ""
	}
	if _, known := allowedTransitions[current]; !known {
		return fmt.Sprintf("unknown state %q", current)
	}
	if current == requested {
		return fmt.Sprintf("case is already %s", current)
	}
	targets := AllowedTargets(current)
	if len(targets) == 0 {
		return fmt.Sprintf("case is %s and accepts no further transitions", current)
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return fmt.Sprintf("cannot move from %s to %s; allowed: %s", current, requested, strings.Join(names, ", "))
}
