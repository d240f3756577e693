// Package workflow owns the complaint status lifecycle. The transition graph
// is data, not code: operations can swap in a stricter table without touching
// the services that apply transitions.
package workflow

import "brototype.com/complaintdesk/internal/model"

// Transitions maps a current status to the set of statuses it may move to.
type Transitions map[model.Status]map[model.Status]bool

// DefaultTransitions permits every transition between valid statuses for an
// authorized actor. Matches observed production behavior; tighten via config,
// not by editing callers.
func DefaultTransitions() Transitions {
	all := []model.Status{
		model.StatusOpen,
		model.StatusInProgress,
		model.StatusResolved,
		model.StatusClosed,
	}

	t := make(Transitions, len(all))
	for _, from := range all {
		t[from] = make(map[model.Status]bool, len(all))
		for _, to := range all {
			if from != to {
				t[from][to] = true
			}
		}
	}
	return t
}

// Allowed reports whether moving from one status to another is permitted.
// A no-op transition is always allowed.
func (t Transitions) Allowed(from, to model.Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	targets, ok := t[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Allow adds a single edge to the table.
func (t Transitions) Allow(from, to model.Status) {
	if t[from] == nil {
		t[from] = make(map[model.Status]bool)
	}
	t[from][to] = true
}

// Forbid removes a single edge from the table.
func (t Transitions) Forbid(from, to model.Status) {
	if t[from] != nil {
		delete(t[from], to)
	}
}
