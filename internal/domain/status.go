// Package domain holds the interview aggregate and its state machine.
//
// Valid status graph:
//
//	proposed ──► confirmed ──► completed
//	    │            │    └──► no-show
//	    └────────────┴──────► cancelled
//
// cancelled, completed and no-show are terminal.
package domain

import "fmt"

type Status string

const (
	StatusProposed  Status = "proposed"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no-show"
)

var allStatuses = []Status{StatusProposed, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow}

// validTransitions lists every allowed (from → to) pair. Terminal states have no entry.
var validTransitions = map[Status][]Status{
	StatusProposed:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	for _, known := range allStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown interview status %q", s)
}

func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesOf returns every status that may transition to `to`, in declaration order.
// Stores use it as the guard of the conditional write.
func SourcesOf(to Status) []Status {
	var out []Status
	for _, from := range allStatuses {
		if IsTransitionAllowed(from, to) {
			out = append(out, from)
		}
	}
	return out
}

func (s Status) IsTerminal() bool {
	_, ok := validTransitions[s]
	return !ok
}

// IsActive reports whether the interview still occupies its application's single active slot.
func (s Status) IsActive() bool {
	return s == StatusProposed || s == StatusConfirmed
}

// HasConfirmedTime reports whether a record in status s must carry a confirmed time.
// Cancelled records keep whatever they had when they were cancelled.
func (s Status) HasConfirmedTime() bool {
	return s == StatusConfirmed || s == StatusCompleted || s == StatusNoShow
}
