package harvest

import (
	"fmt"

	"github.com/pentol/backend/internal/domain/shared"
)

// Status is the approval state of a harvest record
type Status string

const (
	StatusDraft     Status = "draft"     // Recorded in the field, not yet sent for review
	StatusSubmitted Status = "submitted" // Waiting in the approval queue
	StatusApproved  Status = "approved"  // Accepted; eligible for SPB batching
	StatusRejected  Status = "rejected"  // Refused by a reviewer
)

// IsValid checks if the Status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSubmitted
	case StatusSubmitted:
		return target == StatusApproved || target == StatusRejected
	}
	return false
}

// ValidateTransition returns an invalid-state error for disallowed transitions
func ValidateTransition(from, to Status) error {
	if !from.IsValid() || !to.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown status transition %q -> %q", from, to))
	}
	if !from.CanTransitionTo(to) {
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot move harvest record from %s to %s", from, to),
		).WithDetail("from", from.String()).WithDetail("to", to.String())
	}
	return nil
}
