package payment

import (
	"fmt"
)

// Status canonical payment lifecycle status shared by all providers
type Status string

const (
	StatusPending      Status = "pending"       // created, not yet sent to a provider
	StatusAwaitingBank Status = "awaiting_bank" // accepted by the provider, waiting on the bank
	StatusProcessing   Status = "processing"    // being executed by the bank/PSP
	StatusCompleted    Status = "completed"     // settled
	StatusFailed       Status = "failed"        // rejected or errored terminally
	StatusCancelled    Status = "cancelled"     // cancelled before settlement
	StatusExpired      Status = "expired"       // provider session or transfer window expired
	StatusRefunded     Status = "refunded"      // settled and later refunded
	StatusUnknown      Status = "unknown"       // unrecognized provider vocabulary
)

// statusRank ordering of the forward lifecycle; terminals share a rank
var statusRank = map[Status]int{
	StatusPending:      0,
	StatusAwaitingBank: 1,
	StatusProcessing:   2,
	StatusCompleted:    3,
	StatusFailed:       3,
	StatusCancelled:    3,
	StatusExpired:      3,
	StatusRefunded:     4,
}

// NewStatus parses and validates a stored status string.
func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return st, nil
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether the status is part of the canonical vocabulary.
// StatusUnknown is a valid mapping result but never a valid stored status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAwaitingBank, StatusProcessing, StatusCompleted,
		StatusFailed, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further provider-driven progress is possible.
// completed is terminal but still admits the refund transition.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// The lifecycle is forward-only: pending → awaiting_bank → processing →
// {completed, failed, cancelled, expired}, with forward skips allowed
// (a webhook may report completed while the record is still awaiting_bank).
// completed → refunded is the only transition out of a terminal status.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StatusRefunded {
		return s == StatusCompleted
	}
	if s.IsTerminal() {
		return false
	}
	return statusRank[next] > statusRank[s]
}
