package deadletter

import (
	"time"
)

const (
	// MaxRetries scheduled retries before an entry is abandoned
	MaxRetries = 3
	// BaseRetryDelay delay before the first scheduled retry, doubling per retry
	BaseRetryDelay = time.Hour
)

// Entry a payment operation that exhausted its retry budget, parked for
// geometrically spaced reprocessing.
type Entry struct {
	entryID     string
	operation   string
	paymentID   string
	lastError   string
	retryCount  int
	nextRetryAt time.Time
	abandoned   bool
	resolved    bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewEntry creates a dead-letter entry with the first retry scheduled one
// base delay from now.
func NewEntry(entryID, operation, paymentID, lastError string, now time.Time) (*Entry, error) {
	if entryID == "" || operation == "" || paymentID == "" {
		return nil, ErrInvalidEntry
	}
	return &Entry{
		entryID:     entryID,
		operation:   operation,
		paymentID:   paymentID,
		lastError:   lastError,
		retryCount:  0,
		nextRetryAt: now.Add(BaseRetryDelay),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Restore rebuilds an entry from persisted state. Used by repositories only.
func Restore(entryID, operation, paymentID, lastError string, retryCount int, nextRetryAt time.Time, abandoned, resolved bool, createdAt, updatedAt time.Time) *Entry {
	return &Entry{
		entryID:     entryID,
		operation:   operation,
		paymentID:   paymentID,
		lastError:   lastError,
		retryCount:  retryCount,
		nextRetryAt: nextRetryAt,
		abandoned:   abandoned,
		resolved:    resolved,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// EntryID returns the entry id.
func (e *Entry) EntryID() string { return e.entryID }

// Operation returns the operation name that exhausted its retries.
func (e *Entry) Operation() string { return e.operation }

// PaymentID returns the affected payment id.
func (e *Entry) PaymentID() string { return e.paymentID }

// LastError returns the last underlying error message.
func (e *Entry) LastError() string { return e.lastError }

// RetryCount returns how many scheduled retries have run.
func (e *Entry) RetryCount() int { return e.retryCount }

// NextRetryAt returns when the entry is next due.
func (e *Entry) NextRetryAt() time.Time { return e.nextRetryAt }

// Abandoned reports whether the entry is permanently given up.
func (e *Entry) Abandoned() bool { return e.abandoned }

// Resolved reports whether the parked operation succeeded on a later attempt
// or was settled elsewhere.
func (e *Entry) Resolved() bool { return e.resolved }

// CreatedAt returns the creation timestamp.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (e *Entry) UpdatedAt() time.Time { return e.updatedAt }

// Due reports whether the entry should be reprocessed now.
func (e *Entry) Due(now time.Time) bool {
	return !e.abandoned && !e.resolved && !now.Before(e.nextRetryAt)
}

// Resolve closes the entry after a successful reprocessing attempt.
func (e *Entry) Resolve(now time.Time) {
	e.resolved = true
	e.updatedAt = now
}

// Reschedule records a failed reprocessing attempt. The delay doubles per
// retry (1h, 2h, 4h); after MaxRetries the entry is abandoned permanently.
func (e *Entry) Reschedule(lastError string, now time.Time) {
	e.retryCount++
	e.lastError = lastError
	e.updatedAt = now
	if e.retryCount >= MaxRetries {
		e.abandoned = true
		return
	}
	e.nextRetryAt = now.Add(BaseRetryDelay << e.retryCount)
}
