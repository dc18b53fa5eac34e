package deadletter

import (
	"context"
	"time"
)

// Repository persistence boundary for dead-letter entries.
type Repository interface {
	// Save persists an entry (insert or reschedule update).
	Save(ctx context.Context, entry *Entry) error

	// FindDue returns non-abandoned entries whose next retry time has passed.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*Entry, error)

	// FindByPaymentID returns the entry parked for the given payment, if any.
	FindByPaymentID(ctx context.Context, paymentID string) (*Entry, error)
}
