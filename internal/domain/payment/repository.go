package payment

import (
	"context"
	"database/sql"
	"time"
)

// Repository persistence boundary for payment records. The core depends only
// on this contract, not on a specific database.
type Repository interface {
	// Save persists a payment record (insert or update).
	Save(ctx context.Context, record *Record) error

	// SaveTx persists a payment record inside the given transaction.
	SaveTx(ctx context.Context, tx *sql.Tx, record *Record) error

	// FindByPaymentID returns the record for the given id.
	FindByPaymentID(ctx context.Context, paymentID string) (*Record, error)

	// FindByClientReference returns the record submitted under the given
	// caller reference, for idempotent resubmission.
	FindByClientReference(ctx context.Context, userID, clientReference string) (*Record, error)

	// FindByBatchID returns all member records of a bulk batch.
	FindByBatchID(ctx context.Context, batchID string) ([]*Record, error)

	// FindByStatusAndTimeRange returns records in the given status created
	// within [from, to), paginated.
	FindByStatusAndTimeRange(ctx context.Context, status Status, from, to time.Time, limit, offset int) ([]*Record, error)

	// UpdateStatusCAS transitions paymentID from expected to next only if the
	// stored status still equals expected. Returns ErrStatusConflict when the
	// compare-and-set loses.
	UpdateStatusCAS(ctx context.Context, paymentID string, expected, next Status) error

	// SaveEvent appends a raw provider event for audit alongside the payment.
	SaveEvent(ctx context.Context, event *Event) error
}
