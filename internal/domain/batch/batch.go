package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"payrail-server/internal/domain/payment"
)

const (
	// MaxEntries bulk-entry ceiling per batch
	MaxEntries = 500
)

// MaxTotalAmount bulk-amount ceiling per batch
var MaxTotalAmount = decimal.NewFromInt(100_000)

// BulkBatch a SEPA bulk transfer batch. Created atomically with all its
// members and never mutated after creation except for status aggregation.
type BulkBatch struct {
	batchID     string
	description string
	memberIDs   []string
	entryCount  int
	controlSum  decimal.Decimal
	status      payment.Status
	createdAt   time.Time
	updatedAt   time.Time
}

// NewBulkBatch creates a batch over already-validated member payments. The
// control sum is computed from the member amounts at build time.
func NewBulkBatch(batchID, description string, members []*payment.Record) (*BulkBatch, error) {
	if batchID == "" {
		return nil, ErrInvalidBatchID
	}
	if len(members) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(members) > MaxEntries {
		return nil, ErrTooManyEntries
	}

	controlSum := decimal.Zero
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		controlSum = controlSum.Add(m.Amount())
		memberIDs = append(memberIDs, m.PaymentID())
	}
	if controlSum.GreaterThan(MaxTotalAmount) {
		return nil, ErrBatchAmountExceedsCeiling
	}

	now := time.Now()
	return &BulkBatch{
		batchID:     batchID,
		description: description,
		memberIDs:   memberIDs,
		entryCount:  len(members),
		controlSum:  controlSum,
		status:      payment.StatusPending,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Restore rebuilds a batch from persisted state. Used by repositories only.
func Restore(
	batchID string,
	description string,
	memberIDs []string,
	entryCount int,
	controlSum decimal.Decimal,
	status payment.Status,
	createdAt time.Time,
	updatedAt time.Time,
) *BulkBatch {
	return &BulkBatch{
		batchID:     batchID,
		description: description,
		memberIDs:   memberIDs,
		entryCount:  entryCount,
		controlSum:  controlSum,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// BatchID returns the batch id.
func (b *BulkBatch) BatchID() string {
	return b.batchID
}

// Description returns the human-readable batch description.
func (b *BulkBatch) Description() string {
	return b.description
}

// MemberIDs returns the ordered member payment ids.
func (b *BulkBatch) MemberIDs() []string {
	return b.memberIDs
}

// EntryCount returns the declared number of entries.
func (b *BulkBatch) EntryCount() int {
	return b.entryCount
}

// ControlSum returns the declared sum of member amounts.
func (b *BulkBatch) ControlSum() decimal.Decimal {
	return b.controlSum
}

// Status returns the aggregate batch status.
func (b *BulkBatch) Status() payment.Status {
	return b.status
}

// CreatedAt returns the creation timestamp.
func (b *BulkBatch) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns the last-updated timestamp.
func (b *BulkBatch) UpdatedAt() time.Time {
	return b.updatedAt
}

// Aggregate recomputes the batch status from its member statuses: failed if
// any member failed, completed only when all members completed, otherwise
// processing.
func (b *BulkBatch) Aggregate(members []*payment.Record) payment.Status {
	allCompleted := len(members) > 0
	for _, m := range members {
		switch m.Status() {
		case payment.StatusFailed, payment.StatusCancelled, payment.StatusExpired:
			b.status = payment.StatusFailed
			b.updatedAt = time.Now()
			return b.status
		case payment.StatusCompleted:
		default:
			allCompleted = false
		}
	}
	if allCompleted {
		b.status = payment.StatusCompleted
	} else {
		b.status = payment.StatusProcessing
	}
	b.updatedAt = time.Now()
	return b.status
}
