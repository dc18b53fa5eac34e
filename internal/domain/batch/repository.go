package batch

import (
	"context"
	"database/sql"
)

// Repository persistence boundary for bulk batches.
type Repository interface {
	// Save persists a batch (insert or status update).
	Save(ctx context.Context, b *BulkBatch) error

	// SaveTx persists a batch inside the given transaction.
	SaveTx(ctx context.Context, tx *sql.Tx, b *BulkBatch) error

	// FindByBatchID returns the batch for the given id.
	FindByBatchID(ctx context.Context, batchID string) (*BulkBatch, error)
}
