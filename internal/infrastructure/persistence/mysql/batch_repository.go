package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payrail-server/internal/domain/batch"
	"payrail-server/internal/domain/payment"
)

// BatchRepository MySQL implementation of batch.Repository
type BatchRepository struct {
	db *DB
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(db *DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Save persists a batch (insert or status update).
func (r *BatchRepository) Save(ctx context.Context, b *batch.BulkBatch) error {
	return r.save(ctx, r.db, b)
}

// SaveTx persists a batch inside the given transaction.
func (r *BatchRepository) SaveTx(ctx context.Context, tx *sql.Tx, b *batch.BulkBatch) error {
	return r.save(ctx, tx, b)
}

func (r *BatchRepository) save(ctx context.Context, ex execer, b *batch.BulkBatch) error {
	query := `
		INSERT INTO bulk_batches (
			batch_id, description, member_ids, entry_count, control_sum,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			updated_at = VALUES(updated_at)
	`

	memberIDsJSON, err := json.Marshal(b.MemberIDs())
	if err != nil {
		return fmt.Errorf("failed to marshal member ids: %w", err)
	}

	_, err = ex.ExecContext(ctx, query,
		b.BatchID(),
		b.Description(),
		string(memberIDsJSON),
		b.EntryCount(),
		b.ControlSum().StringFixed(2),
		b.Status().String(),
		b.CreatedAt(),
		b.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// FindByBatchID returns the batch for the given id.
func (r *BatchRepository) FindByBatchID(ctx context.Context, batchID string) (*batch.BulkBatch, error) {
	query := `
		SELECT batch_id, description, member_ids, entry_count, control_sum,
		       status, created_at, updated_at
		FROM bulk_batches
		WHERE batch_id = ?
	`

	var (
		dbBatchID, description, memberIDsJSON, controlSumStr, statusStr string
		entryCount                                                      int
		createdAt, updatedAt                                            time.Time
	)

	err := r.db.QueryRowContext(ctx, query, batchID).Scan(
		&dbBatchID, &description, &memberIDsJSON, &entryCount,
		&controlSumStr, &statusStr, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, batch.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find batch: %w", err)
	}

	var memberIDs []string
	if err := json.Unmarshal([]byte(memberIDsJSON), &memberIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal member ids: %w", err)
	}

	controlSum, err := decimal.NewFromString(controlSumStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored control sum: %w", err)
	}

	status, err := payment.NewStatus(statusStr)
	if err != nil {
		return nil, err
	}

	return batch.Restore(dbBatchID, description, memberIDs, entryCount, controlSum, status, createdAt, updatedAt), nil
}
