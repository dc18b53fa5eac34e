package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payrail-server/internal/domain/deadletter"
)

// DeadLetterRepository MySQL implementation of deadletter.Repository.
type DeadLetterRepository struct {
	db *DB
}

// NewDeadLetterRepository creates a new DeadLetterRepository.
func NewDeadLetterRepository(db *DB) *DeadLetterRepository {
	return &DeadLetterRepository{db: db}
}

const deadLetterColumns = `entry_id, operation, payment_id, last_error, retry_count, next_retry_at, abandoned, resolved, created_at, updated_at`

// Save persists an entry, updating the retry bookkeeping on conflict.
func (r *DeadLetterRepository) Save(ctx context.Context, entry *deadletter.Entry) error {
	query := `
		INSERT INTO dead_letter_entries (` + deadLetterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			last_error = VALUES(last_error),
			retry_count = VALUES(retry_count),
			next_retry_at = VALUES(next_retry_at),
			abandoned = VALUES(abandoned),
			resolved = VALUES(resolved),
			updated_at = VALUES(updated_at)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.EntryID(),
		entry.Operation(),
		entry.PaymentID(),
		entry.LastError(),
		entry.RetryCount(),
		entry.NextRetryAt(),
		entry.Abandoned(),
		entry.Resolved(),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save dead-letter entry: %w", err)
	}
	return nil
}

// FindDue returns non-abandoned entries whose next retry time has passed,
// oldest first.
func (r *DeadLetterRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*deadletter.Entry, error) {
	query := `
		SELECT ` + deadLetterColumns + `
		FROM dead_letter_entries
		WHERE abandoned = FALSE AND resolved = FALSE AND next_retry_at <= ?
		ORDER BY next_retry_at ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find due dead-letter entries: %w", err)
	}
	defer rows.Close()

	var entries []*deadletter.Entry
	for rows.Next() {
		entry, err := scanDeadLetterEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dead-letter entries: %w", err)
	}
	return entries, nil
}

// FindByPaymentID returns the entry parked for the given payment, if any.
func (r *DeadLetterRepository) FindByPaymentID(ctx context.Context, paymentID string) (*deadletter.Entry, error) {
	query := `SELECT ` + deadLetterColumns + ` FROM dead_letter_entries WHERE payment_id = ?`
	entry, err := scanDeadLetterEntry(r.db.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deadletter.ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func scanDeadLetterEntry(row rowScanner) (*deadletter.Entry, error) {
	var (
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
	)
	err := row.Scan(&entryID, &operation, &paymentID, &lastError, &retryCount, &nextRetryAt, &abandoned, &resolved, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan dead-letter entry: %w", err)
	}
	return deadletter.Restore(entryID, operation, paymentID, lastError, retryCount, nextRetryAt, abandoned, resolved, createdAt, updatedAt), nil
}
