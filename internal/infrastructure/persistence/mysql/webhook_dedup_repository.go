package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"payrail-server/internal/domain/payment"
	"payrail-server/internal/domain/webhook"
)

// mysqlErrDuplicateEntry MySQL error number for unique key violations
const mysqlErrDuplicateEntry = 1062

// WebhookDedupRepository MySQL implementation of webhook.DedupStore. The
// unique key over (provider, payload_hash) is the atomic claim primitive:
// two concurrent claims for the same payload resolve to exactly one insert.
type WebhookDedupRepository struct {
	db *DB
}

// NewWebhookDedupRepository creates a new WebhookDedupRepository.
func NewWebhookDedupRepository(db *DB) *WebhookDedupRepository {
	return &WebhookDedupRepository{db: db}
}

// Claim records the (provider, payload hash) pair as seen. Returns true when
// this call was the first sighting within the retention window.
func (r *WebhookDedupRepository) Claim(ctx context.Context, provider payment.Provider, payloadHash string, now time.Time) (bool, error) {
	insert := `INSERT INTO webhook_dedup (provider, payload_hash, first_seen_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, insert, provider.String(), payloadHash, now)
	if err == nil {
		return true, nil
	}

	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrDuplicateEntry {
		return false, fmt.Errorf("failed to claim webhook dedup entry: %w", err)
	}

	// An entry exists. Re-claim it only if it fell out of the retention
	// window; the conditional update keeps the check-then-write atomic.
	cutoff := now.Add(-webhook.RetentionWindow)
	update := `UPDATE webhook_dedup SET first_seen_at = ? WHERE provider = ? AND payload_hash = ? AND first_seen_at < ?`
	res, err := r.db.ExecContext(ctx, update, now, provider.String(), payloadHash, cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to re-claim webhook dedup entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// PurgeExpired removes entries older than the retention window.
func (r *WebhookDedupRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-webhook.RetentionWindow)
	res, err := r.db.ExecContext(ctx, `DELETE FROM webhook_dedup WHERE first_seen_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge webhook dedup entries: %w", err)
	}
	return res.RowsAffected()
}
