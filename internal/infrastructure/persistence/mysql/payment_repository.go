package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payrail-server/internal/domain/payment"
)

// PaymentRepository MySQL implementation of payment.Repository
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save persists a payment record (insert or update).
func (r *PaymentRepository) Save(ctx context.Context, rec *payment.Record) error {
	return r.save(ctx, r.db, rec)
}

// SaveTx persists a payment record inside the given transaction.
func (r *PaymentRepository) SaveTx(ctx context.Context, tx *sql.Tx, rec *payment.Record) error {
	return r.save(ctx, tx, rec)
}

func (r *PaymentRepository) save(ctx context.Context, ex execer, rec *payment.Record) error {
	query := `
		INSERT INTO payments (
			payment_id, user_id, kind, provider, amount, currency,
			recipient_iban, recipient_name, description, status,
			batch_id, client_reference, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			batch_id = VALUES(batch_id),
			metadata = VALUES(metadata),
			updated_at = VALUES(updated_at)
	`

	metadataJSON, err := json.Marshal(rec.Metadata())
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var batchID sql.NullString
	if rec.BatchID() != nil {
		batchID = sql.NullString{String: *rec.BatchID(), Valid: true}
	}

	_, err = ex.ExecContext(ctx, query,
		rec.PaymentID(),
		rec.UserID(),
		rec.Kind().String(),
		rec.Provider().String(),
		rec.Amount().StringFixed(2),
		rec.Currency(),
		rec.RecipientIBAN(),
		rec.RecipientName(),
		rec.Description(),
		rec.Status().String(),
		batchID,
		rec.ClientReference(),
		string(metadataJSON),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)

	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

const paymentColumns = `
	payment_id, user_id, kind, provider, amount, currency,
	recipient_iban, recipient_name, description, status,
	batch_id, client_reference, metadata, created_at, updated_at
`

// FindByPaymentID returns the record for the given id.
func (r *PaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Record, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = ?`
	row := r.db.QueryRowContext(ctx, query, paymentID)
	rec, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return rec, nil
}

// FindByClientReference returns the record submitted under the given caller
// reference.
func (r *PaymentRepository) FindByClientReference(ctx context.Context, userID, clientReference string) (*payment.Record, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = ? AND client_reference = ?`
	row := r.db.QueryRowContext(ctx, query, userID, clientReference)
	rec, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment by client reference: %w", err)
	}
	return rec, nil
}

// FindByBatchID returns all member records of a bulk batch.
func (r *PaymentRepository) FindByBatchID(ctx context.Context, batchID string) ([]*payment.Record, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE batch_id = ? ORDER BY created_at, payment_id`
	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find batch members: %w", err)
	}
	defer rows.Close()

	var records []*payment.Record
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch members: %w", err)
	}
	return records, nil
}

// FindByStatusAndTimeRange returns records in the given status created
// within [from, to), paginated.
func (r *PaymentRepository) FindByStatusAndTimeRange(ctx context.Context, status payment.Status, from, to time.Time, limit, offset int) ([]*payment.Record, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, status.String(), from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var records []*payment.Record
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return records, nil
}

// UpdateStatusCAS transitions a payment's status only if the stored status
// still equals expected. Two concurrent webhook deliveries racing for the
// same transition resolve to exactly one winner.
func (r *PaymentRepository) UpdateStatusCAS(ctx context.Context, paymentID string, expected, next payment.Status) error {
	query := `UPDATE payments SET status = ?, updated_at = ? WHERE payment_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, next.String(), time.Now(), paymentID, expected.String())
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return payment.ErrStatusConflict
	}
	return nil
}

// SaveEvent appends a raw provider event for audit.
func (r *PaymentRepository) SaveEvent(ctx context.Context, event *payment.Event) error {
	query := `
		INSERT INTO payment_events (
			event_id, payment_id, provider, provider_status,
			mapped_status, payload_hash, raw_payload, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.EventID,
		event.PaymentID,
		event.Provider.String(),
		event.ProviderStatus,
		event.MappedStatus.String(),
		event.PayloadHash,
		event.RawPayload,
		event.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment event: %w", err)
	}
	return nil
}

// rowScanner satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPayment rebuilds a domain record from a payments row.
func scanPayment(row rowScanner) (*payment.Record, error) {
	var (
		paymentID, userID, kindStr, providerStr, amountStr, currency string
		recipientIBAN, recipientName, description, statusStr         string
		batchID                                                      sql.NullString
		clientReference                                              string
		metadataJSON                                                 sql.NullString
		createdAt, updatedAt                                         time.Time
	)

	err := row.Scan(
		&paymentID, &userID, &kindStr, &providerStr, &amountStr, &currency,
		&recipientIBAN, &recipientName, &description, &statusStr,
		&batchID, &clientReference, &metadataJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	kind, err := payment.NewKind(kindStr)
	if err != nil {
		return nil, err
	}
	prov, err := payment.NewProvider(providerStr)
	if err != nil {
		return nil, err
	}
	status, err := payment.NewStatus(statusStr)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount: %w", err)
	}

	var metadata map[string]string
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	var batchIDPtr *string
	if batchID.Valid {
		batchIDPtr = &batchID.String
	}

	return payment.Restore(
		paymentID, userID, kind, prov, amount, currency,
		recipientIBAN, recipientName, description, status,
		batchIDPtr, clientReference, metadata, createdAt, updatedAt,
	), nil
}
