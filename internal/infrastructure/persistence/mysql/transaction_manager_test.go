package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrail-server/internal/domain/batch"
	"payrail-server/internal/domain/payment"
)

func TestTransactionManager_WithTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tm := &TransactionManager{db: &DB{DB: db}}

	tests := []struct {
		name      string
		fn        func(*sql.Tx) error
		setupMock func()
		wantError bool
		wantPanic bool
	}{
		{
			name: "commits on success",
			fn: func(tx *sql.Tx) error {
				return nil
			},
			setupMock: func() {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			wantError: false,
		},
		{
			name: "rolls back when the callback fails",
			fn: func(tx *sql.Tx) error {
				return errors.New("test error")
			},
			setupMock: func() {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantError: true,
		},
		{
			name: "returns the begin error",
			fn: func(tx *sql.Tx) error {
				return nil
			},
			setupMock: func() {
				mock.ExpectBegin().WillReturnError(errors.New("begin error"))
			},
			wantError: true,
		},
		{
			name: "rolls back when the callback panics",
			fn: func(tx *sql.Tx) error {
				panic("test panic")
			},
			setupMock: func() {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			ctx := context.Background()

			if tt.wantPanic {
				defer func() {
					r := recover()
					assert.Equal(t, "test panic", r)
					assert.NoError(t, mock.ExpectationsWereMet())
				}()
			}

			err := tm.WithTransaction(ctx, tt.fn)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func storedBatchMember(paymentID, batchID string, now time.Time) *payment.Record {
	return payment.Restore(
		paymentID, "user_1", payment.KindBulkMember, payment.ProviderSEPA,
		decimal.RequireFromString("175.00"), "EUR", "NL91ABNA0417164300", "J. de Vries", "Payout",
		payment.StatusPending, &batchID, "", nil, now, now,
	)
}

func TestTransactionManager_BatchAndMembersCommitTogether(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handle := &DB{DB: db}
	tm := NewTransactionManager(handle)
	batchRepo := NewBatchRepository(handle)
	paymentRepo := NewPaymentRepository(handle)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	stored := batch.Restore("batch_1", "Weekly payouts", []string{"pay_1", "pay_2"}, 2,
		decimal.RequireFromString("350.00"), payment.StatusPending, now, now)
	members := []*payment.Record{
		storedBatchMember("pay_1", "batch_1", now),
		storedBatchMember("pay_2", "batch_1", now),
	}

	// every insert runs between Begin and Commit on the same transaction
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bulk_batches").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	err = tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := batchRepo.SaveTx(ctx, tx, stored); err != nil {
			return err
		}
		for _, m := range members {
			if err := paymentRepo.SaveTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_MemberFailureRollsBackBatchInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handle := &DB{DB: db}
	tm := NewTransactionManager(handle)
	batchRepo := NewBatchRepository(handle)
	paymentRepo := NewPaymentRepository(handle)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	stored := batch.Restore("batch_1", "Weekly payouts", []string{"pay_1"}, 1,
		decimal.RequireFromString("175.00"), payment.StatusPending, now, now)
	member := storedBatchMember("pay_1", "batch_1", now)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bulk_batches").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	ctx := context.Background()
	err = tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := batchRepo.SaveTx(ctx, tx, stored); err != nil {
			return err
		}
		return paymentRepo.SaveTx(ctx, tx, member)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	// the batch row never survives its members
	assert.NoError(t, mock.ExpectationsWereMet())
}
