package batchtransfer

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"payrail-server/internal/domain/batch"
	"payrail-server/internal/domain/deadletter"
	"payrail-server/internal/domain/payment"
)

// MockPaymentRepository mock of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, record *payment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveTx(ctx context.Context, tx *sql.Tx, record *payment.Record) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Record, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Record), args.Error(1)
}

func (m *MockPaymentRepository) FindByClientReference(ctx context.Context, userID, clientReference string) (*payment.Record, error) {
	args := m.Called(ctx, userID, clientReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Record), args.Error(1)
}

func (m *MockPaymentRepository) FindByBatchID(ctx context.Context, batchID string) ([]*payment.Record, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Record), args.Error(1)
}

func (m *MockPaymentRepository) FindByStatusAndTimeRange(ctx context.Context, status payment.Status, from, to time.Time, limit, offset int) ([]*payment.Record, error) {
	args := m.Called(ctx, status, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Record), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatusCAS(ctx context.Context, paymentID string, expected, next payment.Status) error {
	args := m.Called(ctx, paymentID, expected, next)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveEvent(ctx context.Context, event *payment.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockBatchRepository mock of batch.Repository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Save(ctx context.Context, b *batch.BulkBatch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) SaveTx(ctx context.Context, tx *sql.Tx, b *batch.BulkBatch) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) FindByBatchID(ctx context.Context, batchID string) (*batch.BulkBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.BulkBatch), args.Error(1)
}

// MockDeadLetterRepository mock of deadletter.Repository
type MockDeadLetterRepository struct {
	mock.Mock
}

func (m *MockDeadLetterRepository) Save(ctx context.Context, entry *deadletter.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDeadLetterRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*deadletter.Entry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deadletter.Entry), args.Error(1)
}

func (m *MockDeadLetterRepository) FindByPaymentID(ctx context.Context, paymentID string) (*deadletter.Entry, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deadletter.Entry), args.Error(1)
}

// stubTxManager runs the unit of work directly, without a real database.
type stubTxManager struct {
	calls int
	err   error
}

func (s *stubTxManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}
