package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

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
