package deadletter

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"payrail-server/internal/domain/deadletter"
	"payrail-server/internal/domain/payment"
	"payrail-server/internal/infrastructure/provider"
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

// scriptedGateway provider.Gateway that fails a fixed number of submissions
// before succeeding.
type scriptedGateway struct {
	prov        payment.Provider
	result      *provider.SubmitResult
	err         error
	submitCalls int
}

func (g *scriptedGateway) Provider() payment.Provider { return g.prov }

func (g *scriptedGateway) Submit(ctx context.Context, record *payment.Record) (*provider.SubmitResult, error) {
	g.submitCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *scriptedGateway) MapStatus(code string) payment.Status { return payment.StatusUnknown }
