package webhook

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

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

// MockDedupStore mock of webhook.DedupStore
type MockDedupStore struct {
	mock.Mock
}

func (m *MockDedupStore) Claim(ctx context.Context, prov payment.Provider, payloadHash string, now time.Time) (bool, error) {
	args := m.Called(ctx, prov, payloadHash, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockDedupStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// claimOnceStore in-memory dedup store granting each payload hash to exactly
// one caller, like the unique key in the persistent store
type claimOnceStore struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func newClaimOnceStore() *claimOnceStore {
	return &claimOnceStore{claimed: make(map[string]bool)}
}

func (s *claimOnceStore) Claim(ctx context.Context, prov payment.Provider, payloadHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := prov.String() + ":" + payloadHash
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

func (s *claimOnceStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// stubGateway provider.Gateway with a fixed status vocabulary
type stubGateway struct {
	prov     payment.Provider
	statuses map[string]payment.Status
}

func (s *stubGateway) Provider() payment.Provider { return s.prov }

func (s *stubGateway) Submit(ctx context.Context, record *payment.Record) (*provider.SubmitResult, error) {
	return nil, nil
}

func (s *stubGateway) MapStatus(code string) payment.Status {
	if st, ok := s.statuses[code]; ok {
		return st
	}
	return payment.StatusUnknown
}

// MockSideEffects mock of the three side-effect ports
type MockSideEffects struct {
	mock.Mock
}

func (m *MockSideEffects) ApplyCompleted(ctx context.Context, record *payment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSideEffects) ApplyRefund(ctx context.Context, record *payment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSideEffects) DispatchStatusChange(ctx context.Context, record *payment.Record, previous payment.Status) error {
	args := m.Called(ctx, record, previous)
	return args.Error(0)
}

func (m *MockSideEffects) RequestInvoice(ctx context.Context, record *payment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
