package batch

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrail-server/internal/domain/payment"
)

func member(t *testing.T, id string, amount string) *payment.Record {
	t.Helper()
	record, err := payment.NewRecord(
		id, "user_1", payment.KindBulkMember, payment.ProviderSEPA,
		decimal.RequireFromString(amount), "EUR",
		"NL91ABNA0417164300", "J. de Vries", "Bulk payout",
	)
	require.NoError(t, err)
	return record
}

func TestNewBulkBatch(t *testing.T) {
	t.Run("computes control sum and entry count from members", func(t *testing.T) {
		members := []*payment.Record{
			member(t, "pay_1", "100.00"),
			member(t, "pay_2", "250.00"),
			member(t, "pay_3", "50.00"),
		}

		b, err := NewBulkBatch("batch_1", "Week 34 payouts", members)
		require.NoError(t, err)

		assert.Equal(t, "batch_1", b.BatchID())
		assert.Equal(t, 3, b.EntryCount())
		assert.True(t, b.ControlSum().Equal(decimal.RequireFromString("400.00")))
		assert.Equal(t, []string{"pay_1", "pay_2", "pay_3"}, b.MemberIDs())
		assert.Equal(t, payment.StatusPending, b.Status())
	})

	t.Run("rejects an empty batch id", func(t *testing.T) {
		_, err := NewBulkBatch("", "x", []*payment.Record{member(t, "pay_1", "10")})
		assert.ErrorIs(t, err, ErrInvalidBatchID)
	})

	t.Run("rejects an empty member list", func(t *testing.T) {
		_, err := NewBulkBatch("batch_1", "x", nil)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})

	t.Run("rejects more than the entry ceiling", func(t *testing.T) {
		members := make([]*payment.Record, 0, MaxEntries+1)
		for i := 0; i <= MaxEntries; i++ {
			members = append(members, member(t, fmt.Sprintf("pay_%d", i), "1.00"))
		}

		_, err := NewBulkBatch("batch_1", "x", members)
		assert.ErrorIs(t, err, ErrTooManyEntries)
	})

	t.Run("accepts a control sum at the amount ceiling", func(t *testing.T) {
		members := []*payment.Record{
			member(t, "pay_1", "10000.00"),
			member(t, "pay_2", "10000.00"),
			member(t, "pay_3", "10000.00"),
			member(t, "pay_4", "10000.00"),
			member(t, "pay_5", "10000.00"),
			member(t, "pay_6", "10000.00"),
			member(t, "pay_7", "10000.00"),
			member(t, "pay_8", "10000.00"),
			member(t, "pay_9", "10000.00"),
			member(t, "pay_10", "10000.00"),
		}

		b, err := NewBulkBatch("batch_1", "x", members)
		require.NoError(t, err)
		assert.True(t, b.ControlSum().Equal(MaxTotalAmount))
	})

	t.Run("rejects a control sum over the amount ceiling", func(t *testing.T) {
		members := make([]*payment.Record, 0, 11)
		for i := 0; i < 10; i++ {
			members = append(members, member(t, fmt.Sprintf("pay_%d", i), "10000.00"))
		}
		members = append(members, member(t, "pay_10", "0.01"))

		_, err := NewBulkBatch("batch_1", "x", members)
		assert.ErrorIs(t, err, ErrBatchAmountExceedsCeiling)
	})
}

func TestBulkBatch_Aggregate(t *testing.T) {
	makeBatch := func(t *testing.T, members []*payment.Record) *BulkBatch {
		t.Helper()
		b, err := NewBulkBatch("batch_1", "x", members)
		require.NoError(t, err)
		return b
	}

	advance := func(t *testing.T, record *payment.Record, statuses ...payment.Status) {
		t.Helper()
		for _, s := range statuses {
			require.NoError(t, record.TransitionTo(s))
		}
	}

	t.Run("failed when any member failed", func(t *testing.T) {
		members := []*payment.Record{member(t, "pay_1", "10"), member(t, "pay_2", "10")}
		b := makeBatch(t, members)
		advance(t, members[0], payment.StatusCompleted)
		advance(t, members[1], payment.StatusFailed)

		assert.Equal(t, payment.StatusFailed, b.Aggregate(members))
	})

	t.Run("cancelled and expired members also fail the batch", func(t *testing.T) {
		members := []*payment.Record{member(t, "pay_1", "10")}
		b := makeBatch(t, members)
		advance(t, members[0], payment.StatusExpired)

		assert.Equal(t, payment.StatusFailed, b.Aggregate(members))
	})

	t.Run("completed only when all members completed", func(t *testing.T) {
		members := []*payment.Record{member(t, "pay_1", "10"), member(t, "pay_2", "10")}
		b := makeBatch(t, members)
		advance(t, members[0], payment.StatusCompleted)
		advance(t, members[1], payment.StatusCompleted)

		assert.Equal(t, payment.StatusCompleted, b.Aggregate(members))
	})

	t.Run("processing while any member is still in flight", func(t *testing.T) {
		members := []*payment.Record{member(t, "pay_1", "10"), member(t, "pay_2", "10")}
		b := makeBatch(t, members)
		advance(t, members[0], payment.StatusCompleted)
		advance(t, members[1], payment.StatusAwaitingBank)

		assert.Equal(t, payment.StatusProcessing, b.Aggregate(members))
	})
}

func TestRestore(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)

	b := Restore("batch_7", "restored", []string{"pay_1", "pay_2"}, 2,
		decimal.NewFromInt(42), payment.StatusProcessing, createdAt, updatedAt)

	assert.Equal(t, "batch_7", b.BatchID())
	assert.Equal(t, "restored", b.Description())
	assert.Equal(t, 2, b.EntryCount())
	assert.True(t, b.ControlSum().Equal(decimal.NewFromInt(42)))
	assert.Equal(t, payment.StatusProcessing, b.Status())
	assert.Equal(t, createdAt, b.CreatedAt())
	assert.Equal(t, updatedAt, b.UpdatedAt())
}
