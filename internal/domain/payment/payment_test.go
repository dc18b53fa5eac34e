package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecordArgs() (string, string, Kind, Provider, decimal.Decimal, string, string, string, string) {
	return "pay_123", "user_1", KindSingleTransfer, ProviderSEPA,
		decimal.NewFromInt(1250), "EUR", "NL91ABNA0417164300", "J. de Vries", "Shift payout week 34"
}

func TestNewRecord(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(paymentID, userID *string, kind *Kind, provider *Provider, amount *decimal.Decimal, recipientName, description *string)
		wantError error
	}{
		{
			name:   "valid record",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, _, _ *string) {},
		},
		{
			name: "empty payment id",
			mutate: func(paymentID, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, _, _ *string) {
				*paymentID = ""
			},
			wantError: ErrInvalidPaymentID,
		},
		{
			name: "payment id with illegal characters",
			mutate: func(paymentID, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, _, _ *string) {
				*paymentID = "pay 123!"
			},
			wantError: ErrInvalidPaymentID,
		},
		{
			name: "empty user id",
			mutate: func(_, userID *string, _ *Kind, _ *Provider, _ *decimal.Decimal, _, _ *string) {
				*userID = ""
			},
			wantError: ErrInvalidUserID,
		},
		{
			name: "unknown kind",
			mutate: func(_, _ *string, kind *Kind, _ *Provider, _ *decimal.Decimal, _, _ *string) {
				*kind = Kind("wire")
			},
			wantError: ErrInvalidKind,
		},
		{
			name: "unknown provider",
			mutate: func(_, _ *string, _ *Kind, provider *Provider, _ *decimal.Decimal, _, _ *string) {
				*provider = Provider("paypal")
			},
			wantError: ErrInvalidProvider,
		},
		{
			name: "zero amount",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, amount *decimal.Decimal, _, _ *string) {
				*amount = decimal.Zero
			},
			wantError: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, amount *decimal.Decimal, _, _ *string) {
				*amount = decimal.NewFromInt(-5)
			},
			wantError: ErrInvalidAmount,
		},
		{
			name: "amount at the ceiling is allowed",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, amount *decimal.Decimal, _, _ *string) {
				*amount = decimal.NewFromInt(10_000)
			},
		},
		{
			name: "amount one cent over the ceiling",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, amount *decimal.Decimal, _, _ *string) {
				*amount = decimal.RequireFromString("10000.01")
			},
			wantError: ErrAmountExceedsCeiling,
		},
		{
			name: "empty recipient name",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, recipientName, _ *string) {
				*recipientName = ""
			},
			wantError: ErrInvalidRecipientName,
		},
		{
			name: "recipient name too long",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, recipientName, _ *string) {
				*recipientName = strings.Repeat("a", MaxRecipientNameLength+1)
			},
			wantError: ErrInvalidRecipientName,
		},
		{
			name: "empty description",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, _, description *string) {
				*description = ""
			},
			wantError: ErrInvalidDescription,
		},
		{
			name: "description too long",
			mutate: func(_, _ *string, _ *Kind, _ *Provider, _ *decimal.Decimal, _, description *string) {
				*description = strings.Repeat("x", MaxDescriptionLength+1)
			},
			wantError: ErrInvalidDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentID, userID, kind, provider, amount, currency, iban, name, description := validRecordArgs()
			tt.mutate(&paymentID, &userID, &kind, &provider, &amount, &name, &description)

			record, err := NewRecord(paymentID, userID, kind, provider, amount, currency, iban, name, description)

			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, record)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, record.Status())
			assert.Nil(t, record.BatchID())
			assert.NotNil(t, record.Metadata())
			assert.False(t, record.CreatedAt().IsZero())
		})
	}
}

func TestRecord_TransitionTo(t *testing.T) {
	t.Run("walks the happy path", func(t *testing.T) {
		record := MustNewRecord(validRecordArgs())

		require.NoError(t, record.TransitionTo(StatusAwaitingBank))
		require.NoError(t, record.TransitionTo(StatusProcessing))
		require.NoError(t, record.TransitionTo(StatusCompleted))
		require.NoError(t, record.TransitionTo(StatusRefunded))
		assert.Equal(t, StatusRefunded, record.Status())
	})

	t.Run("rejects a backward move and keeps the status", func(t *testing.T) {
		record := MustNewRecord(validRecordArgs())
		require.NoError(t, record.TransitionTo(StatusProcessing))

		err := record.TransitionTo(StatusPending)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, StatusProcessing, record.Status())
	})

	t.Run("rejects leaving failed", func(t *testing.T) {
		record := MustNewRecord(validRecordArgs())
		require.NoError(t, record.TransitionTo(StatusFailed))

		err := record.TransitionTo(StatusCompleted)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("bumps updatedAt on success", func(t *testing.T) {
		record := MustNewRecord(validRecordArgs())
		before := record.UpdatedAt()
		time.Sleep(time.Millisecond)

		require.NoError(t, record.TransitionTo(StatusAwaitingBank))
		assert.True(t, record.UpdatedAt().After(before))
	})
}

func TestRecord_SetBatchID(t *testing.T) {
	record := MustNewRecord(validRecordArgs())
	require.Nil(t, record.BatchID())

	record.SetBatchID("batch_1")
	require.NotNil(t, record.BatchID())
	assert.Equal(t, "batch_1", *record.BatchID())
}

func TestRecord_SetMetadata(t *testing.T) {
	record := MustNewRecord(validRecordArgs())

	record.SetMetadata("provider_reference", "tr_abc")
	record.SetMetadata("provider_status", "AcceptedSettlementInProcess")

	assert.Equal(t, "tr_abc", record.Metadata()["provider_reference"])
	assert.Equal(t, "AcceptedSettlementInProcess", record.Metadata()["provider_status"])
}

func TestRestore(t *testing.T) {
	batchID := "batch_9"
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)

	record := Restore(
		"pay_9", "user_9", KindBulkMember, ProviderSEPA,
		decimal.NewFromInt(250), "EUR", "DE89370400440532013000", "K. Müller", "Bulk payout",
		StatusCompleted, &batchID, "ref_9", nil, createdAt, updatedAt,
	)

	assert.Equal(t, "pay_9", record.PaymentID())
	assert.Equal(t, StatusCompleted, record.Status())
	assert.Equal(t, &batchID, record.BatchID())
	assert.Equal(t, "ref_9", record.ClientReference())
	assert.NotNil(t, record.Metadata(), "nil metadata is normalized")
	assert.Equal(t, createdAt, record.CreatedAt())
	assert.Equal(t, updatedAt, record.UpdatedAt())
}

func TestKind_Ceiling(t *testing.T) {
	for _, k := range []Kind{KindSingleTransfer, KindBulkMember, KindProviderPayment, KindRefund} {
		assert.True(t, k.Ceiling().Equal(decimal.NewFromInt(10_000)), "%s ceiling", k)
	}
}

func TestNewKind(t *testing.T) {
	got, err := NewKind("single_transfer")
	require.NoError(t, err)
	assert.Equal(t, KindSingleTransfer, got)

	_, err = NewKind("wire")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	got, err := NewProvider("ideal")
	require.NoError(t, err)
	assert.Equal(t, ProviderIDEAL, got)

	_, err = NewProvider("paypal")
	assert.Error(t, err)
}
