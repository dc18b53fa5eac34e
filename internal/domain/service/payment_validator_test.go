package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"payrail-server/internal/domain/payment"
)

func TestPaymentValidator_ValidateAmount(t *testing.T) {
	v := NewPaymentValidator()

	tests := []struct {
		name      string
		amount    string
		kind      payment.Kind
		wantError error
	}{
		{name: "ordinary amount", amount: "1250.00", kind: payment.KindSingleTransfer},
		{name: "smallest positive amount", amount: "0.01", kind: payment.KindSingleTransfer},
		{name: "exactly at the ceiling", amount: "10000.00", kind: payment.KindSingleTransfer},
		{name: "one cent over the ceiling", amount: "10000.01", kind: payment.KindSingleTransfer, wantError: payment.ErrAmountExceedsCeiling},
		{name: "zero", amount: "0", kind: payment.KindSingleTransfer, wantError: payment.ErrInvalidAmount},
		{name: "negative", amount: "-1", kind: payment.KindSingleTransfer, wantError: payment.ErrInvalidAmount},
		{name: "bulk member at the ceiling", amount: "10000.00", kind: payment.KindBulkMember},
		{name: "provider payment over the ceiling", amount: "10001", kind: payment.KindProviderPayment, wantError: payment.ErrAmountExceedsCeiling},
		{name: "refund over the ceiling", amount: "10000.50", kind: payment.KindRefund, wantError: payment.ErrAmountExceedsCeiling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAmount(decimal.RequireFromString(tt.amount), tt.kind)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaymentValidator_ValidateIBAN(t *testing.T) {
	v := NewPaymentValidator()

	tests := []struct {
		name      string
		iban      string
		wantError bool
	}{
		{name: "valid Dutch IBAN", iban: "NL91ABNA0417164300"},
		{name: "valid German IBAN", iban: "DE89370400440532013000"},
		{name: "valid Belgian IBAN", iban: "BE68539007547034"},
		{name: "valid French IBAN", iban: "FR1420041010050500013M02606"},
		{name: "spaces and lowercase are normalized", iban: "nl91 abna 0417 1643 00"},
		{name: "bad check digits", iban: "NL92ABNA0417164300", wantError: true},
		{name: "one digit flipped", iban: "NL91ABNA0417164301", wantError: true},
		{name: "wrong length for country", iban: "NL91ABNA04171643", wantError: true},
		{name: "unknown country code", iban: "XX91ABNA0417164300", wantError: true},
		{name: "missing check digits", iban: "NLABNA0417164300", wantError: true},
		{name: "illegal characters", iban: "NL91-ABNA-0417-1643", wantError: true},
		{name: "empty", iban: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateIBAN(tt.iban)
			if tt.wantError {
				assert.ErrorIs(t, err, payment.ErrInvalidIBAN)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaymentValidator_ValidateRecipientName(t *testing.T) {
	v := NewPaymentValidator()

	assert.NoError(t, v.ValidateRecipientName("J. de Vries"))
	assert.NoError(t, v.ValidateRecipientName(strings.Repeat("a", payment.MaxRecipientNameLength)))
	assert.ErrorIs(t, v.ValidateRecipientName(""), payment.ErrInvalidRecipientName)
	assert.ErrorIs(t, v.ValidateRecipientName("   "), payment.ErrInvalidRecipientName)
	assert.ErrorIs(t, v.ValidateRecipientName(strings.Repeat("a", payment.MaxRecipientNameLength+1)), payment.ErrInvalidRecipientName)
}

func TestPaymentValidator_ValidateDescription(t *testing.T) {
	v := NewPaymentValidator()

	assert.NoError(t, v.ValidateDescription("Shift payout week 34"))
	assert.NoError(t, v.ValidateDescription(strings.Repeat("x", payment.MaxDescriptionLength)))
	assert.ErrorIs(t, v.ValidateDescription(""), payment.ErrInvalidDescription)
	assert.ErrorIs(t, v.ValidateDescription("  "), payment.ErrInvalidDescription)
	assert.ErrorIs(t, v.ValidateDescription(strings.Repeat("x", payment.MaxDescriptionLength+1)), payment.ErrInvalidDescription)
}

func TestPaymentValidator_ValidatePayment(t *testing.T) {
	v := NewPaymentValidator()

	t.Run("passes a valid submission", func(t *testing.T) {
		err := v.ValidatePayment(decimal.NewFromInt(1250), payment.KindSingleTransfer,
			"NL91ABNA0417164300", "J. de Vries", "Shift payout week 34")
		assert.NoError(t, err)
	})

	t.Run("reports the first violation", func(t *testing.T) {
		err := v.ValidatePayment(decimal.NewFromInt(-1), payment.KindSingleTransfer,
			"not-an-iban", "", "")
		assert.ErrorIs(t, err, payment.ErrInvalidAmount)
	})

	t.Run("checks the IBAN after the amount", func(t *testing.T) {
		err := v.ValidatePayment(decimal.NewFromInt(10), payment.KindSingleTransfer,
			"not-an-iban", "J. de Vries", "payout")
		assert.ErrorIs(t, err, payment.ErrInvalidIBAN)
	})
}
