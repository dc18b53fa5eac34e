package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind payment kind, determines the per-payment amount ceiling
type Kind string

const (
	KindSingleTransfer  Kind = "single_transfer"  // one-off SEPA credit transfer
	KindBulkMember      Kind = "bulk_member"      // member of a SEPA bulk batch
	KindProviderPayment Kind = "provider_payment" // iDEAL-class PSP payment
	KindRefund          Kind = "refund"           // refund of a completed payment
)

var (
	ceilingSingle = decimal.NewFromInt(10_000)
	ceilingBulk   = decimal.NewFromInt(10_000)
	ceilingPSP    = decimal.NewFromInt(10_000)
	ceilingRefund = decimal.NewFromInt(10_000)
)

// NewKind parses and validates a payment kind string.
func NewKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid payment kind: %s", s)
	}
	return k, nil
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindSingleTransfer, KindBulkMember, KindProviderPayment, KindRefund:
		return true
	default:
		return false
	}
}

// Ceiling returns the maximum allowed amount for a single payment of this kind.
func (k Kind) Ceiling() decimal.Decimal {
	switch k {
	case KindBulkMember:
		return ceilingBulk
	case KindProviderPayment:
		return ceilingPSP
	case KindRefund:
		return ceilingRefund
	default:
		return ceilingSingle
	}
}
