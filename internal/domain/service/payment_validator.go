package service

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"payrail-server/internal/domain/payment"
)

// PaymentValidator pure validation shared by all payment types. Violations
// are domain sentinel errors and are never retried.
type PaymentValidator struct{}

// NewPaymentValidator creates a new PaymentValidator.
func NewPaymentValidator() *PaymentValidator {
	return &PaymentValidator{}
}

var ibanCharsRegex = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]+$`)

// ibanLengths IBAN total length per country code, SEPA-reachable subset
var ibanLengths = map[string]int{
	"AT": 20, "BE": 16, "CH": 21, "DE": 22, "DK": 18,
	"ES": 24, "FI": 18, "FR": 27, "GB": 22, "IE": 22,
	"IT": 27, "LU": 20, "NL": 18, "NO": 15, "PL": 28,
	"PT": 25, "SE": 24,
}

var mod97 = big.NewInt(97)

// ValidateAmount checks that amount is strictly positive and within the
// per-kind ceiling. The ceiling itself passes; one cent above it fails.
func (v *PaymentValidator) ValidateAmount(amount decimal.Decimal, kind payment.Kind) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return payment.ErrInvalidAmount
	}
	if amount.GreaterThan(kind.Ceiling()) {
		return payment.ErrAmountExceedsCeiling
	}
	return nil
}

// ValidateIBAN checks the structural grammar of an IBAN: country prefix,
// check digits, per-country length, and the ISO 7064 mod-97 checksum.
func (v *PaymentValidator) ValidateIBAN(iban string) error {
	iban = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if !ibanCharsRegex.MatchString(iban) {
		return payment.ErrInvalidIBAN
	}
	expected, ok := ibanLengths[iban[:2]]
	if !ok || len(iban) != expected {
		return payment.ErrInvalidIBAN
	}
	if !checkMod97(iban) {
		return payment.ErrInvalidIBAN
	}
	return nil
}

// ValidateRecipientName checks the recipient display name.
func (v *PaymentValidator) ValidateRecipientName(name string) error {
	if strings.TrimSpace(name) == "" || len(name) > payment.MaxRecipientNameLength {
		return payment.ErrInvalidRecipientName
	}
	return nil
}

// ValidateDescription checks the free-text remittance description.
func (v *PaymentValidator) ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" || len(description) > payment.MaxDescriptionLength {
		return payment.ErrInvalidDescription
	}
	return nil
}

// ValidatePayment runs all checks for a submission in one pass.
func (v *PaymentValidator) ValidatePayment(amount decimal.Decimal, kind payment.Kind, iban, recipientName, description string) error {
	if err := v.ValidateAmount(amount, kind); err != nil {
		return err
	}
	if err := v.ValidateIBAN(iban); err != nil {
		return err
	}
	if err := v.ValidateRecipientName(recipientName); err != nil {
		return err
	}
	return v.ValidateDescription(description)
}

// checkMod97 rearranges the IBAN per ISO 13616 and verifies the checksum.
func checkMod97(iban string) bool {
	rearranged := iban[4:] + iban[:4]
	var sb strings.Builder
	for _, ch := range rearranged {
		switch {
		case ch >= '0' && ch <= '9':
			sb.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			sb.WriteString(big.NewInt(int64(ch-'A') + 10).String())
		default:
			return false
		}
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, mod97).Int64() == 1
}
