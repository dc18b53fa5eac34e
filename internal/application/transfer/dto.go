package transfer

import (
	"github.com/shopspring/decimal"
)

// SubmitTransferRequest single payment submission request
type SubmitTransferRequest struct {
	UserID          string
	Kind            string
	Provider        string
	Amount          decimal.Decimal
	Currency        string
	RecipientIBAN   string
	RecipientName   string
	Description     string
	ClientReference string
}

// SubmitTransferResponse single payment submission response
type SubmitTransferResponse struct {
	PaymentID         string
	Status            string
	ProviderReference string
	// Duplicate true when an earlier submission with the same client
	// reference was returned instead of creating a new payment
	Duplicate bool
}
