package batchtransfer

import (
	"github.com/shopspring/decimal"
)

// BatchEntry one member payment of a bulk submission
type BatchEntry struct {
	Amount        decimal.Decimal
	Currency      string
	RecipientIBAN string
	RecipientName string
	Description   string
}

// SubmitBatchRequest bulk submission request
type SubmitBatchRequest struct {
	UserID      string
	Description string
	Entries     []BatchEntry
}

// SubmitBatchResponse bulk submission response
type SubmitBatchResponse struct {
	BatchID           string
	Status            string
	EntryCount        int
	ControlSum        string
	PaymentIDs        []string
	ProviderReference string
}

// BatchMember member payment summary inside a batch view
type BatchMember struct {
	PaymentID     string
	RecipientName string
	Amount        string
	Status        string
}

// GetBatchResponse batch detail view with freshly aggregated status
type GetBatchResponse struct {
	BatchID     string
	Description string
	Status      string
	EntryCount  int
	ControlSum  string
	Members     []BatchMember
}
