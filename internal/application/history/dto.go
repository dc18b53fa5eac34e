package history

import (
	"time"
)

// ListPaymentsRequest status and time range query over payments
type ListPaymentsRequest struct {
	Status string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// PaymentView one payment in a listing or detail response
type PaymentView struct {
	PaymentID         string
	UserID            string
	Kind              string
	Provider          string
	Amount            string
	Currency          string
	RecipientIBAN     string
	RecipientName     string
	Description       string
	Status            string
	BatchID           string
	ClientReference   string
	ProviderReference string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ListPaymentsResponse paginated payment listing
type ListPaymentsResponse struct {
	Payments []PaymentView
	Limit    int
	Offset   int
}
