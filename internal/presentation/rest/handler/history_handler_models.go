package handler

import "time"

// PaymentItem one payment in a listing or detail response
type PaymentItem struct {
	PaymentID         string    `json:"payment_id"`
	UserID            string    `json:"user_id"`
	Kind              string    `json:"kind"`
	Provider          string    `json:"provider"`
	Amount            string    `json:"amount" example:"1250.00"`
	Currency          string    `json:"currency" example:"EUR"`
	RecipientIBAN     string    `json:"recipient_iban"`
	RecipientName     string    `json:"recipient_name"`
	Description       string    `json:"description"`
	Status            string    `json:"status" example:"completed"`
	BatchID           string    `json:"batch_id,omitempty"`
	ClientReference   string    `json:"client_reference,omitempty"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ListPaymentsResponse paginated payment listing
type ListPaymentsResponse struct {
	Payments []PaymentItem `json:"payments"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}
