package handler

// SubmitPaymentRequest single payment submission body
type SubmitPaymentRequest struct {
	Kind            string `json:"kind" example:"single_transfer"`
	Provider        string `json:"provider" example:"sepa"`
	Amount          string `json:"amount" example:"1250.00"`
	Currency        string `json:"currency" example:"EUR"`
	RecipientIBAN   string `json:"recipient_iban" example:"NL91ABNA0417164300"`
	RecipientName   string `json:"recipient_name" example:"J. de Vries"`
	Description     string `json:"description" example:"Shift payout week 35"`
	ClientReference string `json:"client_reference,omitempty" example:"payout-2026-35-0017"`
}

// SubmitPaymentResponse single payment submission result
type SubmitPaymentResponse struct {
	PaymentID         string `json:"payment_id" example:"pay_5f0c0e1a"`
	Status            string `json:"status" example:"awaiting_bank"`
	ProviderReference string `json:"provider_reference,omitempty"`
	Duplicate         bool   `json:"duplicate,omitempty"`
}
