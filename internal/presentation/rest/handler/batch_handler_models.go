package handler

// BatchEntryRequest one member of a bulk submission body
type BatchEntryRequest struct {
	Amount        string `json:"amount" example:"450.00"`
	Currency      string `json:"currency" example:"EUR"`
	RecipientIBAN string `json:"recipient_iban" example:"NL91ABNA0417164300"`
	RecipientName string `json:"recipient_name" example:"J. de Vries"`
	Description   string `json:"description" example:"Shift payout week 35"`
}

// SubmitBatchRequest bulk submission body
type SubmitBatchRequest struct {
	Description string              `json:"description" example:"Weekly payout run 35"`
	Entries     []BatchEntryRequest `json:"entries"`
}

// SubmitBatchResponse bulk submission result
type SubmitBatchResponse struct {
	BatchID           string   `json:"batch_id" example:"batch_7d21c3aa"`
	Status            string   `json:"status" example:"awaiting_bank"`
	EntryCount        int      `json:"entry_count" example:"3"`
	ControlSum        string   `json:"control_sum" example:"400.00"`
	PaymentIDs        []string `json:"payment_ids"`
	ProviderReference string   `json:"provider_reference,omitempty"`
}

// BatchMemberResponse member summary in a batch detail view
type BatchMemberResponse struct {
	PaymentID     string `json:"payment_id"`
	RecipientName string `json:"recipient_name"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
}

// GetBatchResponse batch detail view
type GetBatchResponse struct {
	BatchID     string                `json:"batch_id"`
	Description string                `json:"description"`
	Status      string                `json:"status"`
	EntryCount  int                   `json:"entry_count"`
	ControlSum  string                `json:"control_sum"`
	Members     []BatchMemberResponse `json:"members"`
}
