package handler

// WebhookAckResponse acknowledgement body returned to the provider
type WebhookAckResponse struct {
	Message   string `json:"message"`
	PaymentID string `json:"payment_id,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	Status    string `json:"status,omitempty"`
}
