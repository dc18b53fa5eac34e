package payment

import "time"

// Event a raw provider notification stored for audit next to the payment it
// affected. Never interpreted after the fact; the canonical state lives on
// the Record.
type Event struct {
	EventID        string
	PaymentID      string
	Provider       Provider
	ProviderStatus string
	MappedStatus   Status
	PayloadHash    string
	RawPayload     []byte
	ReceivedAt     time.Time
}
