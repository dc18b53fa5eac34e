package webhook

// ProcessRequest one inbound webhook delivery
type ProcessRequest struct {
	// Provider path identifier of the sending provider
	Provider string
	// Signature raw signature header value
	Signature string
	// Body raw request body, exactly as received
	Body []byte
}

// Outcome result of processing one delivery. HTTPStatus is what the
// presentation layer should answer with; a 2xx acknowledges the delivery and
// stops provider redelivery.
type Outcome struct {
	HTTPStatus int
	Message    string
	PaymentID  string
	EventID    string
	NewStatus  string
	// Duplicate true when the dedup index had already seen this payload
	Duplicate bool
}
