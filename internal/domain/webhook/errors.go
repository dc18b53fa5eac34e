package webhook

import "errors"

var (
	// ErrInvalidSignature the webhook signature does not verify
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp the signed timestamp is outside the tolerance window
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
	// ErrInvalidPayload the webhook body cannot be parsed into an event
	ErrInvalidPayload = errors.New("invalid webhook payload")
)
