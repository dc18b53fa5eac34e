package provider

import (
	"context"
	"fmt"
	"net/http"

	"payrail-server/internal/domain/payment"
	"payrail-server/internal/infrastructure/resilience"
)

// CorrelationHeader request correlation id header sent on every outbound call
const CorrelationHeader = "X-Correlation-ID"

// SubmitResult outcome of an accepted provider submission.
type SubmitResult struct {
	// ProviderReference the provider-side id for later webhook correlation
	ProviderReference string
	// RawStatus the provider's native status vocabulary
	RawStatus string
	// Status the canonical mapping of RawStatus
	Status payment.Status
}

// Gateway one outbound payment provider. The gateway is the only component
// that performs the network call wrapped by the resilience executor, and the
// only place provider status vocabulary is translated into the canonical
// enum.
type Gateway interface {
	// Provider returns the provider this gateway talks to.
	Provider() payment.Provider

	// Submit sends a single payment to the provider.
	Submit(ctx context.Context, record *payment.Record) (*SubmitResult, error)

	// MapStatus translates a native provider status into the canonical enum.
	// Unrecognized codes map to StatusUnknown, never to a terminal status.
	MapStatus(code string) payment.Status
}

// ClassifyHTTPStatus maps a provider HTTP response code onto the error
// taxonomy: 5xx is provider-side transient, everything else non-2xx is a
// business rejection.
func ClassifyHTTPStatus(statusCode int) error {
	if statusCode >= http.StatusInternalServerError {
		return resilience.NewServerError(fmt.Errorf("provider returned %d", statusCode))
	}
	return resilience.NewBusinessError(fmt.Errorf("provider rejected request with %d", statusCode))
}
