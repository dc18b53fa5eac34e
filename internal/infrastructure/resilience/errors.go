package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"

	"payrail-server/internal/domain/batch"
	"payrail-server/internal/domain/payment"
)

// Category error taxonomy driving retry decisions
type Category string

const (
	CategoryNetwork    Category = "network"    // timeouts, connection failures; retryable
	CategoryServer     Category = "server"     // provider-side 5xx; retryable
	CategoryValidation Category = "validation" // malformed input, fails fast
	CategoryBusiness   Category = "business"   // rule violation, fails fast
	CategoryUnknown    Category = "unknown"    // retried at most once, conservatively
)

// Retryable reports whether the category allows unlimited retries within the
// budget. CategoryUnknown is handled separately (single retry).
func (c Category) Retryable() bool {
	return c == CategoryNetwork || c == CategoryServer
}

// ErrCircuitOpen returned without invoking the operation while the breaker
// for its name is open.
var ErrCircuitOpen = errors.New("service unavailable: circuit breaker open")

// Error an error tagged with its taxonomy category.
type Error struct {
	Category Category
	Err      error
}

// Error returns the string representation.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError tags err as a network failure.
func NewNetworkError(err error) *Error {
	return &Error{Category: CategoryNetwork, Err: err}
}

// NewServerError tags err as a provider-side transient failure.
func NewServerError(err error) *Error {
	return &Error{Category: CategoryServer, Err: err}
}

// NewValidationError tags err as malformed input.
func NewValidationError(err error) *Error {
	return &Error{Category: CategoryValidation, Err: err}
}

// NewBusinessError tags err as a business-rule violation.
func NewBusinessError(err error) *Error {
	return &Error{Category: CategoryBusiness, Err: err}
}

// ExhaustedError the single final error raised when the retry budget runs
// out, carrying the operation name, total attempts, and the last cause.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

// Error returns the string representation.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation %s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// validationSentinels domain errors that always categorize as validation
var validationSentinels = []error{
	payment.ErrInvalidAmount,
	payment.ErrInvalidIBAN,
	payment.ErrInvalidRecipientName,
	payment.ErrInvalidDescription,
	payment.ErrInvalidPaymentID,
	payment.ErrInvalidUserID,
	payment.ErrInvalidKind,
	payment.ErrInvalidProvider,
}

// businessSentinels domain errors that always categorize as business
var businessSentinels = []error{
	payment.ErrAmountExceedsCeiling,
	payment.ErrPaymentNotFound,
	payment.ErrInvalidStatusTransition,
	payment.ErrStatusConflict,
	payment.ErrDuplicateClientReference,
	batch.ErrTooManyEntries,
	batch.ErrBatchAmountExceedsCeiling,
	batch.ErrEmptyBatch,
}

// Categorize classifies an arbitrary error into the taxonomy. Explicitly
// tagged errors keep their category; known domain sentinels map to
// validation/business; transport-level failures map to network; everything
// else is unknown.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Category
	}

	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return CategoryValidation
		}
	}
	for _, sentinel := range businessSentinels {
		if errors.Is(err, sentinel) {
			return CategoryBusiness
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CategoryNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryNetwork
	}

	return CategoryUnknown
}
