package payment

import "errors"

var (
	// ErrPaymentNotFound no payment exists for the given id
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrInvalidPaymentID the payment id is malformed
	ErrInvalidPaymentID = errors.New("invalid payment id")
	// ErrInvalidUserID the user id is malformed
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidKind the payment kind is unknown
	ErrInvalidKind = errors.New("invalid payment kind")
	// ErrInvalidProvider the provider is unknown
	ErrInvalidProvider = errors.New("invalid provider")
	// ErrInvalidAmount the amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountExceedsCeiling the amount exceeds the per-kind ceiling
	ErrAmountExceedsCeiling = errors.New("amount exceeds ceiling")
	// ErrInvalidRecipientName the recipient name is empty or too long
	ErrInvalidRecipientName = errors.New("invalid recipient name")
	// ErrInvalidIBAN the recipient IBAN fails format validation
	ErrInvalidIBAN = errors.New("invalid iban")
	// ErrInvalidDescription the description is empty or too long
	ErrInvalidDescription = errors.New("invalid description")
	// ErrInvalidStatusTransition the lifecycle state machine rejects the transition
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrStatusConflict the record changed concurrently, compare-and-set lost
	ErrStatusConflict = errors.New("payment status conflict")
	// ErrDuplicateClientReference a payment with this client reference already exists
	ErrDuplicateClientReference = errors.New("duplicate client reference")
)
