package payment

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
)

const (
	// MaxRecipientNameLength maximum recipient display name length
	MaxRecipientNameLength = 70
	// MaxDescriptionLength maximum remittance description length
	MaxDescriptionLength = 140
)

// Record a tracked payment. Created pending by the submission path, mutated
// only by the gateway (on send) and the webhook ingestor (on provider
// callback), never deleted.
type Record struct {
	paymentID       string
	userID          string
	kind            Kind
	provider        Provider
	amount          decimal.Decimal
	currency        string
	recipientIBAN   string
	recipientName   string
	description     string
	status          Status
	batchID         *string
	clientReference string
	metadata        map[string]string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewRecord creates a new payment record in pending status.
func NewRecord(
	paymentID string,
	userID string,
	kind Kind,
	provider Provider,
	amount decimal.Decimal,
	currency string,
	recipientIBAN string,
	recipientName string,
	description string,
) (*Record, error) {
	if !idRegex.MatchString(paymentID) {
		return nil, ErrInvalidPaymentID
	}
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if !provider.Valid() {
		return nil, ErrInvalidProvider
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if amount.GreaterThan(kind.Ceiling()) {
		return nil, ErrAmountExceedsCeiling
	}
	if recipientName == "" || len(recipientName) > MaxRecipientNameLength {
		return nil, ErrInvalidRecipientName
	}
	if description == "" || len(description) > MaxDescriptionLength {
		return nil, ErrInvalidDescription
	}

	now := time.Now()
	return &Record{
		paymentID:     paymentID,
		userID:        userID,
		kind:          kind,
		provider:      provider,
		amount:        amount,
		currency:      currency,
		recipientIBAN: recipientIBAN,
		recipientName: recipientName,
		description:   description,
		status:        StatusPending,
		metadata:      make(map[string]string),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Restore rebuilds a record from persisted state without re-validating
// business rules. Used by repositories only.
func Restore(
	paymentID string,
	userID string,
	kind Kind,
	provider Provider,
	amount decimal.Decimal,
	currency string,
	recipientIBAN string,
	recipientName string,
	description string,
	status Status,
	batchID *string,
	clientReference string,
	metadata map[string]string,
	createdAt time.Time,
	updatedAt time.Time,
) *Record {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &Record{
		paymentID:       paymentID,
		userID:          userID,
		kind:            kind,
		provider:        provider,
		amount:          amount,
		currency:        currency,
		recipientIBAN:   recipientIBAN,
		recipientName:   recipientName,
		description:     description,
		status:          status,
		batchID:         batchID,
		clientReference: clientReference,
		metadata:        metadata,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// PaymentID returns the payment id.
func (r *Record) PaymentID() string {
	return r.paymentID
}

// UserID returns the platform user the payment belongs to.
func (r *Record) UserID() string {
	return r.userID
}

// Kind returns the payment kind.
func (r *Record) Kind() Kind {
	return r.kind
}

// Provider returns the provider handling this payment.
func (r *Record) Provider() Provider {
	return r.provider
}

// Amount returns the payment amount.
func (r *Record) Amount() decimal.Decimal {
	return r.amount
}

// Currency returns the ISO currency code.
func (r *Record) Currency() string {
	return r.currency
}

// RecipientIBAN returns the recipient account identifier.
func (r *Record) RecipientIBAN() string {
	return r.recipientIBAN
}

// RecipientName returns the recipient display name.
func (r *Record) RecipientName() string {
	return r.recipientName
}

// Description returns the remittance description.
func (r *Record) Description() string {
	return r.description
}

// Status returns the current lifecycle status.
func (r *Record) Status() Status {
	return r.status
}

// BatchID returns the bulk batch id, nil for standalone payments.
func (r *Record) BatchID() *string {
	return r.batchID
}

// ClientReference returns the caller-supplied idempotency reference.
func (r *Record) ClientReference() string {
	return r.clientReference
}

// Metadata returns provider-specific correlation data.
func (r *Record) Metadata() map[string]string {
	return r.metadata
}

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the last-updated timestamp.
func (r *Record) UpdatedAt() time.Time {
	return r.updatedAt
}

// SetBatchID links the payment to a bulk batch.
func (r *Record) SetBatchID(batchID string) {
	r.batchID = &batchID
	r.updatedAt = time.Now()
}

// SetClientReference sets the caller-supplied idempotency reference.
func (r *Record) SetClientReference(ref string) {
	r.clientReference = ref
	r.updatedAt = time.Now()
}

// SetMetadata stores a provider correlation entry.
func (r *Record) SetMetadata(key, value string) {
	r.metadata[key] = value
	r.updatedAt = time.Now()
}

// TransitionTo applies a lifecycle transition, rejecting anything the state
// machine does not allow.
func (r *Record) TransitionTo(next Status) error {
	if !r.status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	r.status = next
	r.updatedAt = time.Now()
	return nil
}

// MustNewRecord test helper: calls NewRecord and panics on error.
func MustNewRecord(
	paymentID string,
	userID string,
	kind Kind,
	provider Provider,
	amount decimal.Decimal,
	currency string,
	recipientIBAN string,
	recipientName string,
	description string,
) *Record {
	r, err := NewRecord(paymentID, userID, kind, provider, amount, currency, recipientIBAN, recipientName, description)
	if err != nil {
		panic(err)
	}
	return r
}
