package webhook

import (
	"context"

	"payrail-server/internal/domain/payment"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
)

// BalanceUpdater applies the financial effect of a settled payment to the
// platform ledger. ApplyRefund reverses a previously applied completion.
type BalanceUpdater interface {
	ApplyCompleted(ctx context.Context, record *payment.Record) error
	ApplyRefund(ctx context.Context, record *payment.Record) error
}

// NotificationDispatcher informs the affected user about a status change.
type NotificationDispatcher interface {
	DispatchStatusChange(ctx context.Context, record *payment.Record, previous payment.Status) error
}

// InvoiceRequester asks the billing pipeline to produce an invoice for a
// completed payment.
type InvoiceRequester interface {
	RequestInvoice(ctx context.Context, record *payment.Record) error
}

// LoggingSideEffects stand-in side-effect adapter used until the ledger,
// notification, and billing systems are attached. Each hook logs the event
// it would have forwarded.
type LoggingSideEffects struct {
	logger *otelinfra.Logger
}

// NewLoggingSideEffects creates a logging side-effect adapter.
func NewLoggingSideEffects(logger *otelinfra.Logger) *LoggingSideEffects {
	return &LoggingSideEffects{logger: logger}
}

// ApplyCompleted logs the balance update that would be applied.
func (l *LoggingSideEffects) ApplyCompleted(ctx context.Context, record *payment.Record) error {
	l.logger.Info(ctx, "Balance update for completed payment", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"user_id":    record.UserID(),
		"amount":     record.Amount().StringFixed(2),
	})
	return nil
}

// ApplyRefund logs the balance adjustment that would reverse the payment.
func (l *LoggingSideEffects) ApplyRefund(ctx context.Context, record *payment.Record) error {
	l.logger.Info(ctx, "Balance adjustment for refunded payment", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"user_id":    record.UserID(),
		"amount":     record.Amount().StringFixed(2),
	})
	return nil
}

// DispatchStatusChange logs the notification that would be sent.
func (l *LoggingSideEffects) DispatchStatusChange(ctx context.Context, record *payment.Record, previous payment.Status) error {
	l.logger.Info(ctx, "Status change notification", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"user_id":    record.UserID(),
		"from":       previous.String(),
		"to":         record.Status().String(),
	})
	return nil
}

// RequestInvoice logs the invoice request that would be issued.
func (l *LoggingSideEffects) RequestInvoice(ctx context.Context, record *payment.Record) error {
	l.logger.Info(ctx, "Invoice requested for completed payment", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"user_id":    record.UserID(),
	})
	return nil
}
