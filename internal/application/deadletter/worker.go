package deadletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payrail-server/internal/application/transfer"
	"payrail-server/internal/domain/deadletter"
	"payrail-server/internal/domain/payment"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
)

const (
	// DefaultInterval how often the worker scans for due entries
	DefaultInterval = time.Minute
	// drainBatchSize due entries processed per scan
	drainBatchSize = 50
)

// Worker background reprocessor for dead-lettered payments. Each due entry is
// re-submitted as a fresh payment; the entry reschedules on failure and is
// abandoned after its retry budget.
type Worker struct {
	deadLetterRepo  deadletter.Repository
	paymentRepo     payment.Repository
	transferService *transfer.TransferApplicationService
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	interval        time.Duration

	// overridable in tests
	now func() time.Time
}

// NewWorker creates a dead-letter worker.
func NewWorker(
	deadLetterRepo deadletter.Repository,
	paymentRepo payment.Repository,
	transferService *transfer.TransferApplicationService,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *Worker {
	return &Worker{
		deadLetterRepo:  deadLetterRepo,
		paymentRepo:     paymentRepo,
		transferService: transferService,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("deadletter-worker"),
		interval:        DefaultInterval,
		now:             time.Now,
	}
}

// Run drains due entries on an interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info(ctx, "Dead-letter worker started", map[string]interface{}{
		"interval": w.interval.String(),
	})
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Dead-letter worker stopped", nil)
			return
		case <-ticker.C:
			if _, err := w.DrainOnce(ctx); err != nil {
				w.logger.Error(ctx, "Dead-letter drain failed", err, nil)
			}
		}
	}
}

// DrainOnce reprocesses every currently due entry and returns how many were
// attempted.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	ctx, span := w.tracer.Start(ctx, "Worker.DrainOnce")
	defer span.End()

	entries, err := w.deadLetterRepo.FindDue(ctx, w.now(), drainBatchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, fmt.Errorf("failed to find due entries: %w", err)
	}
	span.SetAttributes(attribute.Int("due_entries", len(entries)))

	for _, entry := range entries {
		w.processEntry(ctx, entry)
	}
	return len(entries), nil
}

// processEntry re-submits one parked payment. An entry whose payment already
// settled through another path is closed without a new submission.
func (w *Worker) processEntry(ctx context.Context, entry *deadletter.Entry) {
	original, err := w.paymentRepo.FindByPaymentID(ctx, entry.PaymentID())
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			// Batch-level entries reference a batch id, not a payment id.
			// Those need operator attention and run out their schedule here.
			w.reschedule(ctx, entry, "no payment record to resubmit")
			return
		}
		w.logger.Error(ctx, "Failed to load parked payment", err, map[string]interface{}{
			"entry_id":   entry.EntryID(),
			"payment_id": entry.PaymentID(),
		})
		return
	}

	if original.Status() != payment.StatusFailed {
		entry.Resolve(w.now())
		if err := w.deadLetterRepo.Save(ctx, entry); err != nil {
			w.logger.Error(ctx, "Failed to resolve dead-letter entry", err, map[string]interface{}{
				"entry_id": entry.EntryID(),
			})
			return
		}
		w.logger.Info(ctx, "Dead-letter entry resolved without resubmission", map[string]interface{}{
			"entry_id":   entry.EntryID(),
			"payment_id": entry.PaymentID(),
			"status":     original.Status().String(),
		})
		return
	}

	// The client reference scopes idempotency to this scheduled attempt, so
	// a crash mid-drain never double-pays within one attempt.
	clientReference := fmt.Sprintf("%s_retry_%d", entry.EntryID(), entry.RetryCount())
	resp, err := w.transferService.Resubmit(ctx, original, clientReference)
	if err != nil {
		w.reschedule(ctx, entry, err.Error())
		return
	}

	entry.Resolve(w.now())
	if err := w.deadLetterRepo.Save(ctx, entry); err != nil {
		w.logger.Error(ctx, "Failed to resolve dead-letter entry", err, map[string]interface{}{
			"entry_id": entry.EntryID(),
		})
		return
	}
	w.logger.Info(ctx, "Parked payment resubmitted", map[string]interface{}{
		"entry_id":       entry.EntryID(),
		"payment_id":     entry.PaymentID(),
		"new_payment_id": resp.PaymentID,
		"status":         resp.Status,
	})
}

// reschedule records a failed reprocessing attempt on the entry.
func (w *Worker) reschedule(ctx context.Context, entry *deadletter.Entry, cause string) {
	entry.Reschedule(cause, w.now())
	if err := w.deadLetterRepo.Save(ctx, entry); err != nil {
		w.logger.Error(ctx, "Failed to reschedule dead-letter entry", err, map[string]interface{}{
			"entry_id": entry.EntryID(),
		})
		return
	}
	if entry.Abandoned() {
		w.metrics.RecordError(ctx, "dead_letter_abandoned")
		w.logger.Warn(ctx, "Dead-letter entry abandoned", map[string]interface{}{
			"entry_id":   entry.EntryID(),
			"payment_id": entry.PaymentID(),
			"last_error": cause,
		})
		return
	}
	w.logger.Info(ctx, "Dead-letter entry rescheduled", map[string]interface{}{
		"entry_id":      entry.EntryID(),
		"payment_id":    entry.PaymentID(),
		"retry_count":   entry.RetryCount(),
		"next_retry_at": entry.NextRetryAt(),
	})
}

// ListEntries returns recent entries for the operator endpoint.
func (w *Worker) ListEntries(ctx context.Context, paymentID string) ([]*deadletter.Entry, error) {
	if paymentID == "" {
		return w.deadLetterRepo.FindDue(ctx, w.now(), drainBatchSize)
	}
	entry, err := w.deadLetterRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return []*deadletter.Entry{entry}, nil
}
