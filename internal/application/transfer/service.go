package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payrail-server/internal/domain/deadletter"
	"payrail-server/internal/domain/payment"
	"payrail-server/internal/domain/service"
	"payrail-server/internal/infrastructure/config"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/infrastructure/provider"
	"payrail-server/internal/infrastructure/resilience"
)

// TransferApplicationService single payment submission flow: validate,
// persist pending, submit through the provider gateway under the resilience
// executor, then advance the lifecycle from the provider acknowledgement.
type TransferApplicationService struct {
	paymentRepo    payment.Repository
	deadLetterRepo deadletter.Repository
	validator      *service.PaymentValidator
	gateways       *provider.Registry
	executor       *resilience.Executor
	opts           resilience.Options
	logger         *otelinfra.Logger
	metrics        *otelinfra.Metrics
	tracer         trace.Tracer
}

// NewTransferApplicationService creates a new TransferApplicationService.
func NewTransferApplicationService(
	paymentRepo payment.Repository,
	deadLetterRepo deadletter.Repository,
	validator *service.PaymentValidator,
	gateways *provider.Registry,
	executor *resilience.Executor,
	cfg *config.ResilienceConfig,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *TransferApplicationService {
	return &TransferApplicationService{
		paymentRepo:    paymentRepo,
		deadLetterRepo: deadLetterRepo,
		validator:      validator,
		gateways:       gateways,
		executor:       executor,
		opts: resilience.Options{
			MaxRetries:        cfg.MaxRetries,
			BaseDelay:         cfg.BaseDelay,
			UseCircuitBreaker: true,
		},
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("transfer-service"),
	}
}

// SubmitTransfer validates and submits a single payment. Resubmission under
// the same client reference returns the earlier payment instead of creating
// a second one.
func (s *TransferApplicationService) SubmitTransfer(ctx context.Context, req *SubmitTransferRequest) (*SubmitTransferResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TransferApplicationService.SubmitTransfer")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("kind", req.Kind),
		attribute.String("provider", req.Provider),
		attribute.String("amount", req.Amount.StringFixed(2)),
	)

	kind, err := payment.NewKind(req.Kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, payment.ErrInvalidKind
	}
	prov, err := payment.NewProvider(req.Provider)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, payment.ErrInvalidProvider
	}

	if err := s.validator.ValidatePayment(req.Amount, kind, req.RecipientIBAN, req.RecipientName, req.Description); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// Resubmission with an already-seen client reference is idempotent.
	if req.ClientReference != "" {
		existing, err := s.paymentRepo.FindByClientReference(ctx, req.UserID, req.ClientReference)
		if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to check client reference: %w", err)
		}
		if existing != nil {
			s.logger.Info(ctx, "Returning existing payment for client reference", map[string]interface{}{
				"payment_id":       existing.PaymentID(),
				"client_reference": req.ClientReference,
			})
			return &SubmitTransferResponse{
				PaymentID:         existing.PaymentID(),
				Status:            existing.Status().String(),
				ProviderReference: existing.Metadata()["provider_reference"],
				Duplicate:         true,
			}, nil
		}
	}

	record, err := payment.NewRecord(
		s.generatePaymentID(),
		req.UserID,
		kind,
		prov,
		req.Amount,
		req.Currency,
		req.RecipientIBAN,
		req.RecipientName,
		req.Description,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if req.ClientReference != "" {
		record.SetClientReference(req.ClientReference)
	}

	// The pending record is persisted before the outbound call so a crash
	// mid-submission leaves an auditable row instead of a lost payment.
	if err := s.paymentRepo.Save(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.metrics.RecordPayment(ctx, kind.String(), prov.String())
	s.logger.Info(ctx, "Payment accepted for submission", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"kind":       kind.String(),
		"provider":   prov.String(),
		"amount":     req.Amount.StringFixed(2),
	})

	return s.submit(ctx, span, record, true)
}

// Resubmit creates and submits a fresh payment carrying the same instruction
// as the original. Used by dead-letter reprocessing; failures are reported to
// the caller instead of being parked again.
func (s *TransferApplicationService) Resubmit(ctx context.Context, original *payment.Record, clientReference string) (*SubmitTransferResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TransferApplicationService.Resubmit")
	defer span.End()

	span.SetAttributes(
		attribute.String("original_payment_id", original.PaymentID()),
	)

	record, err := payment.NewRecord(
		s.generatePaymentID(),
		original.UserID(),
		original.Kind(),
		original.Provider(),
		original.Amount(),
		original.Currency(),
		original.RecipientIBAN(),
		original.RecipientName(),
		original.Description(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if clientReference != "" {
		record.SetClientReference(clientReference)
	}
	record.SetMetadata("retry_of", original.PaymentID())

	if err := s.paymentRepo.Save(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.logger.Info(ctx, "Resubmitting parked payment", map[string]interface{}{
		"payment_id":          record.PaymentID(),
		"original_payment_id": original.PaymentID(),
	})

	return s.submit(ctx, span, record, false)
}

// submit performs the outbound provider call for an already-persisted pending
// record and advances its status from the acknowledgement.
func (s *TransferApplicationService) submit(ctx context.Context, span trace.Span, record *payment.Record, parkOnFailure bool) (*SubmitTransferResponse, error) {
	gateway, err := s.gateways.Gateway(record.Provider())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	operationName := fmt.Sprintf("provider_submit_%s", record.Provider())
	result, err := resilience.ExecuteTyped(ctx, s.executor, operationName, func(ctx context.Context) (*provider.SubmitResult, error) {
		return gateway.Submit(ctx, record)
	}, s.opts)
	if err != nil {
		return nil, s.handleSubmitFailure(ctx, span, record, operationName, err, parkOnFailure)
	}

	record.SetMetadata("provider_reference", result.ProviderReference)
	record.SetMetadata("provider_status", result.RawStatus)
	if result.Status != payment.StatusUnknown && result.Status != record.Status() && record.Status().CanTransitionTo(result.Status) {
		if err := s.paymentRepo.UpdateStatusCAS(ctx, record.PaymentID(), record.Status(), result.Status); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to advance payment status: %w", err)
		}
		_ = record.TransitionTo(result.Status)
	}
	if err := s.paymentRepo.Save(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.logger.Info(ctx, "Payment submitted to provider", map[string]interface{}{
		"payment_id":         record.PaymentID(),
		"provider_reference": result.ProviderReference,
		"status":             record.Status().String(),
	})

	return &SubmitTransferResponse{
		PaymentID:         record.PaymentID(),
		Status:            record.Status().String(),
		ProviderReference: result.ProviderReference,
	}, nil
}

// handleSubmitFailure marks the payment failed and, for transient causes,
// parks a dead-letter entry for scheduled reprocessing.
func (s *TransferApplicationService) handleSubmitFailure(ctx context.Context, span trace.Span, record *payment.Record, operationName string, submitErr error, parkOnFailure bool) error {
	span.RecordError(submitErr)
	span.SetStatus(otelcodes.Error, submitErr.Error())
	s.logger.Error(ctx, "Provider submission failed", submitErr, map[string]interface{}{
		"payment_id": record.PaymentID(),
		"operation":  operationName,
	})

	if err := s.paymentRepo.UpdateStatusCAS(ctx, record.PaymentID(), payment.StatusPending, payment.StatusFailed); err != nil {
		s.logger.Error(ctx, "Failed to mark payment failed", err, map[string]interface{}{
			"payment_id": record.PaymentID(),
		})
	}

	var exhausted *resilience.ExhaustedError
	transient := errors.Is(submitErr, resilience.ErrCircuitOpen)
	if errors.As(submitErr, &exhausted) {
		transient = resilience.Categorize(exhausted.Err).Retryable()
	}
	if transient && parkOnFailure {
		entry, err := deadletter.NewEntry(s.generateEntryID(), operationName, record.PaymentID(), submitErr.Error(), time.Now())
		if err == nil {
			if saveErr := s.deadLetterRepo.Save(ctx, entry); saveErr != nil {
				s.logger.Error(ctx, "Failed to park dead-letter entry", saveErr, map[string]interface{}{
					"payment_id": record.PaymentID(),
				})
			} else {
				s.logger.Warn(ctx, "Payment parked for scheduled retry", map[string]interface{}{
					"payment_id":    record.PaymentID(),
					"entry_id":      entry.EntryID(),
					"next_retry_at": entry.NextRetryAt(),
				})
			}
		}
	}
	return submitErr
}

// generatePaymentID issues a new payment id.
func (s *TransferApplicationService) generatePaymentID() string {
	return fmt.Sprintf("pay_%s", uuid.NewString())
}

// generateEntryID issues a new dead-letter entry id.
func (s *TransferApplicationService) generateEntryID() string {
	return fmt.Sprintf("dlq_%s", uuid.NewString())
}
