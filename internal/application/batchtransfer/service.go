package batchtransfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payrail-server/internal/domain/batch"
	"payrail-server/internal/domain/deadletter"
	"payrail-server/internal/domain/payment"
	"payrail-server/internal/domain/service"
	"payrail-server/internal/infrastructure/config"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/infrastructure/provider"
	"payrail-server/internal/infrastructure/provider/sepa"
	"payrail-server/internal/infrastructure/resilience"
)

// BatchApplicationService SEPA bulk submission flow. All member payments and
// the batch row are created atomically; the batch then goes out as a single
// credit transfer initiation document.
type BatchApplicationService struct {
	paymentRepo    payment.Repository
	batchRepo      batch.Repository
	deadLetterRepo deadletter.Repository
	validator      *service.PaymentValidator
	sepaGateway    *sepa.Gateway
	executor       *resilience.Executor
	txManager      payment.TransactionManager
	opts           resilience.Options
	logger         *otelinfra.Logger
	metrics        *otelinfra.Metrics
	tracer         trace.Tracer
}

// NewBatchApplicationService creates a new BatchApplicationService.
func NewBatchApplicationService(
	paymentRepo payment.Repository,
	batchRepo batch.Repository,
	deadLetterRepo deadletter.Repository,
	validator *service.PaymentValidator,
	sepaGateway *sepa.Gateway,
	executor *resilience.Executor,
	txManager payment.TransactionManager,
	cfg *config.ResilienceConfig,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *BatchApplicationService {
	return &BatchApplicationService{
		paymentRepo:    paymentRepo,
		batchRepo:      batchRepo,
		deadLetterRepo: deadLetterRepo,
		validator:      validator,
		sepaGateway:    sepaGateway,
		executor:       executor,
		txManager:      txManager,
		opts: resilience.Options{
			MaxRetries:        cfg.MaxRetries,
			BaseDelay:         cfg.BaseDelay,
			UseCircuitBreaker: true,
		},
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("batch-service"),
	}
}

// SubmitBatch validates all entries, persists the batch with its members in
// one transaction, and uploads the bulk document. Validation is all-or-
// nothing: one bad entry rejects the whole batch before anything is stored.
func (s *BatchApplicationService) SubmitBatch(ctx context.Context, req *SubmitBatchRequest) (*SubmitBatchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BatchApplicationService.SubmitBatch")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int("entry_count", len(req.Entries)),
	)

	if len(req.Entries) == 0 {
		span.SetStatus(otelcodes.Error, batch.ErrEmptyBatch.Error())
		return nil, batch.ErrEmptyBatch
	}
	if len(req.Entries) > batch.MaxEntries {
		span.SetStatus(otelcodes.Error, batch.ErrTooManyEntries.Error())
		return nil, batch.ErrTooManyEntries
	}

	batchID := s.generateBatchID()
	members := make([]*payment.Record, 0, len(req.Entries))
	paymentIDs := make([]string, 0, len(req.Entries))
	for i, entry := range req.Entries {
		if err := s.validator.ValidatePayment(entry.Amount, payment.KindBulkMember, entry.RecipientIBAN, entry.RecipientName, entry.Description); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		record, err := payment.NewRecord(
			s.generatePaymentID(),
			req.UserID,
			payment.KindBulkMember,
			payment.ProviderSEPA,
			entry.Amount,
			entry.Currency,
			entry.RecipientIBAN,
			entry.RecipientName,
			entry.Description,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		record.SetBatchID(batchID)
		members = append(members, record)
		paymentIDs = append(paymentIDs, record.PaymentID())
	}

	// Entry count and total ceiling are checked here, before persistence.
	bulkBatch, err := batch.NewBulkBatch(batchID, req.Description, members)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.batchRepo.SaveTx(ctx, tx, bulkBatch); err != nil {
			return fmt.Errorf("failed to save batch: %w", err)
		}
		for _, member := range members {
			if err := s.paymentRepo.SaveTx(ctx, tx, member); err != nil {
				return fmt.Errorf("failed to save batch member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	for _, member := range members {
		s.metrics.RecordPayment(ctx, member.Kind().String(), member.Provider().String())
	}
	s.logger.Info(ctx, "Batch accepted for submission", map[string]interface{}{
		"batch_id":    batchID,
		"entry_count": bulkBatch.EntryCount(),
		"control_sum": bulkBatch.ControlSum().StringFixed(2),
	})

	doc, err := s.sepaGateway.Builder().Build(batchID, members, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	result, err := resilience.ExecuteTyped(ctx, s.executor, "sepa_batch_submit", func(ctx context.Context) (*provider.SubmitResult, error) {
		return s.sepaGateway.SubmitDocument(ctx, doc)
	}, s.opts)
	if err != nil {
		s.handleBatchFailure(ctx, span, bulkBatch, members, err)
		return nil, err
	}

	next := result.Status
	if next == payment.StatusUnknown || next == payment.StatusPending {
		next = payment.StatusAwaitingBank
	}
	s.fanOutStatus(ctx, members, next, result.ProviderReference)

	bulkBatch.Aggregate(members)
	if err := s.batchRepo.Save(ctx, bulkBatch); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save batch status: %w", err)
	}

	s.logger.Info(ctx, "Batch document accepted by bank", map[string]interface{}{
		"batch_id":           batchID,
		"provider_reference": result.ProviderReference,
		"status":             bulkBatch.Status().String(),
	})

	return &SubmitBatchResponse{
		BatchID:           batchID,
		Status:            bulkBatch.Status().String(),
		EntryCount:        bulkBatch.EntryCount(),
		ControlSum:        bulkBatch.ControlSum().StringFixed(2),
		PaymentIDs:        paymentIDs,
		ProviderReference: result.ProviderReference,
	}, nil
}

// GetBatch returns the batch with its status freshly aggregated from member
// states.
func (s *BatchApplicationService) GetBatch(ctx context.Context, batchID string) (*GetBatchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BatchApplicationService.GetBatch")
	defer span.End()

	span.SetAttributes(attribute.String("batch_id", batchID))

	bulkBatch, err := s.batchRepo.FindByBatchID(ctx, batchID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	members, err := s.paymentRepo.FindByBatchID(ctx, batchID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to load batch members: %w", err)
	}

	previous := bulkBatch.Status()
	if bulkBatch.Aggregate(members) != previous {
		if err := s.batchRepo.Save(ctx, bulkBatch); err != nil {
			s.logger.Error(ctx, "Failed to save aggregated batch status", err, map[string]interface{}{
				"batch_id": batchID,
			})
		}
	}

	resp := &GetBatchResponse{
		BatchID:     bulkBatch.BatchID(),
		Description: bulkBatch.Description(),
		Status:      bulkBatch.Status().String(),
		EntryCount:  bulkBatch.EntryCount(),
		ControlSum:  bulkBatch.ControlSum().StringFixed(2),
		Members:     make([]BatchMember, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, BatchMember{
			PaymentID:     m.PaymentID(),
			RecipientName: m.RecipientName(),
			Amount:        m.Amount().StringFixed(2),
			Status:        m.Status().String(),
		})
	}
	return resp, nil
}

// fanOutStatus advances all member payments concurrently after the document
// outcome is known. Members that already moved past pending are skipped by
// the compare-and-set.
func (s *BatchApplicationService) fanOutStatus(ctx context.Context, members []*payment.Record, next payment.Status, providerReference string) {
	var wg sync.WaitGroup
	for _, member := range members {
		wg.Add(1)
		go func(m *payment.Record) {
			defer wg.Done()
			if providerReference != "" {
				m.SetMetadata("provider_reference", providerReference)
			}
			if err := s.paymentRepo.UpdateStatusCAS(ctx, m.PaymentID(), payment.StatusPending, next); err != nil {
				if errors.Is(err, payment.ErrStatusConflict) {
					return
				}
				s.logger.Error(ctx, "Failed to advance batch member", err, map[string]interface{}{
					"payment_id": m.PaymentID(),
				})
				return
			}
			_ = m.TransitionTo(next)
			if err := s.paymentRepo.Save(ctx, m); err != nil {
				s.logger.Error(ctx, "Failed to save batch member", err, map[string]interface{}{
					"payment_id": m.PaymentID(),
				})
			}
		}(member)
	}
	wg.Wait()
}

// handleBatchFailure marks members failed and parks the batch for scheduled
// retry when the cause was transient.
func (s *BatchApplicationService) handleBatchFailure(ctx context.Context, span trace.Span, bulkBatch *batch.BulkBatch, members []*payment.Record, submitErr error) {
	span.RecordError(submitErr)
	span.SetStatus(otelcodes.Error, submitErr.Error())
	s.logger.Error(ctx, "Batch submission failed", submitErr, map[string]interface{}{
		"batch_id": bulkBatch.BatchID(),
	})

	s.fanOutStatus(ctx, members, payment.StatusFailed, "")
	bulkBatch.Aggregate(members)
	if err := s.batchRepo.Save(ctx, bulkBatch); err != nil {
		s.logger.Error(ctx, "Failed to save failed batch", err, map[string]interface{}{
			"batch_id": bulkBatch.BatchID(),
		})
	}

	var exhausted *resilience.ExhaustedError
	transient := errors.Is(submitErr, resilience.ErrCircuitOpen)
	if errors.As(submitErr, &exhausted) {
		transient = resilience.Categorize(exhausted.Err).Retryable()
	}
	if !transient {
		return
	}
	entry, err := deadletter.NewEntry(s.generateEntryID(), "sepa_batch_submit", bulkBatch.BatchID(), submitErr.Error(), time.Now())
	if err != nil {
		return
	}
	if err := s.deadLetterRepo.Save(ctx, entry); err != nil {
		s.logger.Error(ctx, "Failed to park dead-letter entry", err, map[string]interface{}{
			"batch_id": bulkBatch.BatchID(),
		})
	}
}

// generateBatchID issues a new batch id.
func (s *BatchApplicationService) generateBatchID() string {
	return fmt.Sprintf("batch_%s", uuid.NewString())
}

// generatePaymentID issues a new payment id.
func (s *BatchApplicationService) generatePaymentID() string {
	return fmt.Sprintf("pay_%s", uuid.NewString())
}

// generateEntryID issues a new dead-letter entry id.
func (s *BatchApplicationService) generateEntryID() string {
	return fmt.Sprintf("dlq_%s", uuid.NewString())
}
