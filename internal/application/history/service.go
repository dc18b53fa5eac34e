package history

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payrail-server/internal/domain/payment"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
)

// HistoryApplicationService read-side payment reporting.
type HistoryApplicationService struct {
	paymentRepo payment.Repository
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer
}

// NewHistoryApplicationService creates a new HistoryApplicationService.
func NewHistoryApplicationService(
	paymentRepo payment.Repository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		paymentRepo: paymentRepo,
		logger:      logger,
		metrics:     metrics,
		tracer:      otel.Tracer("history-service"),
	}
}

// GetPayment returns one payment by id.
func (s *HistoryApplicationService) GetPayment(ctx context.Context, paymentID string) (*PaymentView, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetPayment")
	defer span.End()

	span.SetAttributes(attribute.String("payment_id", paymentID))

	record, err := s.paymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	view := toPaymentView(record)
	return &view, nil
}

// ListPayments returns payments in the given status created within the time
// range, paginated.
func (s *HistoryApplicationService) ListPayments(ctx context.Context, req *ListPaymentsRequest) (*ListPaymentsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.ListPayments")
	defer span.End()

	span.SetAttributes(
		attribute.String("status", req.Status),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)

	status, err := payment.NewStatus(req.Status)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	records, err := s.paymentRepo.FindByStatusAndTimeRange(ctx, status, req.From, req.To, req.Limit, req.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list payments", err, map[string]interface{}{
			"status": req.Status,
		})
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	resp := &ListPaymentsResponse{
		Payments: make([]PaymentView, 0, len(records)),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	for _, record := range records {
		resp.Payments = append(resp.Payments, toPaymentView(record))
	}
	return resp, nil
}

// toPaymentView flattens a payment record into its transport shape.
func toPaymentView(record *payment.Record) PaymentView {
	batchID := ""
	if record.BatchID() != nil {
		batchID = *record.BatchID()
	}
	return PaymentView{
		PaymentID:         record.PaymentID(),
		UserID:            record.UserID(),
		Kind:              record.Kind().String(),
		Provider:          record.Provider().String(),
		Amount:            record.Amount().StringFixed(2),
		Currency:          record.Currency(),
		RecipientIBAN:     record.RecipientIBAN(),
		RecipientName:     record.RecipientName(),
		Description:       record.Description(),
		Status:            record.Status().String(),
		BatchID:           batchID,
		ClientReference:   record.ClientReference(),
		ProviderReference: record.Metadata()["provider_reference"],
		CreatedAt:         record.CreatedAt(),
		UpdatedAt:         record.UpdatedAt(),
	}
}
