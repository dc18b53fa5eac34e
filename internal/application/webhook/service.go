package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payrail-server/internal/domain/payment"
	"payrail-server/internal/domain/webhook"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/infrastructure/provider"
)

// WebhookApplicationService inbound provider notification flow: authenticate,
// deduplicate, translate the provider status, and advance the payment
// lifecycle exactly once per distinct delivery.
type WebhookApplicationService struct {
	paymentRepo   payment.Repository
	dedupStore    webhook.DedupStore
	verifier      *SignatureVerifier
	gateways      *provider.Registry
	balances      BalanceUpdater
	notifications NotificationDispatcher
	invoices      InvoiceRequester
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer

	// overridable in tests
	now func() time.Time
}

// NewWebhookApplicationService creates a new WebhookApplicationService.
func NewWebhookApplicationService(
	paymentRepo payment.Repository,
	dedupStore webhook.DedupStore,
	verifier *SignatureVerifier,
	gateways *provider.Registry,
	balances BalanceUpdater,
	notifications NotificationDispatcher,
	invoices InvoiceRequester,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *WebhookApplicationService {
	return &WebhookApplicationService{
		paymentRepo:   paymentRepo,
		dedupStore:    dedupStore,
		verifier:      verifier,
		gateways:      gateways,
		balances:      balances,
		notifications: notifications,
		invoices:      invoices,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("webhook-service"),
		now:           time.Now,
	}
}

// notification the provider-agnostic fields extracted from a delivery body.
// Providers name the correlation id differently; the first non-empty one
// wins.
type notification struct {
	EndToEndID string `json:"end_to_end_id"`
	Reference  string `json:"reference"`
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
}

func (n *notification) paymentID() string {
	switch {
	case n.EndToEndID != "":
		return n.EndToEndID
	case n.Reference != "":
		return n.Reference
	default:
		return n.PaymentID
	}
}

// Process handles one delivery. Signature verification happens before any
// state is touched; the dedup claim happens before parsing so replayed
// payloads are dropped without reprocessing. Duplicate and out-of-order
// deliveries are acknowledged with 200 so the provider stops redelivering.
func (s *WebhookApplicationService) Process(ctx context.Context, req *ProcessRequest) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "WebhookApplicationService.Process")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", req.Provider),
		attribute.Int("body_bytes", len(req.Body)),
	)

	prov, err := payment.NewProvider(req.Provider)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordWebhook(ctx, req.Provider, "unknown_provider")
		return &Outcome{HTTPStatus: http.StatusNotFound, Message: "unknown provider"}, payment.ErrInvalidProvider
	}

	if err := s.verifier.Verify(prov, req.Signature, req.Body); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Warn(ctx, "Webhook signature rejected", map[string]interface{}{
			"provider": prov.String(),
		})
		s.metrics.RecordWebhook(ctx, prov.String(), "invalid_signature")
		return &Outcome{HTTPStatus: http.StatusUnauthorized, Message: "invalid signature"}, err
	}

	payloadHash := PayloadHash(req.Body)
	first, err := s.dedupStore.Claim(ctx, prov, payloadHash, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return &Outcome{HTTPStatus: http.StatusInternalServerError, Message: "dedup claim failed"}, fmt.Errorf("failed to claim dedup entry: %w", err)
	}
	if !first {
		s.logger.Info(ctx, "Duplicate webhook delivery dropped", map[string]interface{}{
			"provider":     prov.String(),
			"payload_hash": payloadHash,
		})
		s.metrics.RecordWebhookDuplicate(ctx, prov.String())
		s.metrics.RecordWebhook(ctx, prov.String(), "duplicate")
		return &Outcome{HTTPStatus: http.StatusOK, Message: "duplicate delivery", Duplicate: true}, nil
	}

	var note notification
	if err := json.Unmarshal(req.Body, &note); err != nil || note.paymentID() == "" || note.Status == "" {
		span.SetStatus(otelcodes.Error, webhook.ErrInvalidPayload.Error())
		s.metrics.RecordWebhook(ctx, prov.String(), "invalid_payload")
		return &Outcome{HTTPStatus: http.StatusBadRequest, Message: "unparsable payload"}, webhook.ErrInvalidPayload
	}
	paymentID := note.paymentID()
	span.SetAttributes(attribute.String("payment_id", paymentID))

	record, err := s.paymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			s.logger.Warn(ctx, "Webhook for unknown payment", map[string]interface{}{
				"provider":   prov.String(),
				"payment_id": paymentID,
			})
			s.metrics.RecordWebhook(ctx, prov.String(), "unknown_payment")
			return &Outcome{HTTPStatus: http.StatusNotFound, Message: "unknown payment", PaymentID: paymentID}, err
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return &Outcome{HTTPStatus: http.StatusInternalServerError, Message: "lookup failed"}, fmt.Errorf("failed to find payment: %w", err)
	}

	gateway, err := s.gateways.Gateway(prov)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return &Outcome{HTTPStatus: http.StatusInternalServerError, Message: "no gateway"}, err
	}
	mapped := gateway.MapStatus(note.Status)

	event := &payment.Event{
		EventID:        s.generateEventID(),
		PaymentID:      record.PaymentID(),
		Provider:       prov,
		ProviderStatus: note.Status,
		MappedStatus:   mapped,
		PayloadHash:    payloadHash,
		RawPayload:     req.Body,
		ReceivedAt:     s.now(),
	}
	if err := s.paymentRepo.SaveEvent(ctx, event); err != nil {
		s.logger.Error(ctx, "Failed to store webhook event", err, map[string]interface{}{
			"payment_id": record.PaymentID(),
			"event_id":   event.EventID,
		})
	}

	// An unmapped provider code never moves the lifecycle.
	if mapped == payment.StatusUnknown {
		s.logger.Warn(ctx, "Unmapped provider status", map[string]interface{}{
			"provider":        prov.String(),
			"payment_id":      record.PaymentID(),
			"provider_status": note.Status,
		})
		s.metrics.RecordWebhook(ctx, prov.String(), "unmapped_status")
		return &Outcome{
			HTTPStatus: http.StatusOK,
			Message:    "status not mapped, no transition",
			PaymentID:  record.PaymentID(),
			EventID:    event.EventID,
		}, nil
	}

	previous := record.Status()
	if mapped == previous || !previous.CanTransitionTo(mapped) {
		// Out-of-order or repeated notification. The delivery is still
		// acknowledged so the provider stops resending it.
		s.logger.Info(ctx, "Webhook ignored by state machine", map[string]interface{}{
			"payment_id": record.PaymentID(),
			"from":       previous.String(),
			"to":         mapped.String(),
		})
		s.metrics.RecordWebhook(ctx, prov.String(), "ignored_transition")
		return &Outcome{
			HTTPStatus: http.StatusOK,
			Message:    fmt.Sprintf("transition %s to %s ignored", previous, mapped),
			PaymentID:  record.PaymentID(),
			EventID:    event.EventID,
			NewStatus:  previous.String(),
		}, nil
	}

	if err := s.paymentRepo.UpdateStatusCAS(ctx, record.PaymentID(), previous, mapped); err != nil {
		if errors.Is(err, payment.ErrStatusConflict) {
			// Another delivery advanced the payment between read and write.
			s.logger.Info(ctx, "Webhook lost status race", map[string]interface{}{
				"payment_id": record.PaymentID(),
				"from":       previous.String(),
				"to":         mapped.String(),
			})
			s.metrics.RecordWebhook(ctx, prov.String(), "lost_race")
			return &Outcome{
				HTTPStatus: http.StatusOK,
				Message:    "superseded by a concurrent update",
				PaymentID:  record.PaymentID(),
				EventID:    event.EventID,
			}, nil
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return &Outcome{HTTPStatus: http.StatusInternalServerError, Message: "status update failed"}, fmt.Errorf("failed to update payment status: %w", err)
	}
	_ = record.TransitionTo(mapped)

	s.logger.Info(ctx, "Payment advanced by webhook", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"provider":   prov.String(),
		"from":       previous.String(),
		"to":         mapped.String(),
	})
	s.metrics.RecordWebhook(ctx, prov.String(), "processed")

	s.runSideEffects(ctx, record, previous)

	return &Outcome{
		HTTPStatus: http.StatusOK,
		Message:    "processed",
		PaymentID:  record.PaymentID(),
		EventID:    event.EventID,
		NewStatus:  mapped.String(),
	}, nil
}

// runSideEffects fires the downstream hooks for an applied transition. The
// transition is already durable; a hook failure is logged and never rolls it
// back.
func (s *WebhookApplicationService) runSideEffects(ctx context.Context, record *payment.Record, previous payment.Status) {
	if err := s.notifications.DispatchStatusChange(ctx, record, previous); err != nil {
		s.logger.Error(ctx, "Notification dispatch failed", err, map[string]interface{}{
			"payment_id": record.PaymentID(),
		})
	}
	switch record.Status() {
	case payment.StatusCompleted:
		if err := s.balances.ApplyCompleted(ctx, record); err != nil {
			s.logger.Error(ctx, "Balance update failed", err, map[string]interface{}{
				"payment_id": record.PaymentID(),
			})
		}
		if err := s.invoices.RequestInvoice(ctx, record); err != nil {
			s.logger.Error(ctx, "Invoice request failed", err, map[string]interface{}{
				"payment_id": record.PaymentID(),
			})
		}
	case payment.StatusRefunded:
		if err := s.balances.ApplyRefund(ctx, record); err != nil {
			s.logger.Error(ctx, "Balance adjustment failed", err, map[string]interface{}{
				"payment_id": record.PaymentID(),
			})
		}
	}
}

// generateEventID issues a new event id.
func (s *WebhookApplicationService) generateEventID() string {
	return fmt.Sprintf("evt_%s", uuid.NewString())
}
