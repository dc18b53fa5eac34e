package sepa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"payrail-server/internal/domain/payment"
	"payrail-server/internal/infrastructure/config"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/infrastructure/provider"
	"payrail-server/internal/infrastructure/resilience"
)

// Gateway bank SEPA rail gateway. Transfers are uploaded as credit transfer
// initiation documents; acceptance is asynchronous and the final status
// arrives by webhook.
type Gateway struct {
	cfg     *config.SEPAConfig
	client  *http.Client
	builder *DocumentBuilder
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
}

// NewGateway creates a SEPA gateway with its own HTTP client.
func NewGateway(cfg *config.SEPAConfig, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Gateway {
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		builder: NewDocumentBuilder(cfg.OriginatorName, cfg.OriginatorIBAN),
		logger:  logger,
		metrics: metrics,
	}
}

// Provider returns the provider identifier.
func (g *Gateway) Provider() payment.Provider {
	return payment.ProviderSEPA
}

// Builder returns the document builder for batch construction.
func (g *Gateway) Builder() *DocumentBuilder {
	return g.builder
}

// Submit uploads a single transfer as a one-entry document.
func (g *Gateway) Submit(ctx context.Context, record *payment.Record) (*provider.SubmitResult, error) {
	doc, err := g.builder.Build(record.PaymentID(), []*payment.Record{record}, time.Now())
	if err != nil {
		return nil, resilience.NewValidationError(err)
	}
	return g.SubmitDocument(ctx, doc)
}

// SubmitDocument uploads a built document to the bank rail.
func (g *Gateway) SubmitDocument(ctx context.Context, doc *BuiltDocument) (*provider.SubmitResult, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/credit-transfers", bytes.NewReader(doc.Payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set(provider.CorrelationHeader, uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.RecordProviderCall(ctx, payment.ProviderSEPA.String(), time.Since(start).Seconds())
		return nil, resilience.NewNetworkError(err)
	}
	defer resp.Body.Close()
	g.metrics.RecordProviderCall(ctx, payment.ProviderSEPA.String(), time.Since(start).Seconds())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, provider.ClassifyHTTPStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewNetworkError(err)
	}

	var ack struct {
		SubmissionID string `json:"submission_id"`
		Status       string `json:"status"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, resilience.NewServerError(fmt.Errorf("unreadable bank acknowledgement: %w", err))
	}

	g.logger.Info(ctx, "SEPA document accepted", map[string]interface{}{
		"message_id":    doc.MessageID,
		"submission_id": ack.SubmissionID,
		"entry_count":   doc.EntryCount,
		"control_sum":   doc.ControlSum.StringFixed(2),
	})

	return &provider.SubmitResult{
		ProviderReference: ack.SubmissionID,
		RawStatus:         ack.Status,
		Status:            g.MapStatus(ack.Status),
	}, nil
}

// MapStatus translates ISO transaction status codes into the canonical enum.
// Unrecognized codes map to StatusUnknown, never to a terminal status.
func (g *Gateway) MapStatus(code string) payment.Status {
	switch code {
	case "RCVD", "PDNG":
		return payment.StatusPending
	case "ACTC", "ACCP":
		return payment.StatusAwaitingBank
	case "ACSP", "ACWC", "PART":
		return payment.StatusProcessing
	case "ACSC", "ACCC":
		return payment.StatusCompleted
	case "RJCT":
		return payment.StatusFailed
	case "CANC":
		return payment.StatusCancelled
	default:
		return payment.StatusUnknown
	}
}
