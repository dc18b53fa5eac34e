package card

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

// Gateway card processor gateway. Charges are created over a JSON API; the
// processor signs its webhooks with a timestamped HMAC.
type Gateway struct {
	cfg     *config.CardConfig
	client  *http.Client
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
}

// NewGateway creates a card gateway with its own HTTP client.
func NewGateway(cfg *config.CardConfig, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Gateway {
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Provider returns the provider identifier.
func (g *Gateway) Provider() payment.Provider {
	return payment.ProviderCard
}

// Submit creates a charge at the card processor.
func (g *Gateway) Submit(ctx context.Context, record *payment.Record) (*provider.SubmitResult, error) {
	start := time.Now()

	payload := map[string]interface{}{
		"reference":   record.PaymentID(),
		"amount":      record.Amount().StringFixed(2),
		"currency":    record.Currency(),
		"description": record.Description(),
		"payee": map[string]string{
			"name": record.RecipientName(),
			"iban": record.RecipientIBAN(),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", g.cfg.APIKey)
	req.Header.Set(provider.CorrelationHeader, uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.RecordProviderCall(ctx, payment.ProviderCard.String(), time.Since(start).Seconds())
		return nil, resilience.NewNetworkError(err)
	}
	defer resp.Body.Close()
	g.metrics.RecordProviderCall(ctx, payment.ProviderCard.String(), time.Since(start).Seconds())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, provider.ClassifyHTTPStatus(resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewNetworkError(err)
	}

	var ack struct {
		ChargeID string `json:"charge_id"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, resilience.NewServerError(fmt.Errorf("unreadable processor response: %w", err))
	}

	g.logger.Info(ctx, "Card charge created", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"charge_id":  ack.ChargeID,
		"status":     ack.Status,
	})

	return &provider.SubmitResult{
		ProviderReference: ack.ChargeID,
		RawStatus:         ack.Status,
		Status:            g.MapStatus(ack.Status),
	}, nil
}

// MapStatus translates processor status vocabulary into the canonical enum.
// Unrecognized codes map to StatusUnknown, never to a terminal status.
func (g *Gateway) MapStatus(code string) payment.Status {
	switch code {
	case "created":
		return payment.StatusPending
	case "authorized":
		return payment.StatusAwaitingBank
	case "capture_pending", "processing":
		return payment.StatusProcessing
	case "captured", "settled", "succeeded":
		return payment.StatusCompleted
	case "declined", "failed":
		return payment.StatusFailed
	case "voided":
		return payment.StatusCancelled
	case "expired":
		return payment.StatusExpired
	case "refunded":
		return payment.StatusRefunded
	default:
		return payment.StatusUnknown
	}
}
