package ideal

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

// Gateway iDEAL-class PSP gateway. Payments are created over a JSON API and
// completed asynchronously after the payer's bank redirect.
type Gateway struct {
	cfg     *config.ProviderConfig
	client  *http.Client
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
}

// NewGateway creates an iDEAL gateway with its own HTTP client.
func NewGateway(cfg *config.ProviderConfig, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Gateway {
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Provider returns the provider identifier.
func (g *Gateway) Provider() payment.Provider {
	return payment.ProviderIDEAL
}

// createRequest PSP payment creation payload
type createRequest struct {
	Reference   string `json:"reference"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Beneficiary struct {
		Name string `json:"name"`
		IBAN string `json:"iban"`
	} `json:"beneficiary"`
}

// createResponse PSP payment creation acknowledgement
type createResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// Submit creates a payment at the PSP.
func (g *Gateway) Submit(ctx context.Context, record *payment.Record) (*provider.SubmitResult, error) {
	start := time.Now()

	payload := createRequest{
		Reference:   record.PaymentID(),
		Amount:      record.Amount().StringFixed(2),
		Currency:    record.Currency(),
		Description: record.Description(),
	}
	payload.Beneficiary.Name = record.RecipientName()
	payload.Beneficiary.IBAN = record.RecipientIBAN()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set(provider.CorrelationHeader, uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.RecordProviderCall(ctx, payment.ProviderIDEAL.String(), time.Since(start).Seconds())
		return nil, resilience.NewNetworkError(err)
	}
	defer resp.Body.Close()
	g.metrics.RecordProviderCall(ctx, payment.ProviderIDEAL.String(), time.Since(start).Seconds())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, provider.ClassifyHTTPStatus(resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewNetworkError(err)
	}

	var ack createResponse
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, resilience.NewServerError(fmt.Errorf("unreadable PSP response: %w", err))
	}

	g.logger.Info(ctx, "PSP payment created", map[string]interface{}{
		"payment_id": record.PaymentID(),
		"psp_id":     ack.PaymentID,
		"psp_status": ack.Status,
	})

	return &provider.SubmitResult{
		ProviderReference: ack.PaymentID,
		RawStatus:         ack.Status,
		Status:            g.MapStatus(ack.Status),
	}, nil
}

// MapStatus translates PSP status vocabulary into the canonical enum.
// Unrecognized codes map to StatusUnknown, never to a terminal status.
func (g *Gateway) MapStatus(code string) payment.Status {
	switch code {
	case "open", "created":
		return payment.StatusPending
	case "pending_authorization":
		return payment.StatusAwaitingBank
	case "pending", "authorized":
		return payment.StatusProcessing
	case "paid", "success":
		return payment.StatusCompleted
	case "failed", "failure":
		return payment.StatusFailed
	case "cancelled", "canceled":
		return payment.StatusCancelled
	case "expired":
		return payment.StatusExpired
	case "refunded", "charged_back":
		return payment.StatusRefunded
	default:
		return payment.StatusUnknown
	}
}
