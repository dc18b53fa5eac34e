package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics payment core instruments
type Metrics struct {
	// submitted payments
	PaymentCount metric.Int64Counter

	// processed webhooks by outcome
	WebhookCount metric.Int64Counter

	// duplicate webhook deliveries detected by the dedup index
	WebhookDuplicateCount metric.Int64Counter

	// circuit-breaker rejections per operation
	CircuitOpenCount metric.Int64Counter

	// outbound provider call latency
	ProviderCallDuration metric.Float64Histogram

	// request count
	RequestCount metric.Int64Counter

	// response time
	ResponseTime metric.Float64Histogram

	// error count by type
	ErrorCount metric.Int64Counter
}

// NewMetrics creates the instrument set on the named meter.
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	paymentCount, err := meter.Int64Counter(
		"payments_total",
		metric.WithDescription("Total number of submitted payments"),
	)
	if err != nil {
		return nil, err
	}

	webhookCount, err := meter.Int64Counter(
		"webhooks_total",
		metric.WithDescription("Total number of processed webhooks"),
	)
	if err != nil {
		return nil, err
	}

	webhookDuplicateCount, err := meter.Int64Counter(
		"webhook_duplicates_total",
		metric.WithDescription("Total number of duplicate webhook deliveries"),
	)
	if err != nil {
		return nil, err
	}

	circuitOpenCount, err := meter.Int64Counter(
		"circuit_breaker_rejections_total",
		metric.WithDescription("Total number of calls rejected by an open circuit breaker"),
	)
	if err != nil {
		return nil, err
	}

	providerCallDuration, err := meter.Float64Histogram(
		"provider_call_duration_seconds",
		metric.WithDescription("Outbound provider call duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PaymentCount:          paymentCount,
		WebhookCount:          webhookCount,
		WebhookDuplicateCount: webhookDuplicateCount,
		CircuitOpenCount:      circuitOpenCount,
		ProviderCallDuration:  providerCallDuration,
		RequestCount:          requestCount,
		ResponseTime:          responseTime,
		ErrorCount:            errorCount,
	}, nil
}

// RecordPayment counts a submitted payment.
func (m *Metrics) RecordPayment(ctx context.Context, kind, provider string) {
	m.PaymentCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("provider", provider),
		),
	)
}

// RecordWebhook counts a processed webhook by outcome.
func (m *Metrics) RecordWebhook(ctx context.Context, provider, outcome string) {
	m.WebhookCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordWebhookDuplicate counts a deduplicated webhook delivery.
func (m *Metrics) RecordWebhookDuplicate(ctx context.Context, provider string) {
	m.WebhookDuplicateCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
		),
	)
}

// RecordCircuitOpen counts a call rejected while a breaker is open.
func (m *Metrics) RecordCircuitOpen(ctx context.Context, operation string) {
	m.CircuitOpenCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
		),
	)
}

// RecordProviderCall records an outbound call's duration.
func (m *Metrics) RecordProviderCall(ctx context.Context, provider string, seconds float64) {
	m.ProviderCallDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("provider", provider),
		),
	)
}

// RecordRequest counts an inbound HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime records an inbound request's duration.
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError counts an error by type.
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
