package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"payrail-server/internal/domain/batch"
	"payrail-server/internal/domain/deadletter"
	"payrail-server/internal/domain/payment"
	"payrail-server/internal/domain/webhook"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/infrastructure/resilience"
)

// ErrorResponse error response body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// sentinelMapping one domain sentinel and its HTTP shape
type sentinelMapping struct {
	err    error
	status int
	code   string
}

// sentinelMappings domain error to HTTP status translation, checked in order
var sentinelMappings = []sentinelMapping{
	{payment.ErrInvalidPaymentID, http.StatusBadRequest, "invalid_payment_id"},
	{payment.ErrInvalidUserID, http.StatusBadRequest, "invalid_user_id"},
	{payment.ErrInvalidKind, http.StatusBadRequest, "invalid_kind"},
	{payment.ErrInvalidProvider, http.StatusBadRequest, "invalid_provider"},
	{payment.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{payment.ErrInvalidRecipientName, http.StatusBadRequest, "invalid_recipient_name"},
	{payment.ErrInvalidIBAN, http.StatusBadRequest, "invalid_iban"},
	{payment.ErrInvalidDescription, http.StatusBadRequest, "invalid_description"},
	{payment.ErrAmountExceedsCeiling, http.StatusUnprocessableEntity, "amount_exceeds_ceiling"},
	{payment.ErrPaymentNotFound, http.StatusNotFound, "payment_not_found"},
	{payment.ErrStatusConflict, http.StatusConflict, "status_conflict"},
	{payment.ErrInvalidStatusTransition, http.StatusConflict, "invalid_status_transition"},
	{payment.ErrDuplicateClientReference, http.StatusConflict, "duplicate_client_reference"},
	{batch.ErrBatchNotFound, http.StatusNotFound, "batch_not_found"},
	{batch.ErrInvalidBatchID, http.StatusBadRequest, "invalid_batch_id"},
	{batch.ErrEmptyBatch, http.StatusBadRequest, "empty_batch"},
	{batch.ErrTooManyEntries, http.StatusUnprocessableEntity, "too_many_entries"},
	{batch.ErrBatchAmountExceedsCeiling, http.StatusUnprocessableEntity, "batch_amount_exceeds_ceiling"},
	{deadletter.ErrEntryNotFound, http.StatusNotFound, "dead_letter_entry_not_found"},
	{webhook.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
	{webhook.ErrStaleTimestamp, http.StatusUnauthorized, "stale_timestamp"},
	{webhook.ErrInvalidPayload, http.StatusBadRequest, "invalid_payload"},
	{resilience.ErrCircuitOpen, http.StatusServiceUnavailable, "circuit_open"},
}

// ErrorHandlerMiddleware translates errors into HTTP responses
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// handleError maps an error onto its HTTP response.
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, m := range sentinelMappings {
		if errors.Is(err, m.err) {
			logger.Warn(ctx, "Request rejected", map[string]interface{}{
				"error": err.Error(),
				"code":  m.code,
			})
			return c.JSON(m.status, ErrorResponse{
				Error:   m.code,
				Message: err.Error(),
			})
		}
	}

	// an exhausted retry budget means the provider never accepted the call
	var exhausted *resilience.ExhaustedError
	if errors.As(err, &exhausted) {
		logger.Warn(ctx, "Provider submission exhausted", map[string]interface{}{
			"operation": exhausted.Operation,
			"attempts":  exhausted.Attempts,
		})
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "provider_unavailable",
			Message: exhausted.Error(),
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
