package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	webhookapp "payrail-server/internal/application/webhook"
)

// SignatureHeader webhook signature header shared by all providers
const SignatureHeader = "X-Webhook-Signature"

// WebhookHandler inbound provider notification handler. The response status
// follows the service outcome: any 2xx acknowledges the delivery and stops
// provider redelivery, so rejected-but-final outcomes still answer 200.
type WebhookHandler struct {
	webhookService *webhookapp.WebhookApplicationService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookService *webhookapp.WebhookApplicationService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Receive handles one webhook delivery. The body is read raw because the
// signature covers the exact bytes on the wire.
func (h *WebhookHandler) Receive(c echo.Context) error {
	provider := c.Param("provider")
	if provider == "" {
		return echo.NewHTTPError(http.StatusNotFound, "provider is required")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
	}

	outcome, _ := h.webhookService.Process(c.Request().Context(), &webhookapp.ProcessRequest{
		Provider:  provider,
		Signature: c.Request().Header.Get(SignatureHeader),
		Body:      body,
	})

	return c.JSON(outcome.HTTPStatus, WebhookAckResponse{
		Message:   outcome.Message,
		PaymentID: outcome.PaymentID,
		EventID:   outcome.EventID,
		Status:    outcome.NewStatus,
	})
}
