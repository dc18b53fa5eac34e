package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	transferapp "payrail-server/internal/application/transfer"
)

// PaymentHandler single payment submission handler
type PaymentHandler struct {
	transferService *transferapp.TransferApplicationService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(transferService *transferapp.TransferApplicationService) *PaymentHandler {
	return &PaymentHandler{
		transferService: transferService,
	}
}

// SubmitPayment accepts a single payment for submission.
func (h *PaymentHandler) SubmitPayment(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody SubmitPaymentRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	amount, err := decimal.NewFromString(reqBody.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount format")
	}

	req := &transferapp.SubmitTransferRequest{
		UserID:          userID,
		Kind:            reqBody.Kind,
		Provider:        reqBody.Provider,
		Amount:          amount,
		Currency:        reqBody.Currency,
		RecipientIBAN:   reqBody.RecipientIBAN,
		RecipientName:   reqBody.RecipientName,
		Description:     reqBody.Description,
		ClientReference: reqBody.ClientReference,
	}

	resp, err := h.transferService.SubmitTransfer(c.Request().Context(), req)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	return c.JSON(status, SubmitPaymentResponse{
		PaymentID:         resp.PaymentID,
		Status:            resp.Status,
		ProviderReference: resp.ProviderReference,
		Duplicate:         resp.Duplicate,
	})
}
