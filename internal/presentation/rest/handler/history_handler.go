package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	historyapp "payrail-server/internal/application/history"
)

// HistoryHandler payment reporting handler
type HistoryHandler struct {
	historyService *historyapp.HistoryApplicationService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService *historyapp.HistoryApplicationService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// GetPayment returns one payment by id.
func (h *HistoryHandler) GetPayment(c echo.Context) error {
	paymentID := c.Param("payment_id")
	if paymentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_id is required")
	}

	view, err := h.historyService.GetPayment(c.Request().Context(), paymentID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPaymentItem(view))
}

// ListPayments returns payments filtered by status and creation time range.
func (h *HistoryHandler) ListPayments(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	from, err := parseTimeParam(c.QueryParam("from"), time.Time{})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
	}
	to, err := parseTimeParam(c.QueryParam("to"), time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.historyService.ListPayments(c.Request().Context(), &historyapp.ListPaymentsRequest{
		Status: status,
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	payments := make([]PaymentItem, 0, len(resp.Payments))
	for i := range resp.Payments {
		payments = append(payments, toPaymentItem(&resp.Payments[i]))
	}

	return c.JSON(http.StatusOK, ListPaymentsResponse{
		Payments: payments,
		Limit:    resp.Limit,
		Offset:   resp.Offset,
	})
}

// parseTimeParam parses an RFC 3339 query parameter, empty means the default.
func parseTimeParam(value string, defaultValue time.Time) (time.Time, error) {
	if value == "" {
		return defaultValue, nil
	}
	return time.Parse(time.RFC3339, value)
}

// toPaymentItem flattens a payment view into its response shape.
func toPaymentItem(view *historyapp.PaymentView) PaymentItem {
	return PaymentItem{
		PaymentID:         view.PaymentID,
		UserID:            view.UserID,
		Kind:              view.Kind,
		Provider:          view.Provider,
		Amount:            view.Amount,
		Currency:          view.Currency,
		RecipientIBAN:     view.RecipientIBAN,
		RecipientName:     view.RecipientName,
		Description:       view.Description,
		Status:            view.Status,
		BatchID:           view.BatchID,
		ClientReference:   view.ClientReference,
		ProviderReference: view.ProviderReference,
		CreatedAt:         view.CreatedAt,
		UpdatedAt:         view.UpdatedAt,
	}
}
