package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	batchapp "payrail-server/internal/application/batchtransfer"
)

// BatchHandler bulk batch submission handler
type BatchHandler struct {
	batchService *batchapp.BatchApplicationService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService *batchapp.BatchApplicationService) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
	}
}

// SubmitBatch accepts a bulk batch for submission.
func (h *BatchHandler) SubmitBatch(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody SubmitBatchRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entries := make([]batchapp.BatchEntry, 0, len(reqBody.Entries))
	for _, entry := range reqBody.Entries {
		amount, err := decimal.NewFromString(entry.Amount)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid amount format")
		}
		entries = append(entries, batchapp.BatchEntry{
			Amount:        amount,
			Currency:      entry.Currency,
			RecipientIBAN: entry.RecipientIBAN,
			RecipientName: entry.RecipientName,
			Description:   entry.Description,
		})
	}

	resp, err := h.batchService.SubmitBatch(c.Request().Context(), &batchapp.SubmitBatchRequest{
		UserID:      userID,
		Description: reqBody.Description,
		Entries:     entries,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, SubmitBatchResponse{
		BatchID:           resp.BatchID,
		Status:            resp.Status,
		EntryCount:        resp.EntryCount,
		ControlSum:        resp.ControlSum,
		PaymentIDs:        resp.PaymentIDs,
		ProviderReference: resp.ProviderReference,
	})
}

// GetBatch returns one batch with its member statuses.
func (h *BatchHandler) GetBatch(c echo.Context) error {
	batchID := c.Param("batch_id")
	if batchID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "batch_id is required")
	}

	resp, err := h.batchService.GetBatch(c.Request().Context(), batchID)
	if err != nil {
		return err
	}

	members := make([]BatchMemberResponse, 0, len(resp.Members))
	for _, m := range resp.Members {
		members = append(members, BatchMemberResponse{
			PaymentID:     m.PaymentID,
			RecipientName: m.RecipientName,
			Amount:        m.Amount,
			Status:        m.Status,
		})
	}

	return c.JSON(http.StatusOK, GetBatchResponse{
		BatchID:     resp.BatchID,
		Description: resp.Description,
		Status:      resp.Status,
		EntryCount:  resp.EntryCount,
		ControlSum:  resp.ControlSum,
		Members:     members,
	})
}
