package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	deadletterapp "payrail-server/internal/application/deadletter"
)

// DeadLetterHandler operator endpoints over parked payment operations
type DeadLetterHandler struct {
	worker *deadletterapp.Worker
}

// NewDeadLetterHandler creates a new DeadLetterHandler.
func NewDeadLetterHandler(worker *deadletterapp.Worker) *DeadLetterHandler {
	return &DeadLetterHandler{
		worker: worker,
	}
}

// DeadLetterEntryResponse one parked operation
type DeadLetterEntryResponse struct {
	EntryID     string    `json:"entry_id"`
	Operation   string    `json:"operation"`
	PaymentID   string    `json:"payment_id"`
	LastError   string    `json:"last_error"`
	RetryCount  int       `json:"retry_count"`
	NextRetryAt time.Time `json:"next_retry_at"`
	Abandoned   bool      `json:"abandoned"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListEntries returns due entries, or the entry for one payment when the
// payment_id query parameter is set.
func (h *DeadLetterHandler) ListEntries(c echo.Context) error {
	entries, err := h.worker.ListEntries(c.Request().Context(), c.QueryParam("payment_id"))
	if err != nil {
		return err
	}

	resp := make([]DeadLetterEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, DeadLetterEntryResponse{
			EntryID:     entry.EntryID(),
			Operation:   entry.Operation(),
			PaymentID:   entry.PaymentID(),
			LastError:   entry.LastError(),
			RetryCount:  entry.RetryCount(),
			NextRetryAt: entry.NextRetryAt(),
			Abandoned:   entry.Abandoned(),
			Resolved:    entry.Resolved(),
			CreatedAt:   entry.CreatedAt(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Drain triggers one reprocessing pass immediately.
func (h *DeadLetterHandler) Drain(c echo.Context) error {
	attempted, err := h.worker.DrainOnce(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"attempted": attempted})
}
