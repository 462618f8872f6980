package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/ports"
)

const maxBatchSize = 500

// ReturnQueue is the interface the handler uses to enqueue returns. It
// rejects unknown loans and book ids that disagree with the stored loan.
type ReturnQueue interface {
	EnqueueBatch(ctx context.Context, reqs []ports.ReturnRequest) (int, error)
}

// ReturnHandler accepts book-drop batches for asynchronous processing.
type ReturnHandler struct {
	queue ReturnQueue
}

// NewReturnHandler creates a ReturnHandler backed by the given queue.
func NewReturnHandler(queue ReturnQueue) *ReturnHandler {
	return &ReturnHandler{queue: queue}
}

// ReceiveBatch handles POST /v1/returns/batch: enqueues the returns and answers 202.
//
// @Summary      Queue a batch of returns
// @Description  Returns of the same book are applied in submission order.
// @Tags         circulation
// @Accept       json
// @Produce      json
// @Param        body  body      []returnItemRequest  true  "Returned loans"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/returns/batch [post]
func (h *ReturnHandler) ReceiveBatch(c echo.Context) error {
	var reqs []returnItemRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}
	if len(reqs) > maxBatchSize {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("batch exceeds %d returns", maxBatchSize))
	}

	inputs := make([]ports.ReturnRequest, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("return[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, ports.ReturnRequest{TransactionID: req.TransactionID, BookID: req.BookID})
	}

	n, err := h.queue.EnqueueBatch(c.Request().Context(), inputs)
	if errors.Is(err, domain.ErrTransactionNotFound) || errors.Is(err, domain.ErrBookMismatch) {
		return err
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			fmt.Sprintf("queued %d of %d returns before the queue stopped accepting", n, len(inputs)))
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "returns accepted", Count: n})
}
