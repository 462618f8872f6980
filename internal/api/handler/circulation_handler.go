package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/libraryhub/circulation/internal/api/metrics"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// CirculationHandler handles checkouts, returns, fines and loan listings.
type CirculationHandler struct {
	service ports.CirculationService
}

func NewCirculationHandler(service ports.CirculationService) *CirculationHandler {
	return &CirculationHandler{service: service}
}

// Checkout handles POST /v1/checkouts.
//
// @Summary      Check a book out to a user
// @Tags         circulation
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string           false  "Retry key; a repeated key returns the original loan"
// @Param        body             body      checkoutRequest  true   "Checkout form"
// @Success      201              {object}  transactionResponse
// @Success      200              {object}  transactionResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/checkouts [post]
func (h *CirculationHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}
	in, err := toCheckoutInput(req, key)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "due_date must be YYYY-MM-DD")
	}

	view, err := h.service.Checkout(c.Request().Context(), in)
	if err != nil {
		metrics.RecordCheckoutFailure(err)
		return err
	}
	metrics.RecordCheckout(view.Replayed)

	if view.Replayed {
		c.Response().Header().Set(HeaderIdempotentReplay, "true")
		return c.JSON(http.StatusOK, toTransactionResponse(view))
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(view))
}

// Return handles POST /v1/transactions/:id/return.
//
// @Summary      Return a borrowed book
// @Description  Closes the loan, restores the copy and locks any late fine.
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  transactionResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/transactions/{id}/return [post]
func (h *CirculationHandler) Return(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.service.Return(c.Request().Context(), ports.ReturnInput{TransactionID: id})
	if err != nil {
		return err
	}
	metrics.RecordReturn(view.FineAmount)
	return c.JSON(http.StatusOK, toTransactionResponse(view))
}

// PayFine handles POST /v1/transactions/:id/fine/payment.
//
// @Summary      Settle the fine of a returned loan
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  transactionResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/transactions/{id}/fine/payment [post]
func (h *CirculationHandler) PayFine(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.service.PayFine(c.Request().Context(), id)
	if err != nil {
		return err
	}
	metrics.RecordFinePaid(view.FineAmount)
	return c.JSON(http.StatusOK, toTransactionResponse(view))
}

// ListIssued handles GET /v1/transactions.
//
// @Summary      List books currently issued
// @Tags         circulation
// @Produce      json
// @Param        q      query     string  false  "Book title, borrower name or library card id"
// @Param        label  query     string  false  "returned, overdue, due_today, due_soon or active"
// @Success      200    {object}  listTransactionsResponse
// @Failure      422    {object}  errorResponse
// @Router       /v1/transactions [get]
func (h *CirculationHandler) ListIssued(c echo.Context) error {
	var q issuedQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	views, err := h.service.ListIssued(c.Request().Context(), ports.IssuedFilter{
		Search: q.Q,
		Label:  lifecycle.Label(q.Label),
	})
	if err != nil {
		return err
	}
	data := toTransactionList(views)
	return c.JSON(http.StatusOK, listTransactionsResponse{Data: data, Total: len(data)})
}

// Borrowings handles GET /v1/users/:id/borrowings.
//
// @Summary      A user's current loans and history
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true   "User id"
// @Param        q    query     string  false  "Filters history by title or author"
// @Success      200  {object}  borrowingsResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/borrowings [get]
func (h *CirculationHandler) Borrowings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var q borrowingsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	b, err := h.service.Borrowings(c.Request().Context(), id, q.Q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBorrowingsResponse(b))
}
