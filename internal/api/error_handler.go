package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, "book not found"
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrNoCopiesAvailable),
		errors.Is(err, domain.ErrAlreadyReturned),
		errors.Is(err, domain.ErrFineAlreadyPaid),
		errors.Is(err, domain.ErrFineNotFinal),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrBookMismatch),
		errors.Is(err, domain.ErrCopiesExceedTotal),
		errors.Is(err, domain.ErrRequestInProgress):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, "record was modified concurrently, retry the request"
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrUserInactive):
		return http.StatusUnprocessableEntity, rootMessage(err)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// rootMessage strips the "op: " prefixes services add while wrapping, so
// clients see the domain message only.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
