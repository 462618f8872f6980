package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderIdempotencyKey carries the client's retry key on checkout.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay marks a response served from an earlier request.
const HeaderIdempotentReplay = "Idempotent-Replayed"

const maxIdempotencyKeyLen = 128

// idempotencyKey extracts and bounds the Idempotency-Key header.
// An absent header is not an error.
func idempotencyKey(c echo.Context) (string, error) {
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		return "", echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
	}
	return key, nil
}

// pathID returns a required path parameter or a 400.
func pathID(c echo.Context, name string) (string, error) {
	id := strings.TrimSpace(c.Param(name))
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	return id, nil
}

// bindAndValidate binds the request (body or query) into req and runs the
// registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
