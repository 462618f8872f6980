package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/libraryhub/circulation/internal/api/metrics"
)

// Metrics records request latency by route template, so /v1/books/1 and
// /v1/books/2 share one series.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
