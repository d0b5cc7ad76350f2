package middleware

import (
	"time"

	"vaidya/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records count, errors and latency of every request.
func Metrics(m *metrics.AppMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.RecordHTTPRequest(c.UserContext(), c.Method(), route, status, start)
		return err
	}
}
