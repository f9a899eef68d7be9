package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/debugtutor/backend/utils"
)

// RequestLogging logs every request with its latency and outcome. Server
// errors log at error level, client errors at warn, everything else at info.
func RequestLogging(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status_code": status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		}

		requestLogger := logger.WithTraceID(utils.GetTraceID(c)).WithSource("http")
		switch {
		case status >= 500:
			requestLogger.Error("Request failed", err, fields)
		case status >= 400:
			requestLogger.Warn("Request rejected", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}

		return err
	}
}
