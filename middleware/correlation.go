package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/debugtutor/backend/utils"
)

// CorrelationID ensures every request carries a trace ID, honoring one
// supplied by the caller and minting one otherwise. The ID is echoed back
// in the response headers so clients can quote it in bug reports.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		utils.SetTraceID(c, traceID)
		c.Set("X-Trace-ID", traceID)

		return c.Next()
	}
}
