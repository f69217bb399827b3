package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
)

// RequestIDLogMiddleware builds a per-request *slog.Logger carrying the Fiber
// request ID and stores it in the user context, where use cases pick it up
// through logging.FromContext.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, ok := c.Locals("requestid").(string)
		if !ok || rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", rid)
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))

		return c.Next()
	}
}
