package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/usngrid/internal/core/ports"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// errFromService maps a use case error onto the response envelope. Server-side
// failures are logged and reported without their details.
func errFromService(c *fiber.Ctx, err error) error {
	switch {
	case usecases.IsClientError(err):
		return errBadRequest(c, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		return errNotFound(c, "not found")
	default:
		logging.FromContext(c.UserContext()).Error("request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return errInternal(c, "internal error")
	}
}
