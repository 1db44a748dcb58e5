package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"minga/internal/http/middleware"
	"minga/internal/logger"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "EMAIL_EXISTS")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// fallbackCodes maps statuses raised outside the handlers (routing, body parsing,
// fiber.NewError) to envelope codes.
var fallbackCodes = map[int]struct{ code, message string }{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusConflict:              {"CONFLICT", "resource already exists"},
	fiber.StatusRequestEntityTooLarge: {"BODY_TOO_LARGE", "request body too large"},
	fiber.StatusUnsupportedMediaType:  {"INVALID_BODY", "unsupported content type"},
	fiber.StatusUnprocessableEntity:   {"INVALID_BODY", "request body must be JSON"},
	fiber.StatusServiceUnavailable:    {"SERVICE_UNAVAILABLE", "service unavailable"},
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Errors that are not *fiber.Error are logged and answered with 500.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("unhandled request error",
				"request_id", requestIDFromCtx(c),
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		}

		if f, ok := fallbackCodes[status]; ok {
			return writeError(c, status, f.code, f.message)
		}
		if status < fiber.StatusInternalServerError {
			return writeError(c, status, "REQUEST_ERROR", "request could not be processed")
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
