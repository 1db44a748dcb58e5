package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"minga/internal/logger"
)

// Logger logs one structured entry per HTTP request with
// request_id, method, path, status and latency_ms.
// 5xx responses are logged at error level, 4xx at warn.
func Logger(log *logger.Logger) fiber.Handler {
	log = log.With("component", "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		kv := []interface{}{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", kv...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}

		return err
	}
}
