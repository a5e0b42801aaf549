package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// ErrorLocalKey holds an internal error a handler chose not to expose.
// Logger attaches it to the request entry.
const ErrorLocalKey = "internal_error"

// Logger logs each HTTP request as one structured entry with
// request_id, method, path, status and latency (milliseconds). trace_id is
// added when a span is active on the request's user context.
func Logger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		entry := log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		})
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			entry = entry.WithField("trace_id", sc.TraceID().String())
		}
		if p, ok := PrincipalFromCtx(c); ok {
			entry = entry.WithField("user_id", p.UserID)
		}
		if ierr, ok := c.Locals(ErrorLocalKey).(error); ok {
			entry = entry.WithError(ierr)
		} else if err != nil && status >= fiber.StatusInternalServerError {
			entry = entry.WithError(err)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
		return err
	}
}
