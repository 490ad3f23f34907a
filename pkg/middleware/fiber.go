package middleware

import (
	"errors"

	"github.com/JailtonJunior94/tracekit-go/pkg/trace"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// tracerLocalKey stores the request tracer in fiber locals.
const tracerLocalKey = "tracekit-tracer"

// FiberTracing returns a Fiber middleware mirroring Tracing: one tracer
// and one root span per request, the tracer carried in both the user
// context and fiber locals, the root ended with the response status and
// the trace flushed after the handler chain returns. Handler errors are
// recorded as exceptions before Fiber's error handler shapes the
// response.
func FiberTracing(provider *TracerProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tracer := provider.Tracer()
		if !tracer.Enabled() {
			return c.Next()
		}

		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDHeader, requestID)

		attrs := map[string]any{
			"http.method":     c.Method(),
			"http.url":        c.OriginalURL(),
			"http.request_id": requestID,
		}
		if tracer.Config().TraceRequestBody {
			if body := c.Body(); len(body) > 0 {
				attrs["http.request.body"] = trace.LimitString(string(body))
			}
		}

		root := tracer.StartTrace(rootSpanName, attrs, false)
		c.SetUserContext(trace.NewContext(c.UserContext(), tracer))
		c.Locals(tracerLocalKey, tracer)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if err != nil {
			// RecordException may auto-create a forced root when sampling
			// rejected this request; end that span, not the empty ref.
			root = tracer.RecordException(root, err)
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				statusCode = fiberErr.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		finalAttrs := map[string]any{"http.status_code": statusCode}
		if route := c.Route().Path; route != "" {
			finalAttrs["http.route"] = route
		}
		if tracer.Config().TraceResponse {
			if body := c.Response().Body(); len(body) > 0 {
				finalAttrs["http.response.body"] = trace.LimitString(string(body))
			}
		}
		tracer.EndSpan(root, finalAttrs, trace.StatusFromHTTPCode(statusCode))
		tracer.Flush()

		return err
	}
}

// FiberTracer returns the request tracer stored by FiberTracing, or a
// disabled tracer when the middleware is not mounted.
func FiberTracer(c *fiber.Ctx) *trace.Tracer {
	if tracer, ok := c.Locals(tracerLocalKey).(*trace.Tracer); ok {
		return tracer
	}
	return trace.NewDisabled()
}
