package middleware

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/JailtonJunior94/tracekit-go/pkg/trace"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// rootSpanName labels the root span created for each inbound request.
const rootSpanName = "http-request"

const requestIDHeader = "X-Request-ID"

// TracerProvider builds one tracer per inbound request, all sharing the
// same configuration, exporter and logger.
type TracerProvider struct {
	cfg      trace.Config
	exporter trace.SpanExporter
	logger   *zap.Logger
}

// ProviderOption is a function that configures a TracerProvider.
type ProviderOption func(*TracerProvider)

// WithProviderLogger sets the logger handed to every request tracer.
func WithProviderLogger(logger *zap.Logger) ProviderOption {
	return func(p *TracerProvider) {
		p.logger = logger
	}
}

// NewTracerProvider creates a provider for per-request tracers.
func NewTracerProvider(cfg trace.Config, exporter trace.SpanExporter, opts ...ProviderOption) *TracerProvider {
	p := &TracerProvider{
		cfg:      cfg,
		exporter: exporter,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tracer creates a fresh request-scoped tracer.
func (p *TracerProvider) Tracer() *trace.Tracer {
	return trace.New(p.cfg,
		trace.WithExporter(p.exporter),
		trace.WithLogger(p.logger),
		trace.WithRequestScope(),
	)
}

// Tracing returns a net/http middleware (chi-compatible) that creates a
// tracer and a root span per request, carries the tracer through the
// request context, ends the root with the response status after the
// handler returns and flushes the trace. Export I/O always runs after
// the handler has produced the response, keeping tracing off the
// request's critical path. Panics are recorded as exceptions, answered
// with a 500 and re-raised for the host's own recovery layer.
func Tracing(provider *TracerProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracer := provider.Tracer()
			if !tracer.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			info := NewRequestInfo(r, tracer.Config().TraceRequestBody)
			requestID := ensureRequestID(w, info)

			attrs := map[string]any{
				"http.method":     info.Method(),
				"http.url":        info.URI(),
				"http.request_id": requestID,
			}
			if body := info.Body(); body != "" {
				attrs["http.request.body"] = body
			}

			root := tracer.StartTrace(info.OperationName(), attrs, false)
			sw := &statusWriter{ResponseWriter: w, captureBody: tracer.Config().TraceResponse}
			ctx := trace.NewContext(r.Context(), tracer)

			defer func() {
				if rec := recover(); rec != nil {
					// RecordException may auto-create a forced root when
					// sampling rejected this request; end that span, not
					// the empty ref, or the exception is never exported.
					root = tracer.RecordException(root, fmt.Errorf("panic: %v", rec))
					if !sw.wroteHeader {
						sw.WriteHeader(http.StatusInternalServerError)
					}
					finishRequest(tracer, root, r, sw)
					panic(rec)
				}
			}()

			next.ServeHTTP(sw, r.WithContext(ctx))
			finishRequest(tracer, root, r, sw)
		})
	}
}

// finishRequest ends the root span with the final status code and
// flushes the trace through the configured exporter.
func finishRequest(tracer *trace.Tracer, root trace.SpanRef, r *http.Request, sw *statusWriter) {
	statusCode := sw.status()
	finalAttrs := map[string]any{"http.status_code": statusCode}
	if route := routePattern(r); route != "" {
		finalAttrs["http.route"] = route
	}
	if body := sw.capturedBody(); body != "" {
		finalAttrs["http.response.body"] = body
	}
	tracer.EndSpan(root, finalAttrs, trace.StatusFromHTTPCode(statusCode))
	tracer.Flush()
}

// routePattern returns the chi route template for the request, when the
// request was routed by chi. Templates keep attribute cardinality low:
// /users/{id} rather than /users/123.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// ensureRequestID reuses the inbound X-Request-ID or generates one, and
// reflects it on the response.
func ensureRequestID(w http.ResponseWriter, info RequestInfo) string {
	requestID, ok := info.Header(requestIDHeader)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, requestID)
	return requestID
}

// statusWriter captures the response status code, and optionally the
// first bytes of the response body, for the root span.
type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
	captureBody bool
	body        bytes.Buffer
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.captureBody && w.body.Len() < maxInspectedBodyBytes {
		remaining := maxInspectedBodyBytes - w.body.Len()
		if remaining > len(b) {
			remaining = len(b)
		}
		w.body.Write(b[:remaining])
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.code
}

// capturedBody returns the length-limited response body, or an empty
// string when body capture is off.
func (w *statusWriter) capturedBody() string {
	if !w.captureBody || w.body.Len() == 0 {
		return ""
	}
	return trace.LimitString(w.body.String())
}
