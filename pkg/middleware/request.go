// Package middleware instruments HTTP servers with request tracing.
// It ships a net/http middleware (chi-compatible) and a Fiber adapter;
// both scope one tracer per request through the request context.
package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/JailtonJunior94/tracekit-go/pkg/trace"
)

// maxInspectedBodyBytes bounds how much of a request body is read for
// tracing before the handler sees it.
const maxInspectedBodyBytes = 64 * 1024

// RequestInfo is the narrow read-only view of an inbound request the
// tracing layer consumes.
type RequestInfo interface {
	// Method returns the HTTP method.
	Method() string
	// URI returns the full request URI.
	URI() string
	// Header returns a request header value and whether it was present.
	Header(name string) (string, bool)
	// OperationName returns the label for the request's root span.
	OperationName() string
	// Body returns the raw request body, or an empty string when body
	// tracing is disabled.
	Body() string
}

// httpRequestInfo adapts *http.Request to RequestInfo.
type httpRequestInfo struct {
	req      *http.Request
	body     string
	withBody bool
}

// NewRequestInfo wraps an *http.Request. When withBody is set, up to
// 64KiB of the body is read eagerly and the request body is restored so
// the handler still sees the full stream.
func NewRequestInfo(req *http.Request, withBody bool) RequestInfo {
	info := &httpRequestInfo{req: req, withBody: withBody}
	if withBody && req.Body != nil {
		peeked, err := io.ReadAll(io.LimitReader(req.Body, maxInspectedBodyBytes))
		if err == nil {
			info.body = string(peeked)
			req.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(peeked), req.Body), req.Body}
		}
	}
	return info
}

func (i *httpRequestInfo) Method() string {
	return i.req.Method
}

func (i *httpRequestInfo) URI() string {
	return i.req.URL.String()
}

func (i *httpRequestInfo) Header(name string) (string, bool) {
	values, ok := i.req.Header[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (i *httpRequestInfo) OperationName() string {
	return rootSpanName
}

func (i *httpRequestInfo) Body() string {
	if !i.withBody {
		return ""
	}
	return trace.LimitString(i.body)
}
