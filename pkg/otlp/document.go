// Package otlp renders completed spans into the OpenTelemetry OTLP-JSON
// wire shape consumed by trace collectors.
package otlp

// ExportRequest is the top-level OTLP-JSON trace document.
type ExportRequest struct {
	ResourceSpans []ResourceSpans `json:"resourceSpans"`
}

// ResourceSpans groups the spans of one resource.
type ResourceSpans struct {
	Resource   Resource     `json:"resource"`
	ScopeSpans []ScopeSpans `json:"scopeSpans"`
}

// Resource describes the entity producing the spans.
type Resource struct {
	Attributes []KeyValue `json:"attributes"`
}

// ScopeSpans groups the spans of one instrumentation scope.
type ScopeSpans struct {
	Scope Scope  `json:"scope"`
	Spans []Span `json:"spans"`
}

// Scope identifies the instrumentation library.
type Scope struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Span is one span record on the wire. Timestamps are decimal strings:
// the wire format renders 64-bit integers as strings so JSON consumers
// never lose precision. ParentSpanID is omitted entirely for root spans
// rather than emitted as null.
type Span struct {
	TraceID           string     `json:"traceId"`
	SpanID            string     `json:"spanId"`
	ParentSpanID      string     `json:"parentSpanId,omitempty"`
	Name              string     `json:"name"`
	Kind              int        `json:"kind"`
	StartTimeUnixNano string     `json:"startTimeUnixNano"`
	EndTimeUnixNano   string     `json:"endTimeUnixNano"`
	Attributes        []KeyValue `json:"attributes"`
	Events            []Event    `json:"events"`
	Status            Status     `json:"status"`
}

// Event is one span event record.
type Event struct {
	Name         string     `json:"name"`
	TimeUnixNano string     `json:"timeUnixNano"`
	Attributes   []KeyValue `json:"attributes"`
}

// KeyValue is one attribute entry. Every value is a string at this
// layer regardless of its original type.
type KeyValue struct {
	Key   string   `json:"key"`
	Value AnyValue `json:"value"`
}

// AnyValue wraps an attribute value.
type AnyValue struct {
	StringValue string `json:"stringValue"`
}

// Status codes as spelled on the wire.
const (
	StatusCodeOK    = "STATUS_CODE_OK"
	StatusCodeError = "STATUS_CODE_ERROR"
)

// Status is the span outcome record. Message is empty unless the span
// errored.
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SpanCount returns the number of span records across the whole
// document.
func (r *ExportRequest) SpanCount() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, rs := range r.ResourceSpans {
		for _, ss := range rs.ScopeSpans {
			count += len(ss.Spans)
		}
	}
	return count
}
