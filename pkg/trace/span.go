package trace

import "strings"

// Kind classifies the role a span plays in a trace. The numeric values
// are the OTLP SpanKind codes.
type Kind int

const (
	KindUnspecified Kind = iota
	KindInternal
	KindServer
	KindClient
	KindProducer
	KindConsumer
)

var kindNames = map[Kind]string{
	KindUnspecified: "unspecified",
	KindInternal:    "internal",
	KindServer:      "server",
	KindClient:      "client",
	KindProducer:    "producer",
	KindConsumer:    "consumer",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "internal"
}

// KindFromString parses a span kind name. Unrecognized names normalize
// to KindInternal rather than erroring.
func KindFromString(name string) Kind {
	switch strings.ToLower(name) {
	case "unspecified":
		return KindUnspecified
	case "internal":
		return KindInternal
	case "server":
		return KindServer
	case "client":
		return KindClient
	case "producer":
		return KindProducer
	case "consumer":
		return KindConsumer
	default:
		return KindInternal
	}
}

// Status is the outcome of a span. A span starts OK and may transition
// to Error; it never transitions back.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusError {
		return "ERROR"
	}
	return "OK"
}

// Event is a timestamped annotation on a span. Immutable once appended.
type Event struct {
	Name       string
	Time       int64
	Attributes *Attributes
}

// Span is a single timed operation inside a trace. Times are integer
// nanoseconds since the Unix epoch; EndTime is zero while the span is
// open. ParentSpanID is empty for root spans and immutable after
// creation.
type Span struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
	Name         string
	Kind         Kind
	StartTime    int64
	EndTime      int64
	Status       Status
	Attributes   *Attributes
	Events       []Event
}

// Ended reports whether the span has been closed.
func (s *Span) Ended() bool {
	return s.EndTime != 0
}

// Duration returns EndTime - StartTime in nanoseconds, or zero while
// the span is open.
func (s *Span) Duration() int64 {
	if !s.Ended() {
		return 0
	}
	return s.EndTime - s.StartTime
}

// SpanRef is an opaque handle to a started span. The zero value is the
// empty reference, returned when sampling rejected the trace or tracing
// is disabled; every operation accepts it and no-ops.
type SpanRef struct {
	TraceID   string
	SpanID    string
	StartTime int64
}

// Empty reports whether the reference does not point at a live span.
func (r SpanRef) Empty() bool {
	return r.SpanID == ""
}
