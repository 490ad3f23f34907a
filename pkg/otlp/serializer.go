package otlp

import (
	"strconv"

	"github.com/JailtonJunior94/tracekit-go/pkg/trace"
)

const (
	scopeName    = "tracekit-go"
	scopeVersion = "1.0.0"

	serviceNameKey = "service.name"
)

// Serialize converts spans into an OTLP-JSON document carrying the
// service name as a resource attribute under a single resource and
// scope wrapper. Span order is preserved. Returns nil for an empty span
// list; a wrapper with zero spans is never emitted.
func Serialize(spans []*trace.Span, serviceName string) *ExportRequest {
	if len(spans) == 0 {
		return nil
	}

	records := make([]Span, 0, len(spans))
	for _, span := range spans {
		records = append(records, serializeSpan(span))
	}

	return &ExportRequest{
		ResourceSpans: []ResourceSpans{
			{
				Resource: Resource{
					Attributes: []KeyValue{
						{Key: serviceNameKey, Value: AnyValue{StringValue: serviceName}},
					},
				},
				ScopeSpans: []ScopeSpans{
					{
						Scope: Scope{Name: scopeName, Version: scopeVersion},
						Spans: records,
					},
				},
			},
		},
	}
}

// Merge combines multiple documents into one, keeping a single shared
// resource and scope wrapper and concatenating the span lists in order.
// Nil and empty documents are skipped; Merge returns nil when nothing
// remains.
func Merge(reqs []*ExportRequest) *ExportRequest {
	var merged []Span
	var resource *Resource
	var scope *Scope

	for _, req := range reqs {
		if req == nil {
			continue
		}
		for _, rs := range req.ResourceSpans {
			if resource == nil {
				r := rs.Resource
				resource = &r
			}
			for _, ss := range rs.ScopeSpans {
				if scope == nil {
					s := ss.Scope
					scope = &s
				}
				merged = append(merged, ss.Spans...)
			}
		}
	}

	if len(merged) == 0 {
		return nil
	}

	return &ExportRequest{
		ResourceSpans: []ResourceSpans{
			{
				Resource:   *resource,
				ScopeSpans: []ScopeSpans{{Scope: *scope, Spans: merged}},
			},
		},
	}
}

func serializeSpan(span *trace.Span) Span {
	record := Span{
		TraceID:           span.TraceID,
		SpanID:            span.SpanID,
		ParentSpanID:      span.ParentSpanID,
		Name:              span.Name,
		Kind:              int(span.Kind),
		StartTimeUnixNano: strconv.FormatInt(span.StartTime, 10),
		EndTimeUnixNano:   strconv.FormatInt(span.EndTime, 10),
		Attributes:        serializeAttributes(span.Attributes),
		Events:            serializeEvents(span.Events),
		Status:            serializeStatus(span),
	}
	return record
}

func serializeStatus(span *trace.Span) Status {
	if span.Status != trace.StatusError {
		return Status{Code: StatusCodeOK}
	}

	message := "Error"
	if v, ok := span.Attributes.Get("error.message"); ok && v.Emit() != "" {
		message = v.Emit()
	}
	return Status{Code: StatusCodeError, Message: message}
}

func serializeEvents(events []trace.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, event := range events {
		out = append(out, Event{
			Name:         event.Name,
			TimeUnixNano: strconv.FormatInt(event.Time, 10),
			Attributes:   serializeAttributes(event.Attributes),
		})
	}
	return out
}

// serializeAttributes flattens an attribute set into key/stringValue
// pairs; every value is stringified at this layer.
func serializeAttributes(attrs *trace.Attributes) []KeyValue {
	if attrs == nil || attrs.Len() == 0 {
		return []KeyValue{}
	}
	out := make([]KeyValue, 0, attrs.Len())
	for _, key := range attrs.Keys() {
		value, _ := attrs.Get(key)
		out = append(out, KeyValue{Key: key, Value: AnyValue{StringValue: value.Emit()}})
	}
	return out
}
