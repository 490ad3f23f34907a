package otlp

import (
	"encoding/json"
	"testing"

	"github.com/JailtonJunior94/tracekit-go/pkg/trace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpan(name, spanID, parentID string) *trace.Span {
	return &trace.Span{
		TraceID:      "0af7651916cd43dd8448eb211c80319c",
		SpanID:       spanID,
		ParentSpanID: parentID,
		Name:         name,
		Kind:         trace.KindServer,
		StartTime:    1700000000000000000,
		EndTime:      1700000000250000000,
		Status:       trace.StatusOK,
		Attributes:   trace.NewAttributes(),
	}
}

func TestSerialize_EmptyInputProducesNoDocument(t *testing.T) {
	assert.Nil(t, Serialize(nil, "svc"))
	assert.Nil(t, Serialize([]*trace.Span{}, "svc"))
}

func TestSerialize_DocumentShape(t *testing.T) {
	span := testSpan("http-request", "b7ad6b7169203331", "")
	span.Attributes = trace.Normalize(map[string]any{"db.table": "users", "db.rows": 10})

	doc := Serialize([]*trace.Span{span}, "billing-api")

	require.NotNil(t, doc)
	require.Len(t, doc.ResourceSpans, 1)

	resource := doc.ResourceSpans[0].Resource
	require.Len(t, resource.Attributes, 1)
	assert.Equal(t, "service.name", resource.Attributes[0].Key)
	assert.Equal(t, "billing-api", resource.Attributes[0].Value.StringValue)

	require.Len(t, doc.ResourceSpans[0].ScopeSpans, 1)
	spans := doc.ResourceSpans[0].ScopeSpans[0].Spans
	require.Len(t, spans, 1)

	record := spans[0]
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", record.TraceID)
	assert.Equal(t, "b7ad6b7169203331", record.SpanID)
	assert.Equal(t, "http-request", record.Name)
	assert.Equal(t, 2, record.Kind)

	// 64-bit timestamps travel as decimal strings.
	assert.Equal(t, "1700000000000000000", record.StartTimeUnixNano)
	assert.Equal(t, "1700000000250000000", record.EndTimeUnixNano)

	// Every attribute value is stringified at this layer.
	require.Len(t, record.Attributes, 2)
	byKey := map[string]string{}
	for _, kv := range record.Attributes {
		byKey[kv.Key] = kv.Value.StringValue
	}
	assert.Equal(t, "users", byKey["db.table"])
	assert.Equal(t, "10", byKey["db.rows"])
}

func TestSerialize_RootSpanOmitsParentSpanID(t *testing.T) {
	root := testSpan("root", "b7ad6b7169203331", "")
	child := testSpan("child", "00f067aa0ba902b7", "b7ad6b7169203331")

	doc := Serialize([]*trace.Span{root, child}, "svc")

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded struct {
		ResourceSpans []struct {
			ScopeSpans []struct {
				Spans []map[string]json.RawMessage `json:"spans"`
			} `json:"scopeSpans"`
		} `json:"resourceSpans"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	spans := decoded.ResourceSpans[0].ScopeSpans[0].Spans
	require.Len(t, spans, 2)

	_, hasParent := spans[0]["parentSpanId"]
	assert.False(t, hasParent, "root span must omit parentSpanId entirely")

	parent, hasParent := spans[1]["parentSpanId"]
	assert.True(t, hasParent)
	assert.JSONEq(t, `"b7ad6b7169203331"`, string(parent))
}

func TestSerialize_StatusCodes(t *testing.T) {
	ok := testSpan("ok", "b7ad6b7169203331", "")

	failed := testSpan("failed", "00f067aa0ba902b7", "")
	failed.Status = trace.StatusError
	failed.Attributes = trace.Normalize(map[string]any{"error.message": "connection refused"})

	anonymous := testSpan("anonymous-failure", "0102030405060708", "")
	anonymous.Status = trace.StatusError

	doc := Serialize([]*trace.Span{ok, failed, anonymous}, "svc")
	spans := doc.ResourceSpans[0].ScopeSpans[0].Spans

	assert.Equal(t, StatusCodeOK, spans[0].Status.Code)
	assert.Empty(t, spans[0].Status.Message)

	assert.Equal(t, StatusCodeError, spans[1].Status.Code)
	assert.Equal(t, "connection refused", spans[1].Status.Message)

	assert.Equal(t, StatusCodeError, spans[2].Status.Code)
	assert.Equal(t, "Error", spans[2].Status.Message)
}

func TestSerialize_EventsCarryDecimalTimesAndAttributes(t *testing.T) {
	span := testSpan("failing", "b7ad6b7169203331", "")
	span.Events = []trace.Event{
		{
			Name:       "exception",
			Time:       1700000000100000000,
			Attributes: trace.Normalize(map[string]any{"exception.message": "boom"}),
		},
	}

	doc := Serialize([]*trace.Span{span}, "svc")
	events := doc.ResourceSpans[0].ScopeSpans[0].Spans[0].Events

	require.Len(t, events, 1)
	assert.Equal(t, "exception", events[0].Name)
	assert.Equal(t, "1700000000100000000", events[0].TimeUnixNano)
	require.Len(t, events[0].Attributes, 1)
	assert.Equal(t, "exception.message", events[0].Attributes[0].Key)
	assert.Equal(t, "boom", events[0].Attributes[0].Value.StringValue)
}

func TestSerialize_PreservesSpanOrder(t *testing.T) {
	spans := []*trace.Span{
		testSpan("first", "1111111111111111", ""),
		testSpan("second", "2222222222222222", "1111111111111111"),
		testSpan("third", "3333333333333333", "1111111111111111"),
	}

	doc := Serialize(spans, "svc")
	records := doc.ResourceSpans[0].ScopeSpans[0].Spans

	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "second", records[1].Name)
	assert.Equal(t, "third", records[2].Name)
}

func TestMerge_CombinesUnderSingleWrapper(t *testing.T) {
	first := Serialize([]*trace.Span{testSpan("a", "1111111111111111", "")}, "svc")
	second := Serialize([]*trace.Span{
		testSpan("b", "2222222222222222", ""),
		testSpan("c", "3333333333333333", ""),
	}, "svc")

	merged := Merge([]*ExportRequest{first, nil, second})

	require.NotNil(t, merged)
	require.Len(t, merged.ResourceSpans, 1)
	require.Len(t, merged.ResourceSpans[0].ScopeSpans, 1)

	spans := merged.ResourceSpans[0].ScopeSpans[0].Spans
	require.Len(t, spans, 3)
	assert.Equal(t, "a", spans[0].Name)
	assert.Equal(t, "b", spans[1].Name)
	assert.Equal(t, "c", spans[2].Name)
	assert.Equal(t, 3, merged.SpanCount())
}

func TestMerge_NothingToMergeReturnsNil(t *testing.T) {
	assert.Nil(t, Merge(nil))
	assert.Nil(t, Merge([]*ExportRequest{nil, nil}))
}
