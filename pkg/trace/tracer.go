package trace

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SpanExporter receives the ended spans of a flushed trace. Delivery is
// best-effort: implementations log failures and never propagate them
// back into the instrumented application.
type SpanExporter interface {
	ExportSpans(spans []*Span, serviceName string)
}

// ErrorCoder is implemented by errors that carry a numeric code,
// recorded as the exception.code attribute.
type ErrorCoder interface {
	Code() int
}

// errorRootSpanName is the name of the root span auto-created when an
// exception is recorded before any trace was started.
const errorRootSpanName = "error-handler"

// Tracer creates and manages the spans of one in-flight trace. One
// instance serves one logical request (or one process lifetime) and its
// mutable state is touched only by that request's execution path, so no
// internal locking is needed. Scope a Tracer per request via NewContext
// rather than sharing an instance across concurrent requests.
type Tracer struct {
	cfg      Config
	sampler  Sampler
	idgen    IDGenerator
	exporter SpanExporter
	logger   *zap.Logger
	now      func() time.Time

	// inRequest marks the tracer as bound to a host request; child spans
	// then never re-roll sampling (see StartSpan).
	inRequest bool

	traceID  string
	rejected bool
	spans    []*Span
	index    map[string]*Span
	stack    spanStack
	root     *Span
}

// TracerOption is a function that configures a Tracer.
type TracerOption func(*Tracer)

// WithSampler sets a custom sampler.
func WithSampler(s Sampler) TracerOption {
	return func(t *Tracer) {
		t.sampler = s
	}
}

// WithIDGenerator sets a custom identifier generator.
func WithIDGenerator(g IDGenerator) TracerOption {
	return func(t *Tracer) {
		t.idgen = g
	}
}

// WithExporter sets the exporter that receives flushed spans.
func WithExporter(e SpanExporter) TracerOption {
	return func(t *Tracer) {
		t.exporter = e
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) TracerOption {
	return func(t *Tracer) {
		t.logger = logger
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) TracerOption {
	return func(t *Tracer) {
		t.now = now
	}
}

// WithRequestScope marks the tracer as bound to a host request, making
// child spans inherit the root span's sampling fate instead of
// re-rolling. The HTTP middlewares set this.
func WithRequestScope() TracerOption {
	return func(t *Tracer) {
		t.inRequest = true
	}
}

// New creates a tracer for the given configuration. A configuration
// without an API key, or with tracing disabled, yields a tracer whose
// operations are all no-ops.
func New(cfg Config, opts ...TracerOption) *Tracer {
	t := &Tracer{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
		index:  make(map[string]*Span),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.sampler == nil {
		t.sampler = NewRateSampler(cfg.SampleRate)
	}
	if t.idgen == nil {
		t.idgen = NewRandomIDGenerator()
	}
	return t
}

// NewConfig builds a Config from defaults and the given options.
func NewConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.SampleRate = clampRate(cfg.SampleRate)
	if cfg.BatchInterval < minBatchInterval {
		cfg.BatchInterval = minBatchInterval
	}
	return cfg
}

// NewDisabled returns a tracer with tracing turned off. Every operation
// is a no-op; useful for tests and development environments.
func NewDisabled() *Tracer {
	return New(NewConfig(WithDisabled()))
}

// TraceID returns the identifier of the in-flight trace, or an empty
// string when no trace is open.
func (t *Tracer) TraceID() string {
	return t.traceID
}

// Enabled reports whether the tracer can record spans at all.
func (t *Tracer) Enabled() bool {
	return t.cfg.active()
}

// Config returns the tracer's configuration.
func (t *Tracer) Config() Config {
	return t.cfg
}

// StartTrace starts the root span of a trace. When sampling rejects the
// trace the returned reference is empty (not an error) and callers
// must treat it as "tracing disabled for this operation"; EndSpan and
// RecordException accept empty references safely.
func (t *Tracer) StartTrace(name string, attrs map[string]any, forceSample bool) SpanRef {
	if !t.cfg.active() {
		return SpanRef{}
	}
	if !t.sampler.ShouldSample(forceSample) {
		t.rejected = true
		t.logger.Debug("trace rejected by sampler", zap.String("name", name))
		return SpanRef{}
	}
	return t.startSpan(name, attrs, KindServer, true)
}

// StartSpan starts a child span of the current active span. Child spans
// do not re-roll sampling when a root span exists or the tracer is bound
// to a host request; they inherit the root's fate. Only a standalone
// span, with no root and no request scope, re-checks the sampler.
func (t *Tracer) StartSpan(name string, attrs map[string]any, kind Kind) SpanRef {
	if !t.cfg.active() {
		return SpanRef{}
	}
	if t.rejected {
		return SpanRef{}
	}
	if t.root == nil && !t.inRequest && !t.sampler.ShouldSample(false) {
		return SpanRef{}
	}
	if kind < KindUnspecified || kind > KindConsumer {
		kind = KindInternal
	}
	return t.startSpan(name, attrs, kind, false)
}

// startSpan creates a span, appends it to the registry and pushes it
// onto the context stack. Identifier generation failure fails open: the
// span is skipped and an empty reference returned.
func (t *Tracer) startSpan(name string, attrs map[string]any, kind Kind, isRoot bool) SpanRef {
	traceID := t.traceID
	if traceID == "" {
		id, err := t.idgen.NewTraceID()
		if err != nil {
			t.logger.Warn("failed to generate trace id, skipping span", zap.Error(err))
			return SpanRef{}
		}
		traceID = id
	}

	spanID, err := t.idgen.NewSpanID()
	if err != nil {
		t.logger.Warn("failed to generate span id, skipping span", zap.Error(err))
		return SpanRef{}
	}

	parentID := ""
	if !isRoot {
		if parent := t.stack.top(); parent != nil {
			parentID = parent.SpanID
		}
	}

	span := &Span{
		TraceID:      traceID,
		SpanID:       spanID,
		ParentSpanID: parentID,
		Name:         name,
		Kind:         kind,
		StartTime:    t.now().UnixNano(),
		Status:       StatusOK,
		Attributes:   Normalize(attrs),
	}

	t.traceID = traceID
	t.spans = append(t.spans, span)
	t.index[spanID] = span
	t.stack.push(span)
	if span.ParentSpanID == "" && t.root == nil {
		t.root = span
	}

	return SpanRef{TraceID: traceID, SpanID: spanID, StartTime: span.StartTime}
}

// EndSpan closes the referenced span: records the end time, merges the
// final attributes over the existing ones, sets the status and pops the
// top of the context stack. It is a no-op on an empty reference, an
// unknown span or an already-ended span.
func (t *Tracer) EndSpan(ref SpanRef, finalAttrs map[string]any, status Status) {
	if !t.cfg.active() || ref.Empty() {
		return
	}
	span, ok := t.index[ref.SpanID]
	if !ok || span.Ended() {
		return
	}

	span.EndTime = t.now().UnixNano()
	span.Attributes.Merge(Normalize(finalAttrs))
	if status == StatusError {
		span.Status = StatusError
	}

	// Pop whatever is on top. Strict LIFO nesting is a caller
	// precondition, not something the stack verifies.
	t.stack.pop()
}

// AddEvent appends a named event to the referenced span. No-op on an
// empty reference or unknown span.
func (t *Tracer) AddEvent(ref SpanRef, name string, attrs map[string]any) {
	if !t.cfg.active() || ref.Empty() {
		return
	}
	span, ok := t.index[ref.SpanID]
	if !ok {
		return
	}
	span.Events = append(span.Events, Event{
		Name:       name,
		Time:       t.now().UnixNano(),
		Attributes: Normalize(attrs),
	})
}

// RecordException records err as an exception event on the referenced
// span and forces its status to Error. An empty reference falls back to
// the current root span; when no root exists either, a forced-sample
// root span is created so that errors are never dropped even at a 0%
// sample rate. The returned reference points at the span that carries
// the event, so callers can end it later.
func (t *Tracer) RecordException(ref SpanRef, err error) SpanRef {
	if !t.cfg.active() || err == nil {
		return ref
	}

	span := t.resolveExceptionSpan(ref, err)
	if span == nil {
		return SpanRef{}
	}

	code := 0
	var coder ErrorCoder
	if errors.As(err, &coder) {
		code = coder.Code()
	}

	eventAttrs := NewAttributes()
	eventAttrs.Set("exception.type", StringValue(fmt.Sprintf("%T", err)))
	eventAttrs.Set("exception.message", StringValue(err.Error()))
	eventAttrs.Set("exception.code", Int64Value(int64(code)))
	eventAttrs.Set("exception.stacktrace", StringValue(formatStackTrace(3)))

	span.Events = append(span.Events, Event{
		Name:       "exception",
		Time:       t.now().UnixNano(),
		Attributes: eventAttrs,
	})
	span.Status = StatusError
	span.Attributes.Set("error.message", StringValue(LimitString(err.Error())))

	return SpanRef{TraceID: span.TraceID, SpanID: span.SpanID, StartTime: span.StartTime}
}

// resolveExceptionSpan picks the span an exception should land on.
func (t *Tracer) resolveExceptionSpan(ref SpanRef, err error) *Span {
	if !ref.Empty() {
		if span, ok := t.index[ref.SpanID]; ok {
			return span
		}
	}
	if t.root != nil {
		return t.root
	}

	errorAttrs := map[string]any{
		"error.type":    fmt.Sprintf("%T", err),
		"error.message": LimitString(err.Error()),
	}
	rootRef := t.startSpan(errorRootSpanName, errorAttrs, KindServer, true)
	if rootRef.Empty() {
		return nil
	}
	t.rejected = false
	return t.index[rootRef.SpanID]
}

// Flush exports every ended span of the in-flight trace and resets the
// tracer to its empty state. Open spans are never exported; a trace that
// is never ended is simply never shipped. No-op when tracing is
// disabled, no spans exist or no trace is open.
func (t *Tracer) Flush() {
	if !t.cfg.active() || len(t.spans) == 0 || t.traceID == "" {
		return
	}

	ended := make([]*Span, 0, len(t.spans))
	for _, span := range t.spans {
		if span.Ended() {
			ended = append(ended, span)
		}
	}

	if len(ended) > 0 && t.exporter != nil {
		t.exporter.ExportSpans(ended, t.cfg.ServiceName)
	}

	t.traceID = ""
	t.rejected = false
	t.spans = nil
	t.index = make(map[string]*Span)
	t.stack.reset()
	t.root = nil
}

// StartQuerySpan starts an internal span for a database query when DB
// query tracing is enabled. The query text is length-limited before it
// is attached. Returns an empty reference when query tracing is off.
func (t *Tracer) StartQuerySpan(query string) SpanRef {
	if !t.cfg.TraceDBQueries {
		return SpanRef{}
	}
	return t.StartSpan("database-query", map[string]any{"db.query": LimitString(query)}, KindInternal)
}
