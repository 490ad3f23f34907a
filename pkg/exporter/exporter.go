// Package exporter delivers serialized trace documents to a collector.
// Two interchangeable strategies are provided behind one interface:
// ImmediateExporter ships each document on a background goroutine as it
// arrives, BatchExporter accumulates documents and sends them merged on
// a time interval. Delivery is at-most-once and best-effort: transport
// failures are logged and dropped, never retried and never surfaced to
// the instrumented application.
package exporter

import (
	"context"
	"time"

	"github.com/JailtonJunior94/tracekit-go/pkg/otlp"
	"github.com/JailtonJunior94/tracekit-go/pkg/trace"

	"go.uber.org/zap"
)

// Exporter is a delivery strategy for OTLP documents.
type Exporter interface {
	// Export hands a document to the strategy. It never blocks the
	// caller on network I/O: immediate mode ships on a background
	// goroutine, batch mode only queues.
	Export(doc *otlp.ExportRequest)
	// Shutdown flushes anything still queued or in flight. It must be
	// invoked at process shutdown so no queued trace is lost.
	Shutdown(ctx context.Context) error
}

// config holds the options shared by both exporter strategies.
type config struct {
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
	timeout time.Duration
}

// Option is a function that configures an exporter.
type Option func(*config)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus delivery counters.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithSendTimeout caps the time a single send may take.
func WithSendTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

func newConfig(opts ...Option) config {
	cfg := config{
		logger:  zap.NewNop(),
		now:     time.Now,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// validDocument checks the nested payload shape: at least one resource
// wrapper holding at least one scope wrapper holding at least one span.
func validDocument(doc *otlp.ExportRequest) bool {
	if doc == nil || len(doc.ResourceSpans) == 0 {
		return false
	}
	for _, rs := range doc.ResourceSpans {
		if len(rs.ScopeSpans) == 0 {
			return false
		}
	}
	return doc.SpanCount() > 0
}

// pipeline adapts an Exporter to the engine's SpanExporter: it
// serializes the ended spans and hands the document to the strategy.
type pipeline struct {
	exporter Exporter
}

// NewSpanPipeline wires an exporter strategy into a tracer: flushed
// spans are serialized to OTLP and passed to the strategy.
func NewSpanPipeline(e Exporter) trace.SpanExporter {
	return &pipeline{exporter: e}
}

func (p *pipeline) ExportSpans(spans []*trace.Span, serviceName string) {
	doc := otlp.Serialize(spans, serviceName)
	if doc == nil {
		return
	}
	p.exporter.Export(doc)
}
