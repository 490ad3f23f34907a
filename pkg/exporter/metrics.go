package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus delivery counters. A nil *Metrics is
// valid and records nothing, so exporters never need a nil check at
// call sites beyond the method receivers.
type Metrics struct {
	payloadsExported prometheus.Counter
	spansExported    prometheus.Counter
	payloadsDropped  prometheus.Counter
	sendFailures     prometheus.Counter
}

// NewMetrics registers the delivery counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		payloadsExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracekit_exporter_payloads_exported_total",
			Help: "Trace payloads successfully delivered to the collector.",
		}),
		spansExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracekit_exporter_spans_exported_total",
			Help: "Spans successfully delivered to the collector.",
		}),
		payloadsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracekit_exporter_payloads_dropped_total",
			Help: "Trace payloads dropped before delivery (malformed or unmarshalable).",
		}),
		sendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracekit_exporter_send_failures_total",
			Help: "Delivery attempts that failed (network error or non-2xx response).",
		}),
	}
}

func (m *Metrics) payloadExported(spans int) {
	if m == nil {
		return
	}
	m.payloadsExported.Inc()
	m.spansExported.Add(float64(spans))
}

func (m *Metrics) payloadDropped() {
	if m == nil {
		return
	}
	m.payloadsDropped.Inc()
}

func (m *Metrics) sendFailed() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}
