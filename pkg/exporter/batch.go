package exporter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/JailtonJunior94/tracekit-go/pkg/otlp"

	"go.uber.org/zap"
)

// BatchExporter accumulates documents and sends them merged, as one
// combined document under a single resource and scope wrapper, when the
// configured interval has elapsed since the last flush. Export only
// queues: the interval flush runs on a background goroutine, so no
// request goroutine ever blocks on export I/O. ForceSend must be
// invoked at process shutdown (Shutdown does) to guarantee no queued
// trace is lost.
type BatchExporter struct {
	cfg      config
	sender   Sender
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	queue     []*otlp.ExportRequest
	lastFlush time.Time
}

// NewBatchExporter creates a time-batched exporter flushing at the
// given interval.
func NewBatchExporter(sender Sender, interval time.Duration, opts ...Option) *BatchExporter {
	cfg := newConfig(opts...)
	e := &BatchExporter{
		cfg:       cfg,
		sender:    sender,
		interval:  interval,
		stop:      make(chan struct{}),
		lastFlush: cfg.now(),
	}
	go e.run()
	return e
}

// run flushes due batches until Shutdown.
func (e *BatchExporter) run() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.SendIfDue()
		case <-e.stop:
			return
		}
	}
}

// Export validates and queues the document. The send happens later, on
// the background flush loop, never in the caller's frame.
func (e *BatchExporter) Export(doc *otlp.ExportRequest) {
	if !validDocument(doc) {
		e.cfg.logger.Warn("dropping malformed trace payload")
		e.cfg.metrics.payloadDropped()
		return
	}
	e.Add(doc)
}

// Add appends a document to the batch queue without flushing.
func (e *BatchExporter) Add(doc *otlp.ExportRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, doc)
}

// SendIfDue flushes the queue when the batch interval has elapsed since
// the last flush.
func (e *BatchExporter) SendIfDue() {
	e.mu.Lock()
	if e.cfg.now().Sub(e.lastFlush) < e.interval {
		e.mu.Unlock()
		return
	}
	batch := e.takeLocked()
	e.mu.Unlock()

	e.sendBatch(batch)
}

// ForceSend flushes the queue unconditionally, bypassing the interval.
func (e *BatchExporter) ForceSend() {
	e.mu.Lock()
	batch := e.takeLocked()
	e.mu.Unlock()

	e.sendBatch(batch)
}

// Shutdown stops the flush loop and force-flushes anything still
// queued.
func (e *BatchExporter) Shutdown(_ context.Context) error {
	e.stopOnce.Do(func() { close(e.stop) })
	e.ForceSend()
	return nil
}

// QueueLen returns the number of queued documents.
func (e *BatchExporter) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// takeLocked drains the queue and stamps the flush time. Callers hold
// the mutex.
func (e *BatchExporter) takeLocked() []*otlp.ExportRequest {
	batch := e.queue
	e.queue = nil
	e.lastFlush = e.cfg.now()
	return batch
}

func (e *BatchExporter) sendBatch(batch []*otlp.ExportRequest) {
	if len(batch) == 0 {
		return
	}

	merged := otlp.Merge(batch)
	if merged == nil {
		return
	}

	body, err := json.Marshal(merged)
	if err != nil {
		e.cfg.logger.Warn("dropping trace batch that failed to marshal", zap.Error(err))
		e.cfg.metrics.payloadDropped()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.timeout)
	defer cancel()

	if err := e.sender.Send(ctx, body); err != nil {
		logSendFailure(e.cfg.logger, err)
		e.cfg.metrics.sendFailed()
		return
	}
	e.cfg.logger.Debug("trace batch exported",
		zap.Int("payloads", len(batch)),
		zap.Int("spans", merged.SpanCount()),
	)
	e.cfg.metrics.payloadExported(merged.SpanCount())
}
