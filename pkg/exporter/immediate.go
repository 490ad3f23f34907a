package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/JailtonJunior94/tracekit-go/pkg/otlp"

	"go.uber.org/zap"
)

// ImmediateExporter ships each document as it arrives, fire-and-forget:
// the send runs on a background goroutine so the caller's response path
// never waits on network I/O. The outcome is logged and has no effect
// on the originating request.
type ImmediateExporter struct {
	cfg    config
	sender Sender
	wg     sync.WaitGroup
}

// NewImmediateExporter creates a fire-and-forget exporter.
func NewImmediateExporter(sender Sender, opts ...Option) *ImmediateExporter {
	return &ImmediateExporter{
		cfg:    newConfig(opts...),
		sender: sender,
	}
}

// Export validates the document and hands it to a background send.
// Malformed documents are logged and dropped.
func (e *ImmediateExporter) Export(doc *otlp.ExportRequest) {
	if !validDocument(doc) {
		e.cfg.logger.Warn("dropping malformed trace payload")
		e.cfg.metrics.payloadDropped()
		return
	}

	body, err := json.Marshal(doc)
	if err != nil {
		e.cfg.logger.Warn("dropping trace payload that failed to marshal", zap.Error(err))
		e.cfg.metrics.payloadDropped()
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.send(body, doc.SpanCount())
	}()
}

// Shutdown waits for in-flight sends to finish, or for ctx to expire.
func (e *ImmediateExporter) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *ImmediateExporter) send(body []byte, spanCount int) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.timeout)
	defer cancel()

	if err := e.sender.Send(ctx, body); err != nil {
		logSendFailure(e.cfg.logger, err)
		e.cfg.metrics.sendFailed()
		return
	}
	e.cfg.logger.Debug("trace payload exported", zap.Int("spans", spanCount))
	e.cfg.metrics.payloadExported(spanCount)
}

// logSendFailure logs a delivery failure without ever re-raising it.
// Non-2xx responses and network failures are both warnings; at-most-once
// delivery means both are dropped the same way.
func logSendFailure(logger *zap.Logger, err error) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		logger.Warn("collector rejected trace payload", zap.Int("status", statusErr.Code))
		return
	}
	logger.Warn("failed to deliver trace payload", zap.Error(err))
}
