package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultAPIKeyHeader = "X-Api-Key"

// Sender ships one serialized payload to the collector.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

// StatusError reports a non-2xx collector response. It is logged as a
// warning and never retried.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector returned status %d", e.Code)
}

// HTTPSender POSTs OTLP-JSON payloads to a single configured endpoint
// with the API key in a request header.
type HTTPSender struct {
	endpoint     string
	apiKey       string
	apiKeyHeader string
	client       *http.Client
	logger       *zap.Logger
}

// SenderOption is a function that configures an HTTPSender.
type SenderOption func(*HTTPSender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *HTTPSender) {
		s.client = client
	}
}

// WithAPIKeyHeader overrides the header the API key is sent in.
func WithAPIKeyHeader(name string) SenderOption {
	return func(s *HTTPSender) {
		s.apiKeyHeader = name
	}
}

// WithSenderLogger sets the logger. Defaults to a no-op logger.
func WithSenderLogger(logger *zap.Logger) SenderOption {
	return func(s *HTTPSender) {
		s.logger = logger
	}
}

// NewHTTPSender creates a sender for the given collector endpoint.
func NewHTTPSender(endpoint, apiKey string, opts ...SenderOption) *HTTPSender {
	s := &HTTPSender{
		endpoint:     endpoint,
		apiKey:       apiKey,
		apiKeyHeader: defaultAPIKeyHeader,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send POSTs the payload. A non-2xx response yields a *StatusError; the
// response body is drained and discarded either way.
func (s *HTTPSender) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(s.apiKeyHeader, s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach collector: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	s.logger.Debug("trace payload sent",
		zap.Int("bytes", len(payload)),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
