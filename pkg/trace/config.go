package trace

const (
	defaultSampleRate    = 1.0
	defaultBatchInterval = 5
	minBatchInterval     = 1
)

// Config holds the tracer configuration. A missing API key or
// Enabled=false degrades the tracer to fully disabled: every operation
// becomes a no-op and no spans are ever created.
type Config struct {
	Enabled     bool
	APIKey      string
	ServiceName string

	// SampleRate is the fraction of traces to record, in [0, 1].
	// Out-of-range values are clamped, not rejected.
	SampleRate float64

	// TraceResponse captures the response body on the root span.
	TraceResponse bool
	// TraceDBQueries records database query spans.
	TraceDBQueries bool
	// TraceRequestBody captures the request body on the root span.
	TraceRequestBody bool

	// BatchInterval is the batch-send interval in seconds (minimum 1).
	BatchInterval int

	// Endpoint is the collector URL payloads are POSTed to.
	Endpoint string
}

// Option is a function that configures a Config.
type Option func(*Config)

// WithAPIKey sets the collector API key. An empty key disables tracing.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithServiceName sets the service name reported as a resource attribute.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithSampleRate sets the fraction of traces to record, clamped to [0, 1].
func WithSampleRate(rate float64) Option {
	return func(c *Config) {
		c.SampleRate = clampRate(rate)
	}
}

// WithEndpoint sets the collector endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithBatchInterval sets the batch-send interval in seconds.
// Values below the minimum of 1 are raised to it.
func WithBatchInterval(seconds int) Option {
	return func(c *Config) {
		if seconds < minBatchInterval {
			seconds = minBatchInterval
		}
		c.BatchInterval = seconds
	}
}

// WithResponseTracing enables capturing the response body.
func WithResponseTracing() Option {
	return func(c *Config) {
		c.TraceResponse = true
	}
}

// WithDBQueryTracing enables database query spans.
func WithDBQueryTracing() Option {
	return func(c *Config) {
		c.TraceDBQueries = true
	}
}

// WithRequestBodyTracing enables capturing the request body.
func WithRequestBodyTracing() Option {
	return func(c *Config) {
		c.TraceRequestBody = true
	}
}

// WithDisabled turns tracing off regardless of other settings.
func WithDisabled() Option {
	return func(c *Config) {
		c.Enabled = false
	}
}

func defaultConfig() Config {
	return Config{
		Enabled:       true,
		SampleRate:    defaultSampleRate,
		BatchInterval: defaultBatchInterval,
	}
}

// active reports whether the configuration allows any tracing at all.
func (c Config) active() bool {
	return c.Enabled && c.APIKey != ""
}
