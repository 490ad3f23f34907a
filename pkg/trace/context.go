package trace

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var tracerKey contextKey

// NewContext returns a context carrying the given tracer. The HTTP
// middlewares scope one tracer per request this way; there is no
// process-wide current-tracer registry.
func NewContext(ctx context.Context, t *Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, t)
}

// FromContext returns the tracer carried by ctx, if any.
func FromContext(ctx context.Context) (*Tracer, bool) {
	t, ok := ctx.Value(tracerKey).(*Tracer)
	return t, ok
}

// FromContextOrDisabled returns the tracer carried by ctx, or a
// disabled tracer when none is present, so call sites never need a nil
// check.
func FromContextOrDisabled(ctx context.Context) *Tracer {
	if t, ok := FromContext(ctx); ok {
		return t
	}
	return NewDisabled()
}
