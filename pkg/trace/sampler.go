package trace

import "math/rand"

// Sampler decides, per trace, whether spans are recorded.
type Sampler interface {
	// ShouldSample reports whether a new trace should be recorded.
	// A forced decision always samples, regardless of the configured rate.
	ShouldSample(force bool) bool
}

type rateSampler struct {
	rate float64
}

// NewRateSampler creates a Sampler that records the given fraction of
// traces. The rate is clamped to [0, 1]; out-of-range values are not an
// error. Each unforced call draws independently: child spans inherit
// the root's decision instead of re-rolling, so per-call independence
// never splits a trace.
func NewRateSampler(rate float64) Sampler {
	return rateSampler{rate: clampRate(rate)}
}

func (s rateSampler) ShouldSample(force bool) bool {
	if force {
		return true
	}
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	return rand.Float64() < s.rate
}

func clampRate(rate float64) float64 {
	switch {
	case rate < 0:
		return 0
	case rate > 1:
		return 1
	default:
		return rate
	}
}
