package trace

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// IDGenerator produces trace and span identifiers. Implementations must
// use a cryptographically strong random source; predictable identifiers
// would let an observer correlate traces.
type IDGenerator interface {
	// NewTraceID returns 128 random bits as a 32-char lowercase hex string.
	NewTraceID() (string, error)
	// NewSpanID returns 64 random bits as a 16-char lowercase hex string.
	NewSpanID() (string, error)
}

type randomIDGenerator struct{}

// NewRandomIDGenerator creates an IDGenerator backed by crypto/rand.
func NewRandomIDGenerator() IDGenerator {
	return randomIDGenerator{}
}

func (randomIDGenerator) NewTraceID() (string, error) {
	return randomHex(16)
}

func (randomIDGenerator) NewSpanID() (string, error) {
	return randomHex(8)
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
