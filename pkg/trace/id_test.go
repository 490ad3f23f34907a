package trace

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]+$`)

func TestRandomIDGenerator_TraceID(t *testing.T) {
	gen := NewRandomIDGenerator()

	id, err := gen.NewTraceID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
	assert.Regexp(t, hexPattern, id)
}

func TestRandomIDGenerator_SpanID(t *testing.T) {
	gen := NewRandomIDGenerator()

	id, err := gen.NewSpanID()
	require.NoError(t, err)
	assert.Len(t, id, 16)
	assert.Regexp(t, hexPattern, id)
}

func TestRandomIDGenerator_IDsAreUnique(t *testing.T) {
	gen := NewRandomIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := gen.NewSpanID()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate span id %s", id)
		seen[id] = true
	}
}
