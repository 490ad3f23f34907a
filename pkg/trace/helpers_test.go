package trace

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestLimitString_TruncatesLongInput(t *testing.T) {
	input := strings.Repeat("x", 3000)

	got := LimitString(input)

	assert.LessOrEqual(t, len(got), 2003)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("x", 2000)+"...", got)
}

func TestLimitString_ShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "short", LimitString("short"))
}

func TestLimitString_ExactBoundaryUnchanged(t *testing.T) {
	input := strings.Repeat("x", 2000)
	assert.Equal(t, input, LimitString(input))
}

func TestLimitString_MultiByteInputCutOnRuneBoundary(t *testing.T) {
	input := strings.Repeat("é", 3000)

	got := LimitString(input)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 2003, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", 2000)+"...", got)
}

func TestLimitString_MultiByteWithinRuneCapUnchanged(t *testing.T) {
	// 1500 two-byte runes exceed the cap in bytes but not in characters.
	input := strings.Repeat("é", 1500)
	assert.Equal(t, input, LimitString(input))
}

func TestStatusFromHTTPCode(t *testing.T) {
	tests := []struct {
		code int
		want Status
	}{
		{200, StatusOK},
		{204, StatusOK},
		{301, StatusOK},
		{399, StatusOK},
		{400, StatusError},
		{404, StatusError},
		{500, StatusError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromHTTPCode(tt.code), "code %d", tt.code)
	}
}

func TestFormatStackTrace_FramesHaveFileAndLine(t *testing.T) {
	got := formatStackTrace(1)

	assert.NotEmpty(t, got)
	lines := strings.Split(got, "\n")
	for _, line := range lines {
		assert.Contains(t, line, ":")
	}
	assert.Contains(t, got, " at ")
}

func TestKindFromString_UnknownNormalizesToInternal(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"server", KindServer},
		{"CLIENT", KindClient},
		{"producer", KindProducer},
		{"consumer", KindConsumer},
		{"unspecified", KindUnspecified},
		{"internal", KindInternal},
		{"bogus", KindInternal},
		{"", KindInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindFromString(tt.name), "name %q", tt.name)
	}
}
