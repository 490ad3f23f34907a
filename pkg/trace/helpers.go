package trace

import (
	"fmt"
	"runtime"
	"strings"
)

// maxTracedStringLen caps attribute and body strings to keep payloads
// bounded.
const maxTracedStringLen = 2000

// ellipsisMarker is appended to strings that were cut at the cap.
const ellipsisMarker = "..."

// LimitString caps s at 2000 characters, appending an ellipsis marker
// when it was truncated. The cap counts runes, not bytes, so multi-byte
// input is never cut mid-rune. Shorter strings are returned unchanged.
func LimitString(s string) string {
	if len(s) <= maxTracedStringLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxTracedStringLen {
		return s
	}
	return string(runes[:maxTracedStringLen]) + ellipsisMarker
}

// StatusFromHTTPCode maps an HTTP status code to a span status: codes
// below 400 are OK, 400 and above are errors.
func StatusFromHTTPCode(code int) Status {
	if code >= 400 {
		return StatusError
	}
	return StatusOK
}

// formatStackTrace renders the current call stack, one frame per line,
// as "function at file:line", falling back to "file:line" when the
// function is unknown. skip frames are dropped from the top so the
// trace starts at the caller of the tracing API.
func formatStackTrace(skip int) string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			fmt.Fprintf(&b, "%s at %s:%d\n", frame.Function, frame.File, frame.Line)
		} else {
			fmt.Fprintf(&b, "%s:%d\n", frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
