package version

import (
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/verroute/internal/observability"
)

// Delimiters lists every byte that separates version segments.
const Delimiters = "-_./;:"

// Segment count bounds for a well-formed version.
const (
	MinSegments = 2
	MaxSegments = 4
)

// lenientLog throttles diagnostics for non-strict parse failures, which are
// driven by client input.
var lenientLog = rate.Sometimes{Interval: time.Second}

// Split splits v on any of the Delimiters. Empty segments between
// delimiters are kept; trailing empty segments are dropped.
func Split(v string) []string {
	segments := make([]string, 0, MaxSegments)
	start := 0
	for i := 0; i < len(v); i++ {
		if strings.IndexByte(Delimiters, v[i]) >= 0 {
			segments = append(segments, v[start:i])
			start = i + 1
		}
	}
	segments = append(segments, v[start:])

	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return segments
}

// Parse splits v into segments and checks the segment count.
//
// With strict set, a malformed version yields a *MalformedVersionError.
// Otherwise the failure is logged and Parse returns nil segments and a nil
// error.
func Parse(v string, strict bool) ([]string, error) {
	segments := Split(v)
	if len(segments) >= MinSegments && len(segments) <= MaxSegments {
		return segments, nil
	}

	err := &MalformedVersionError{Version: v, Segments: len(segments)}
	if strict {
		return nil, err
	}

	lenientLog.Do(func() {
		observability.L().Debug("ignoring malformed version",
			observability.String("version", v),
			observability.Int("segments", len(segments)),
		)
	})
	return nil, nil
}

// Valid reports whether v is a well-formed version.
func Valid(v string) bool {
	n := len(Split(v))
	return n >= MinSegments && n <= MaxSegments
}
