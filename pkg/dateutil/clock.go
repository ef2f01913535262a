// Package dateutil implements the pipeline's fixed-offset date algebra:
// pipeline "today", delta resolution, and date-like parsing, per SPEC_FULL.md
// §4.C3. All pipeline dates live in a single non-DST offset so schedule math
// never shifts across a daylight-savings boundary.
package dateutil

import (
	"os"
	"time"
)

// Offset is the pipeline's fixed, explicitly non-DST timezone: UTC-5.
var Offset = time.FixedZone("pipeline", -5*3600)

// RunDateEnv is the environment variable that overrides PipelineToday.
const RunDateEnv = "PIPELINE_RUN_DATE"

// Clock abstracts wall-clock "now" so callers can inject a fixed time in
// tests instead of depending on the real clock.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the real wall-clock time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock returns a constant time, for deterministic tests.
type FixedClock struct{ At time.Time }

// Now implements Clock.
func (f FixedClock) Now() time.Time { return f.At }

// PipelineToday returns PIPELINE_RUN_DATE if set (parsed as an ISO date),
// else clock.Now() normalized to a date in the pipeline offset.
func PipelineToday(clock Clock) time.Time {
	if v := os.Getenv(RunDateEnv); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, Offset); err == nil {
			return d
		}
	}
	now := clock.Now().In(Offset)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Offset)
}

// Yesterday returns the pipeline day before PipelineToday(clock).
func Yesterday(clock Clock) time.Time {
	return PipelineToday(clock).AddDate(0, 0, -1)
}

// Normalize converts a naive time.Time into the fixed pipeline offset,
// preserving the wall-clock instant it represents. Idempotent: normalizing
// an already-normalized time returns an equal time.
func Normalize(t time.Time) time.Time {
	return t.In(Offset)
}
