package lifecycle

import (
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
)

// Classification is the "needs update today" outcome from spec.md §4.C8.
type Classification int

const (
	// NoUpdate means today does not warrant a check for this claim.
	NoUpdate Classification = iota
	// RegularInterval means today lands on a scheduled cadence date short
	// of the endpoint.
	RegularInterval
	// Endpoint means today is on or after the completion date — the
	// terminal check.
	Endpoint
)

func (c Classification) String() string {
	switch c {
	case Endpoint:
		return "endpoint"
	case RegularInterval:
		return "regular_interval"
	default:
		return "no_update"
	}
}

// Classify implements spec.md §4.C8's "needs update today" classifier for a
// promise with window [start, end], evaluated at today.
func Classify(start, end, today time.Time) Classification {
	start = dateutil.Normalize(start)
	end = dateutil.Normalize(end)
	today = dateutil.Normalize(today)

	if !today.Before(end) {
		return Endpoint
	}

	span := Span(start, end)

	switch {
	case span > longSpanDays:
		for k := 1; ; k++ {
			candidate := start.Add(time.Duration(k) * intervalStep)
			if candidate.After(today) {
				return NoUpdate
			}
			if candidate.Equal(today) {
				return RegularInterval
			}
		}
	case span <= shortSpanDays:
		if today.Equal(end) {
			return Endpoint
		}
		return NoUpdate
	default:
		if today.Equal(Midpoint(start, end)) {
			return RegularInterval
		}
		return NoUpdate
	}
}
