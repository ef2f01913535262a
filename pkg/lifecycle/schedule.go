// Package lifecycle implements C8, the claim lifecycle and follow-up
// scheduler: cadence-table schedule materialization, the per-claim
// "needs update today" classifier, and result application back onto the
// Claim/Update/Followup stores. Grounded on pkg/session's session-lifecycle
// state machine (Scheduled/InFlight/Terminal phases driven by explicit
// transition functions, not ambient mutation) and
// _examples/original_source/service/scripts/update_promises.py, the
// heaviest single file in the recovered original source for this domain.
package lifecycle

import (
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
)

// intervalStep is the fixed cadence step for the long-horizon schedule
// (spec.md §4.C8 cadence policy: "start+30, start+60, ...").
const intervalStep = 30 * 24 * time.Hour

// longSpanDays and shortSpanDays bound the three cadence regimes (long,
// mid and short span).
const (
	longSpanDays  = 90
	shortSpanDays = 14
)

// penultimateGuardDays is the "too-tight pair" guard: drop the penultimate
// scheduled date if it falls within this many days of the endpoint.
const penultimateGuardDays = 5

// Schedule computes the full planned follow-up schedule for a promise whose
// window runs [start, end], per spec.md §4.C8's cadence policy table.
func Schedule(start, end time.Time) []time.Time {
	start = dateutil.Normalize(start)
	end = dateutil.Normalize(end)
	span := int(end.Sub(start).Hours() / 24)

	switch {
	case span > longSpanDays:
		return longSchedule(start, end)
	case span > shortSpanDays:
		midpoint := start.AddDate(0, 0, span/2)
		return []time.Time{midpoint, end}
	default:
		return []time.Time{end}
	}
}

func longSchedule(start, end time.Time) []time.Time {
	var dates []time.Time
	for next := start.Add(intervalStep); next.Before(end); next = next.Add(intervalStep) {
		dates = append(dates, next)
	}

	if len(dates) > 0 {
		penultimate := dates[len(dates)-1]
		if end.Sub(penultimate).Hours()/24 <= penultimateGuardDays {
			dates = dates[:len(dates)-1]
		}
	}

	dates = append(dates, end)
	return dates
}

// Span returns end-start in whole days, the quantity the cadence table and
// classifier both branch on.
func Span(start, end time.Time) int {
	return int(dateutil.Normalize(end).Sub(dateutil.Normalize(start)).Hours() / 24)
}

// Midpoint returns start + floor(span/2), matching spec.md §9's resolution
// of the source's float-vs-integer midpoint ambiguity to floor division.
func Midpoint(start, end time.Time) time.Time {
	span := Span(start, end)
	return dateutil.Normalize(start).AddDate(0, 0, span/2)
}
