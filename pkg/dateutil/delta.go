package dateutil

import "time"

// Delta is the resolved form of the source's {from_date, days_delta,
// weeks_delta, months_delta, years_delta} structure (SPEC_FULL.md §4.C3,
// "Runtime-tagged date-like union" in spec.md §9). Day/week deltas are
// applied as durations; month/year deltas are applied as calendar component
// replacement — this matches human "in 3 months" semantics and must not be
// collapsed into a single duration add.
type Delta struct {
	From        time.Time
	DaysDelta   *int
	WeeksDelta  *int
	MonthsDelta *int
	YearsDelta  *int
}

// Resolve returns the absolute date this delta refers to, anchored at From.
func (d Delta) Resolve() time.Time {
	result := d.From
	if d.DaysDelta != nil && *d.DaysDelta != 0 {
		result = result.AddDate(0, 0, *d.DaysDelta)
	}
	if d.WeeksDelta != nil && *d.WeeksDelta != 0 {
		result = result.AddDate(0, 0, 7**d.WeeksDelta)
	}
	if d.MonthsDelta != nil && *d.MonthsDelta != 0 {
		result = result.AddDate(0, *d.MonthsDelta, 0)
	}
	if d.YearsDelta != nil && *d.YearsDelta != 0 {
		result = result.AddDate(*d.YearsDelta, 0, 0)
	}
	return result
}

// DateLike is the resolved tagged union spec.md §9 calls for: either an
// absolute date or unset. Delta resolution (Delta.Resolve) happens before a
// DateLike is constructed; Normalize only moves an already-resolved time
// into the pipeline offset.
type DateLike struct {
	Value *time.Time
}

// Absolute wraps a resolved date.
func Absolute(t time.Time) DateLike { return DateLike{Value: &t} }

// Null represents an absent date-like value.
func Null() DateLike { return DateLike{} }

// IsSet reports whether the date-like value is present.
func (d DateLike) IsSet() bool { return d.Value != nil }
