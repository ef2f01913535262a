// Package roundup implements C9: computing the missing daily/weekly/monthly/
// yearly periods relative to pipeline_today(), ranking and nesting seed
// content within each, invoking the agentic tool loop (C5) to write the
// roundup, and persisting it.
package roundup

import (
	"time"

	"github.com/codeready-toolchain/verifyd/ent/roundup"
)

// CutoffDate is the hardcoded date below which no period is generated,
// confirmed from original_source/service/scripts/generate_roundups.py.
var CutoffDate = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

// Period is one candidate roundup window.
type Period struct {
	Kind  roundup.Kind
	Start time.Time
	End   time.Time
}

// PendingPeriods returns the period windows of each kind that are complete
// as of today and not before CutoffDate — spec.md §4.C9's period math:
// daily = yesterday; weekly = the most recently completed Monday-Sunday
// week; monthly = the whole previous calendar month; yearly = the whole
// previous calendar year.
func PendingPeriods(today time.Time) []Period {
	var periods []Period

	daily := Period{Kind: roundup.KindDaily, Start: dayStart(today.AddDate(0, 0, -1)), End: dayStart(today.AddDate(0, 0, -1))}
	periods = append(periods, daily)

	mostRecentSunday := dayStart(today.AddDate(0, 0, -daysSinceSunday(today)))
	weekly := Period{Kind: roundup.KindWeekly, Start: mostRecentSunday.AddDate(0, 0, -6), End: mostRecentSunday}
	periods = append(periods, weekly)

	firstOfThisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	lastOfPrevMonth := firstOfThisMonth.AddDate(0, 0, -1)
	firstOfPrevMonth := time.Date(lastOfPrevMonth.Year(), lastOfPrevMonth.Month(), 1, 0, 0, 0, 0, today.Location())
	monthly := Period{Kind: roundup.KindMonthly, Start: firstOfPrevMonth, End: lastOfPrevMonth}
	periods = append(periods, monthly)

	firstOfThisYear := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
	lastOfPrevYear := firstOfThisYear.AddDate(0, 0, -1)
	firstOfPrevYear := time.Date(lastOfPrevYear.Year(), 1, 1, 0, 0, 0, 0, today.Location())
	yearly := Period{Kind: roundup.KindYearly, Start: firstOfPrevYear, End: lastOfPrevYear}
	periods = append(periods, yearly)

	filtered := periods[:0]
	for _, p := range periods {
		if p.Start.Before(CutoffDate) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysSinceSunday returns how many days back the most recent Sunday
// strictly before today is (Go's time.Sunday == 0).
func daysSinceSunday(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		d = 7
	}
	return d
}

// NestedCap returns how many lower-tier roundups a period of kind may
// nest, and the lower-tier kind, per spec.md §4.C9 step 1.
func NestedCap(kind roundup.Kind) (lowerKind roundup.Kind, cap int, ok bool) {
	switch kind {
	case roundup.KindWeekly:
		return roundup.KindDaily, 7, true
	case roundup.KindMonthly:
		return roundup.KindWeekly, 4, true
	case roundup.KindYearly:
		return roundup.KindMonthly, 12, true
	default:
		return "", 0, false
	}
}

// MaxSeedSlots is the total cap on seeds (nested roundups + ranked
// articles) per roundup, per spec.md §4.C9 step 2.
const MaxSeedSlots = 20
