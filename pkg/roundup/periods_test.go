package roundup

import (
	"testing"
	"time"

	"github.com/codeready-toolchain/verifyd/ent/roundup"
	"github.com/stretchr/testify/assert"
)

func TestPendingPeriodsFiltersPeriodsBeforeCutoff(t *testing.T) {
	today := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) // Thursday
	periods := PendingPeriods(today)

	kinds := make(map[roundup.Kind]Period)
	for _, p := range periods {
		kinds[p.Kind] = p
	}

	assert.Contains(t, kinds, roundup.KindDaily)
	assert.Contains(t, kinds, roundup.KindWeekly)
	assert.NotContains(t, kinds, roundup.KindMonthly)
	assert.NotContains(t, kinds, roundup.KindYearly)

	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), kinds[roundup.KindDaily].Start)
	assert.Equal(t, time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC), kinds[roundup.KindWeekly].Start)
	assert.Equal(t, time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC), kinds[roundup.KindWeekly].End)
}

func TestPendingPeriodsAllKindsPastCutoff(t *testing.T) {
	today := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) // Friday
	periods := PendingPeriods(today)

	kinds := make(map[roundup.Kind]Period)
	for _, p := range periods {
		kinds[p.Kind] = p
	}

	assert.Len(t, periods, 4)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), kinds[roundup.KindMonthly].Start)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), kinds[roundup.KindMonthly].End)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), kinds[roundup.KindYearly].Start)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), kinds[roundup.KindYearly].End)
}

func TestNestedCap(t *testing.T) {
	lower, cap, ok := NestedCap(roundup.KindWeekly)
	assert.True(t, ok)
	assert.Equal(t, roundup.KindDaily, lower)
	assert.Equal(t, 7, cap)

	lower, cap, ok = NestedCap(roundup.KindMonthly)
	assert.True(t, ok)
	assert.Equal(t, roundup.KindWeekly, lower)
	assert.Equal(t, 4, cap)

	lower, cap, ok = NestedCap(roundup.KindYearly)
	assert.True(t, ok)
	assert.Equal(t, roundup.KindMonthly, lower)
	assert.Equal(t, 12, cap)

	_, _, ok = NestedCap(roundup.KindDaily)
	assert.False(t, ok)
}
