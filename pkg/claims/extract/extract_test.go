package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func anchor() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestResolveDateLikeEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, resolveDateLike(nil, anchor()))
	assert.Nil(t, resolveDateLike(json.RawMessage{}, anchor()))
}

func TestResolveDateLikePlainISODate(t *testing.T) {
	got := resolveDateLike(json.RawMessage(`"2026-02-15"`), anchor())
	if assert.NotNil(t, got) {
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, time.Month(2), got.Month())
		assert.Equal(t, 15, got.Day())
	}
}

func TestResolveDateLikeInvalidStringReturnsNil(t *testing.T) {
	got := resolveDateLike(json.RawMessage(`"not a date"`), anchor())
	assert.Nil(t, got)
}

func TestResolveDateLikeDeltaStruct(t *testing.T) {
	raw := json.RawMessage(`{"days_delta": 10}`)
	got := resolveDateLike(raw, anchor())
	if assert.NotNil(t, got) {
		assert.Equal(t, anchor().AddDate(0, 0, 10), *got)
	}
}

func TestResolveDateLikeDeltaFromExplicitFromDate(t *testing.T) {
	raw := json.RawMessage(`{"from_date": "2026-03-01", "weeks_delta": 2}`)
	got := resolveDateLike(raw, anchor())
	if assert.NotNil(t, got) {
		want := time.Date(2026, 3, 1, 0, 0, 0, 0, got.Location()).AddDate(0, 0, 14)
		assert.Equal(t, want, *got)
	}
}

func TestResolveDateLikeMalformedJSONReturnsNil(t *testing.T) {
	got := resolveDateLike(json.RawMessage(`{not json`), anchor())
	assert.Nil(t, got)
}
