package dateutil

import "time"

// fallbackLayouts mirrors the original pipeline's _coerce_date retry list:
// a model occasionally returns a human-formatted date instead of ISO.
var fallbackLayouts = []string{
	"January 2, 2006",
	"2006-01-02",
	"01/02/2006",
}

// ParseDateLike implements the parse precedence from SPEC_FULL.md §4.C3:
// already-a-date → ISO date → ISO datetime → delta struct → null. This
// function handles the string/ISO branches; delta resolution is handled by
// Delta.Resolve before a value reaches here.
func ParseDateLike(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.RFC3339, s, Offset); err == nil {
		return t.In(Offset), true
	}
	if t, err := time.ParseInLocation("2006-01-02", s, Offset); err == nil {
		return t, true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, Offset); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
