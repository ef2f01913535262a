package lifecycle

import "strings"

// Verdict kinds, unified across ModelResponseOutput and FactCheckResponseOutput.
type Verdict string

const (
	VerdictComplete   Verdict = "complete"
	VerdictInProgress Verdict = "in_progress"
	VerdictFailed     Verdict = "failed"

	VerdictTrue         Verdict = "True"
	VerdictFalse        Verdict = "False"
	VerdictTechError    Verdict = "Tech Error"
	VerdictClose        Verdict = "Close"
	VerdictMisleading   Verdict = "Misleading"
	VerdictUnverifiable Verdict = "Unverifiable"
	VerdictUnclear      Verdict = "Unclear"
)

// terminalVerdicts are the verdicts that mark date_past=true on a promise
// independent of Endpoint classification (spec.md §9 Open Questions:
// "this spec adopts {complete, failed, True, False} as terminal").
var terminalVerdicts = map[Verdict]bool{
	VerdictComplete: true,
	VerdictFailed:   true,
	VerdictTrue:     true,
	VerdictFalse:    true,
}

// IsTerminal reports whether v independently marks a promise Terminal.
func IsTerminal(v Verdict) bool { return terminalVerdicts[v] }

// ClassifyNarrative is the pure keyword heuristic spec.md §4.C8 "Result
// application" step 1 falls back to when structured parsing fails:
// "complete"/"fulfilled"/"met" → complete; "progress"/"ongoing" →
// in_progress; "fail"/"not met" → failed.
func ClassifyNarrative(text string) Verdict {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "not met"), strings.Contains(lower, "fail"):
		return VerdictFailed
	case strings.Contains(lower, "complete"), strings.Contains(lower, "fulfilled"), strings.Contains(lower, "met"):
		return VerdictComplete
	case strings.Contains(lower, "progress"), strings.Contains(lower, "ongoing"):
		return VerdictInProgress
	default:
		return VerdictInProgress
	}
}
