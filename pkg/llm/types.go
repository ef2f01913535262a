// Package llm implements the generic LLM batch/tool-loop dispatcher of
// SPEC_FULL.md §4.C4: two substitutable execution modes (bulk-async "Mode
// A" and synchronous-per-item "Mode B"), strict-schema sanitization, and
// structured-output parsing with bounded retries. Grounded on
// pkg/agent/llm_client.go's Generate/Chunk shape and confirmed against
// _examples/original_source/service/util/openai_batch.py.
package llm

import (
	"encoding/json"
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
)

// Verdict constants for ModelResponseOutput (promises, goals).
const (
	VerdictComplete   = "complete"
	VerdictInProgress = "in_progress"
	VerdictFailed     = "failed"
)

// FactCheckVerdict constants for FactCheckResponseOutput (statements).
const (
	FactCheckTrue         = "True"
	FactCheckFalse        = "False"
	FactCheckTechError    = "Tech Error"
	FactCheckClose        = "Close"
	FactCheckMisleading   = "Misleading"
	FactCheckUnverifiable = "Unverifiable"
	FactCheckUnclear      = "Unclear"
)

// TerminalVerdicts are the verdicts that, independent of Endpoint
// classification, also mark a Claim Terminal (spec.md §9 Open Questions).
var TerminalVerdicts = map[string]bool{
	VerdictComplete: true,
	VerdictFailed:   true,
	FactCheckTrue:   true,
	FactCheckFalse:  true,
}

// ModelResponseOutput is the structured output bound for promise/goal
// check-ins (spec.md §6).
type ModelResponseOutput struct {
	Verdict       string   `json:"verdict"`
	Text          string   `json:"text,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	FollowUpDate  string   `json:"follow_up_date,omitempty"`
}

// FactCheckResponseOutput is the structured output bound for statement
// fact-checks (spec.md §6).
type FactCheckResponseOutput struct {
	Verdict      string   `json:"verdict"`
	Text         string   `json:"text,omitempty"`
	Sources      []string `json:"sources,omitempty"`
	FollowUpDate string   `json:"follow_up_date,omitempty"`
}

// ArticleEnrichment is C6's structured output (spec.md §6).
type ArticleEnrichment struct {
	CleanMarkdown          string      `json:"clean_markdown"`
	SummaryParagraph       string      `json:"summary_paragraph"`
	KeyTakeaways           []string    `json:"key_takeaways"`
	Priority               int         `json:"priority"`
	FollowUpQuestions      []string    `json:"follow_up_questions"`
	FollowUpQuestionGroups interface{} `json:"follow_up_question_groups"`
}

// DateDelta mirrors the wire-level Date_Delta union (confirmed in
// original_source/service/models/models.py): either an absolute ISO date
// string or a delta to resolve relative to an anchor.
type DateDelta struct {
	FromDate    string `json:"from_date,omitempty"`
	DaysDelta   *int   `json:"days_delta,omitempty"`
	WeeksDelta  *int   `json:"weeks_delta,omitempty"`
	MonthsDelta *int   `json:"months_delta,omitempty"`
	YearsDelta  *int   `json:"years_delta,omitempty"`
}

// Resolve anchors the delta at anchor if FromDate is unset, then resolves it
// via dateutil.Delta.
func (d DateDelta) Resolve(anchor time.Time) (time.Time, bool) {
	from := anchor
	if d.FromDate != "" {
		if t, ok := dateutil.ParseDateLike(d.FromDate); ok {
			from = t
		}
	}
	return dateutil.Delta{
		From:        from,
		DaysDelta:   d.DaysDelta,
		WeeksDelta:  d.WeeksDelta,
		MonthsDelta: d.MonthsDelta,
		YearsDelta:  d.YearsDelta,
	}.Resolve(), true
}

// ClaimProcessingStep is one extracted claim before normalization/insert —
// every attribute the model is asked to produce for a single Claim
// (spec.md §3). Dates arrive as raw JSON since they're a tagged date-like
// union (absolute date | ISO string | delta struct); DateDelta.Resolve (or
// a plain string parse) resolves them, with deltas anchored at the
// article date.
type ClaimProcessingStep struct {
	Claim                   string          `json:"claim"`
	VerbatimClaim           string          `json:"verbatim_claim"`
	Type                    string          `json:"type"` // goal|promise|statement
	CompletionCondition     string          `json:"completion_condition"`
	CompletionConditionDate json.RawMessage `json:"completion_condition_date,omitempty"`
	EventDate               json.RawMessage `json:"event_date,omitempty"`
	FollowUpWorthy          bool            `json:"follow_up_worthy"`
	Priority                string          `json:"priority"` // high|medium|low
	Mechanism               string          `json:"mechanism,omitempty"`
}

// ClaimProcessingResult is C7's structured output (spec.md §3/§6).
type ClaimProcessingResult struct {
	Steps []ClaimProcessingStep `json:"steps"`
}

// RoundupResponseOutput is C9's structured output (spec.md §6).
type RoundupResponseOutput struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

// FollowupAnswerItem is one answer to a follow-up question, with citations.
type FollowupAnswerItem struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// FollowupAnswerMap indexes answers by question index.
type FollowupAnswerMap map[int]FollowupAnswerItem

// FollowupAnswersList is the ordered wire form of FollowupAnswerMap.
type FollowupAnswersList []FollowupAnswerItem
