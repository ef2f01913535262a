package lifecycle

import (
	"fmt"
	"time"
)

// Template names for the three prompt shapes spec.md §4.C8 "Request
// construction" names.
const (
	TemplateRegularCheckin  = "regular_checkin"
	TemplateEndpointCheckin = "endpoint_checkin"
	TemplateFactCheck       = "fact_check"
)

// ClaimContext is the denormalized metadata every request's prompt
// concatenates, per spec.md §4.C8: "article link/date, claim, verbatim
// quote, completion condition and projected date (or event date for
// statements), and today's date."
type ClaimContext struct {
	ClaimID                 string
	ArticleLink             string
	ArticleDate             time.Time
	Claim                   string
	VerbatimClaim           string
	CompletionCondition     string
	ProjectedDate           *time.Time
	EventDate               *time.Time
	Today                   time.Time
	Template                string
	IsStatement             bool
	FollowupID              string // non-empty when this request drains a due Follow-up
}

// BuildPrompt concatenates the task template with the metadata block, per
// spec.md §4.C8's request-construction rule. Kept as plain text
// concatenation — the teacher's prompt assembly (pkg/agent/prompt) is a
// template-concatenation pipeline of the same shape.
func BuildPrompt(c ClaimContext) string {
	projected := "none"
	if c.ProjectedDate != nil {
		projected = c.ProjectedDate.Format("2006-01-02")
	}
	if c.EventDate != nil {
		projected = c.EventDate.Format("2006-01-02")
	}
	return fmt.Sprintf(
		"task: %s\narticle_link: %s\narticle_date: %s\nclaim: %s\nverbatim_claim: %s\ncompletion_condition: %s\nprojected_date: %s\ntoday: %s\n",
		c.Template,
		c.ArticleLink,
		c.ArticleDate.Format("2006-01-02"),
		c.Claim,
		c.VerbatimClaim,
		c.CompletionCondition,
		projected,
		c.Today.Format("2006-01-02"),
	)
}

// CustomID is the stable request identity Mode A/B round trips back, so
// applyResults can map a raw response back to the claim (and, when set, the
// Follow-up) it answers.
func CustomID(claimID, followupID string) string {
	if followupID != "" {
		return claimID + ":" + followupID
	}
	return claimID
}
