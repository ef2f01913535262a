package lifecycle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptProjectedDateFromCompletionCondition(t *testing.T) {
	projected := day(30)
	prompt := BuildPrompt(ClaimContext{
		Template:            TemplateRegularCheckin,
		ArticleLink:         "https://example.gov/press/1",
		ArticleDate:         day(0),
		Claim:               "the bridge will be finished",
		VerbatimClaim:       "we will finish the bridge by the end of the month",
		CompletionCondition: "bridge construction complete",
		ProjectedDate:       &projected,
		Today:               day(20),
	})

	assert.Contains(t, prompt, "task: "+TemplateRegularCheckin)
	assert.Contains(t, prompt, "article_link: https://example.gov/press/1")
	assert.Contains(t, prompt, "claim: the bridge will be finished")
	assert.Contains(t, prompt, "completion_condition: bridge construction complete")
	assert.Contains(t, prompt, "projected_date: 2026-01-31")
	assert.Contains(t, prompt, "today: 2026-01-21")
}

func TestBuildPromptEventDateOverridesProjectedDate(t *testing.T) {
	projected := day(30)
	event := day(5)
	prompt := BuildPrompt(ClaimContext{
		Template:      TemplateFactCheck,
		ProjectedDate: &projected,
		EventDate:     &event,
		Today:         day(0),
	})

	assert.Contains(t, prompt, "projected_date: 2026-01-06")
	assert.NotContains(t, prompt, "2026-01-31")
}

func TestBuildPromptNoDatesRendersNone(t *testing.T) {
	prompt := BuildPrompt(ClaimContext{Template: TemplateEndpointCheckin, Today: day(0)})
	assert.Contains(t, prompt, "projected_date: none")
	assert.True(t, strings.HasSuffix(prompt, "\n"))
}

func TestCustomIDWithoutFollowup(t *testing.T) {
	assert.Equal(t, "claim-1", CustomID("claim-1", ""))
}

func TestCustomIDWithFollowup(t *testing.T) {
	assert.Equal(t, "claim-1:followup-2", CustomID("claim-1", "followup-2"))
}
