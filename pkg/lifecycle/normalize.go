package lifecycle

import "time"

// ClaimType mirrors ent/claim.Type's string values, kept independent of the
// ent-generated package so pkg/lifecycle's pure functions have no store
// dependency.
type ClaimType string

const (
	TypeGoal      ClaimType = "goal"
	TypePromise   ClaimType = "promise"
	TypeStatement ClaimType = "statement"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NormalizedClaim is the post-normalization form of one ClaimProcessingStep,
// ready to insert, per spec.md §3's construction-time invariants.
type NormalizedClaim struct {
	Type                    ClaimType
	CompletionConditionDate *time.Time
	EventDate               *time.Time
	FollowUpWorthy          bool
	Priority                Priority
	DatePast                bool
}

// Normalize applies spec.md §3's construction-time rules:
//   - promise missing completion_condition_date is demoted to goal
//   - goal has both dates null
//   - statement keeps only event_date
//   - follow_up_worthy=false && priority=high is lowered to medium
//
// pipelineToday is the anchor date_past is derived against.
func Normalize(claimType ClaimType, completionConditionDate, eventDate *time.Time, followUpWorthy bool, priority Priority, pipelineToday time.Time) NormalizedClaim {
	result := NormalizedClaim{
		Type:           claimType,
		FollowUpWorthy: followUpWorthy,
		Priority:       priority,
	}

	switch claimType {
	case TypePromise:
		if completionConditionDate == nil {
			result.Type = TypeGoal
		} else {
			result.CompletionConditionDate = completionConditionDate
		}
	case TypeStatement:
		result.EventDate = eventDate
	case TypeGoal:
		// both dates stay nil
	}

	if !result.FollowUpWorthy && result.Priority == PriorityHigh {
		result.Priority = PriorityMedium
	}

	if result.CompletionConditionDate != nil {
		result.DatePast = result.CompletionConditionDate.Before(pipelineToday)
	}

	return result
}

// IsChump reports whether a promise claim's stored completion_condition_date
// has gone missing or fallen into the past relative to its article_date at
// construction time — spec.md §9's "chump check", which SPEC_FULL.md records
// the original source re-running at the *start* of every scheduler run, not
// only at claim construction.
func IsChump(completionConditionDate *time.Time, articleDate time.Time) bool {
	return completionConditionDate == nil || !completionConditionDate.After(articleDate)
}
