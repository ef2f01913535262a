package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/claim"
	"github.com/google/uuid"
)

// ClaimRepo exposes typed operations over the Claim collection.
type ClaimRepo struct {
	client *ent.Client
}

// NewClaimInput is the normalized, ready-to-insert form of one
// ClaimProcessingStep after C7 has applied the §3 normalization rules.
type NewClaimInput struct {
	ArticleID               string
	ArticleLink             string
	ArticleDate             time.Time
	Claim                   string
	VerbatimClaim           string
	Type                    claim.Type
	CompletionCondition     string
	CompletionConditionDate *time.Time
	EventDate               *time.Time
	FollowUpWorthy          bool
	Priority                claim.Priority
	Mechanism               *string
	DatePast                bool
}

// Insert creates a Claim.
func (r *ClaimRepo) Insert(ctx context.Context, in NewClaimInput) (*ent.Claim, error) {
	create := r.client.Claim.Create().
		SetID(uuid.NewString()).
		SetArticleID(in.ArticleID).
		SetArticleLink(in.ArticleLink).
		SetArticleDate(Normalize(in.ArticleDate)).
		SetClaim(in.Claim).
		SetVerbatimClaim(in.VerbatimClaim).
		SetType(in.Type).
		SetCompletionCondition(in.CompletionCondition).
		SetFollowUpWorthy(in.FollowUpWorthy).
		SetPriority(in.Priority).
		SetDatePast(in.DatePast)

	if in.CompletionConditionDate != nil {
		create = create.SetCompletionConditionDate(Normalize(*in.CompletionConditionDate))
	}
	if in.EventDate != nil {
		create = create.SetEventDate(Normalize(*in.EventDate))
	}
	if in.Mechanism != nil {
		create = create.SetMechanism(*in.Mechanism)
	}
	return create.Save(ctx)
}

// Get returns a single Claim by id.
func (r *ClaimRepo) Get(ctx context.Context, id string) (*ent.Claim, error) {
	return r.client.Claim.Get(ctx, id)
}

// EligiblePromises returns promise Claims where date_past is false, the
// scheduler's eligible population per SPEC_FULL.md §4.C8.
func (r *ClaimRepo) EligiblePromises(ctx context.Context) ([]*ent.Claim, error) {
	return r.client.Claim.Query().
		Where(claim.TypeEQ(claim.TypePromise), claim.DatePastEQ(false)).
		All(ctx)
}

// EligibleGoals returns follow_up_worthy goal Claims.
func (r *ClaimRepo) EligibleGoals(ctx context.Context) ([]*ent.Claim, error) {
	return r.client.Claim.Query().
		Where(claim.TypeEQ(claim.TypeGoal), claim.FollowUpWorthy(true)).
		All(ctx)
}

// EligibleStatements returns follow_up_worthy statement Claims with no
// prior Update — statements are never proactively re-checked once they
// have at least one Update (spec.md §4.C8 + §9 Open Questions).
func (r *ClaimRepo) EligibleStatements(ctx context.Context) ([]*ent.Claim, error) {
	return r.client.Claim.Query().
		Where(
			claim.TypeEQ(claim.TypeStatement),
			claim.FollowUpWorthy(true),
			claim.Not(claim.HasUpdates()),
		).
		All(ctx)
}

// MarkTerminal sets date_past=true. Only promises transition to Terminal
// within the core (spec.md §9 Open Questions: goals never do).
func (r *ClaimRepo) MarkTerminal(ctx context.Context, id string) error {
	return r.client.Claim.UpdateOneID(id).SetDatePast(true).Exec(ctx)
}

// DemoteToGoal converts a promise whose completion_condition_date has gone
// missing or already lapsed at construction time into a goal, clearing the
// now-irrelevant deadline — the "chump check" re-run at the start of every
// scheduler run (SPEC_FULL.md, recovered from original_source/).
func (r *ClaimRepo) DemoteToGoal(ctx context.Context, id string) error {
	return r.client.Claim.UpdateOneID(id).
		SetType(claim.TypeGoal).
		ClearCompletionConditionDate().
		Exec(ctx)
}

// CountByArticle returns how many Claims reference articleID — one term of
// C9's seed-ranking score.
func (r *ClaimRepo) CountByArticle(ctx context.Context, articleID string) (int, error) {
	return r.client.Claim.Query().Where(claim.ArticleIDEQ(articleID)).Count(ctx)
}
