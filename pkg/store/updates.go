package store

import (
	"context"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/update"
	"github.com/google/uuid"
)

// UpdateRepo exposes typed operations over the Update collection.
type UpdateRepo struct {
	client *ent.Client
}

// NewUpdateInput is the ready-to-insert form of one verification outcome.
type NewUpdateInput struct {
	ClaimID     string
	ArticleID   string
	Verdict     string
	Text        string
	Sources     []string
	ModelOutput map[string]interface{}
	LMLogID     *string
}

// Insert creates an Update row.
func (r *UpdateRepo) Insert(ctx context.Context, in NewUpdateInput) (*ent.Update, error) {
	create := r.client.Update.Create().
		SetID(uuid.NewString()).
		SetClaimID(in.ClaimID).
		SetArticleID(in.ArticleID).
		SetVerdict(in.Verdict).
		SetText(in.Text).
		SetSources(in.Sources).
		SetModelOutput(in.ModelOutput)
	if in.LMLogID != nil {
		create = create.SetLmLogID(*in.LMLogID)
	}
	return create.Save(ctx)
}

// Latest returns the most recent Update for a Claim, ordered by
// (created_at, id), the authoritative "current" verdict per spec.md §5.
func (r *UpdateRepo) Latest(ctx context.Context, claimID string) (*ent.Update, error) {
	return r.client.Update.Query().
		Where(update.ClaimIDEQ(claimID)).
		Order(ent.Desc(update.FieldCreatedAt), ent.Desc(update.FieldID)).
		First(ctx)
}
