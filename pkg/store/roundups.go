package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/roundup"
	"github.com/google/uuid"
)

// RoundupRepo exposes typed operations over the Roundup collection.
type RoundupRepo struct {
	client *ent.Client
}

// Exists reports whether a Roundup for (kind, start, end) already exists —
// the uniqueness check C9 runs before generating one.
func (r *RoundupRepo) Exists(ctx context.Context, kind roundup.Kind, start, end time.Time) (bool, error) {
	return r.client.Roundup.Query().
		Where(
			roundup.KindEQ(kind),
			roundup.PeriodStartEQ(Normalize(start)),
			roundup.PeriodEndEQ(Normalize(end)),
		).
		Exist(ctx)
}

// NewRoundupInput is the ready-to-insert form of a generated Roundup.
type NewRoundupInput struct {
	Kind         roundup.Kind
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Title        string
	Body         string
	Sources      []string
	SeedArticles []interface{}
	OmittedCount int
}

// Insert creates a Roundup.
func (r *RoundupRepo) Insert(ctx context.Context, in NewRoundupInput) (*ent.Roundup, error) {
	return r.client.Roundup.Create().
		SetID(uuid.NewString()).
		SetKind(in.Kind).
		SetPeriodStart(Normalize(in.PeriodStart)).
		SetPeriodEnd(Normalize(in.PeriodEnd)).
		SetTitle(in.Title).
		SetBody(in.Body).
		SetSources(in.Sources).
		SetSeedArticles(in.SeedArticles).
		SetOmittedCount(in.OmittedCount).
		Save(ctx)
}

// RecentByKind returns up to limit Roundups of the given kind within
// [start,end], ordered by period_start — used to collect nested seeds
// (e.g. up to 7 dailies inside a weekly window).
func (r *RoundupRepo) RecentByKind(ctx context.Context, kind roundup.Kind, start, end time.Time, limit int) ([]*ent.Roundup, error) {
	return r.client.Roundup.Query().
		Where(
			roundup.KindEQ(kind),
			roundup.PeriodStartGTE(Normalize(start)),
			roundup.PeriodEndLTE(Normalize(end)),
		).
		Order(ent.Asc(roundup.FieldPeriodStart)).
		Limit(limit).
		All(ctx)
}
