package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/followup"
	"github.com/google/uuid"
)

// FollowupRepo exposes typed operations over the Follow-up collection.
type FollowupRepo struct {
	client *ent.Client
}

// InsertIfAbsent inserts a Follow-up for (claimID, date) unless one already
// exists, implementing the (claim_id, follow_up_date) dedupe invariant from
// spec.md §3/§8 at the write boundary rather than relying solely on the
// unique index to reject the duplicate.
func (r *FollowupRepo) InsertIfAbsent(ctx context.Context, claimID string, date time.Time, modelOutputNote *string) (*ent.Followup, bool, error) {
	date = Normalize(date)
	existing, err := r.client.Followup.Query().
		Where(followup.ClaimIDEQ(claimID), followup.FollowUpDateEQ(date)).
		Only(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !ent.IsNotFound(err) {
		return nil, false, err
	}

	create := r.client.Followup.Create().
		SetID(uuid.NewString()).
		SetClaimID(claimID).
		SetFollowUpDate(date)
	if modelOutputNote != nil {
		create = create.SetModelOutputNote(*modelOutputNote)
	}
	created, err := create.Save(ctx)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// FutureExists reports whether any Follow-up for claimID has a date >=
// today — Autoplan's "skip if any existing Follow-up has follow_up_date >=
// today" rule.
func (r *FollowupRepo) FutureExists(ctx context.Context, claimID string, today time.Time) (bool, error) {
	return r.client.Followup.Query().
		Where(followup.ClaimIDEQ(claimID), followup.FollowUpDateGTE(Normalize(today))).
		Exist(ctx)
}

// Due returns unprocessed Follow-ups whose date is today.
func (r *FollowupRepo) Due(ctx context.Context, today time.Time) ([]*ent.Followup, error) {
	return r.client.Followup.Query().
		Where(followup.FollowUpDateEQ(Normalize(today)), followup.ProcessedAtIsNil()).
		All(ctx)
}

// MarkProcessed sets processed_at/processed_update_id.
func (r *FollowupRepo) MarkProcessed(ctx context.Context, id, updateID string, now time.Time) error {
	return r.client.Followup.UpdateOneID(id).
		SetProcessedAt(now).
		SetProcessedUpdateID(updateID).
		Exec(ctx)
}

// Dedupe collapses duplicate (claim_id, follow_up_date) rows, preferring
// the processed one, tie-breaking on earliest created_at, per spec.md §8
// testable property 3 / Testable Scenario 3.
func (r *FollowupRepo) Dedupe(ctx context.Context) (int, error) {
	all, err := r.client.Followup.Query().
		Order(ent.Asc(followup.FieldClaimID), ent.Asc(followup.FieldFollowUpDate), ent.Asc(followup.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return 0, err
	}

	groups := map[string][]*ent.Followup{}
	order := []string{}
	for _, f := range all {
		key := f.ClaimID + "|" + f.FollowUpDate.Format(time.RFC3339)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	removed := 0
	for _, key := range order {
		dupes := groups[key]
		if len(dupes) < 2 {
			continue
		}
		keep := dupes[0]
		for _, f := range dupes {
			if f.ProcessedAt != nil && keep.ProcessedAt == nil {
				keep = f
			}
		}
		for _, f := range dupes {
			if f.ID == keep.ID {
				continue
			}
			if err := r.client.Followup.DeleteOneID(f.ID).Exec(ctx); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
