package store

import (
	"context"
	"time"

	"github.com/codeready-toolchain/verifyd/ent"
	"github.com/codeready-toolchain/verifyd/ent/article"
	"github.com/codeready-toolchain/verifyd/ent/pipelinelock"
)

type leaseField int

const (
	leaseFieldEnrich leaseField = iota
	leaseFieldClaimproc
	leaseFieldFollowupAnswer
)

// articleLease implements lease.CAS (pkg/lease) against one of Article's
// three lock columns. The compare-and-set predicate matches rows where the
// lock is unset or has expired (locked_at older than now-ttl); this is a
// single conditional UPDATE, so two concurrent callers racing for the same
// row can both attempt it but only one can succeed per SPEC_FULL.md §4.C2.
type articleLease struct {
	client *ent.Client
	field  leaseField
}

// TryAcquire implements lease.CAS. The predicate also matches rows already
// held by this same owner (unexpired), so a holder's own heartbeat refresh
// is a legal "re-acquire", not a contention failure.
func (a *articleLease) TryAcquire(ctx context.Context, id, owner string, ttl time.Duration, now time.Time) (bool, error) {
	cutoff := now.Add(-ttl)

	var n int
	var err error
	switch a.field {
	case leaseFieldEnrich:
		n, err = a.client.Article.Update().
			Where(
				article.IDEQ(id),
				article.Or(
					article.EnrichLockedAtIsNil(),
					article.EnrichLockedAtLT(cutoff),
					article.EnrichLockOwnerEQ(owner),
				),
			).
			SetEnrichLockedAt(now).
			SetEnrichLockOwner(owner).
			Save(ctx)
	case leaseFieldClaimproc:
		n, err = a.client.Article.Update().
			Where(
				article.IDEQ(id),
				article.Or(
					article.ClaimprocLockedAtIsNil(),
					article.ClaimprocLockedAtLT(cutoff),
					article.ClaimprocLockOwnerEQ(owner),
				),
			).
			SetClaimprocLockedAt(now).
			SetClaimprocLockOwner(owner).
			Save(ctx)
	case leaseFieldFollowupAnswer:
		n, err = a.client.Article.Update().
			Where(
				article.IDEQ(id),
				article.Or(
					article.FollowupAnswerLockedAtIsNil(),
					article.FollowupAnswerLockedAtLT(cutoff),
					article.FollowupAnswerLockOwnerEQ(owner),
				),
			).
			SetFollowupAnswerLockedAt(now).
			SetFollowupAnswerLockOwner(owner).
			Save(ctx)
	}
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release implements lease.CAS. Never fails the caller: a release on an
// already-released or nonexistent lease is a no-op.
func (a *articleLease) Release(ctx context.Context, id string) error {
	upd := a.client.Article.UpdateOneID(id)
	switch a.field {
	case leaseFieldEnrich:
		upd = upd.ClearEnrichLockedAt().ClearEnrichLockOwner()
	case leaseFieldClaimproc:
		upd = upd.ClearClaimprocLockedAt().ClearClaimprocLockOwner()
	case leaseFieldFollowupAnswer:
		upd = upd.ClearFollowupAnswerLockedAt().ClearFollowupAnswerLockOwner()
	}
	err := upd.Exec(ctx)
	if ent.IsNotFound(err) {
		return nil
	}
	return err
}

// pipelineLockCAS implements lease.CAS (pkg/lease) against the PipelineLock
// entity: one named row per daily pipeline stage, compare-and-set the same
// way articleLease does for a single Article's per-concern lock columns,
// generalized to an upsert since a stage's lock row may not exist yet on
// its first run.
type pipelineLockCAS struct {
	client *ent.Client
}

// TryAcquire implements lease.CAS. A conditional UPDATE wins when the
// existing lock is absent/expired/already ours, matching articleLease's
// re-acquire-by-same-owner rule; if no row matched, it creates the row, and
// a unique-constraint error on that create counts as a lost race.
func (p *pipelineLockCAS) TryAcquire(ctx context.Context, id, owner string, ttl time.Duration, now time.Time) (bool, error) {
	cutoff := now.Add(-ttl)

	n, err := p.client.PipelineLock.Update().
		Where(
			pipelinelock.IDEQ(id),
			pipelinelock.Or(
				pipelinelock.LockedAtIsNil(),
				pipelinelock.LockedAtLT(cutoff),
				pipelinelock.LockOwnerEQ(owner),
			),
		).
		SetLockedAt(now).
		SetLockOwner(owner).
		Save(ctx)
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	// No existing row for this stage yet: create it, racing safely on the
	// id's uniqueness constraint against concurrent first-acquirers.
	err = p.client.PipelineLock.Create().
		SetID(id).
		SetLockedAt(now).
		SetLockOwner(owner).
		Exec(ctx)
	if err == nil {
		return true, nil
	}
	if ent.IsConstraintError(err) {
		return false, nil
	}
	return false, err
}

// Release implements lease.CAS.
func (p *pipelineLockCAS) Release(ctx context.Context, id string) error {
	err := p.client.PipelineLock.UpdateOneID(id).
		ClearLockedAt().
		ClearLockOwner().
		Exec(ctx)
	if ent.IsNotFound(err) {
		return nil
	}
	return err
}
