// Package lease implements the cooperative work-lease layer of
// SPEC_FULL.md §4.C2: a TTL-bounded compare-and-set mutex per (document,
// lock name), generalized from the teacher's Worker.claimNextSession
// (SELECT ... FOR UPDATE SKIP LOCKED + conditional Update) and its
// heartbeat pattern (runHeartbeat / last_interaction_at), and confirmed
// against the original pipeline's find_one_and_update CAS lock
// (_examples/original_source/service/util/locks.py).
package lease

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/errs"
)

// DefaultTTL is used when a caller doesn't override it.
const DefaultTTL = 30 * time.Minute

// CAS is the compare-and-set primitive a collection repo must provide for
// Manager to lease against. Implementations live in pkg/store (e.g.
// ArticleRepo.EnrichLease()).
type CAS interface {
	// TryAcquire sets the lock to {locked_at: now, owner} iff the lock is
	// absent, expired (locked_at < now-ttl), or already held by owner (so
	// Heartbeat's refresh succeeds). Returns whether it won.
	TryAcquire(ctx context.Context, id, owner string, ttl time.Duration, now time.Time) (bool, error)
	// Release unconditionally clears the lock. Never returns an error the
	// caller needs to act on; implementations swallow not-found.
	Release(ctx context.Context, id string) error
}

// Manager mediates all access to a single named lock across documents, so
// stages never reach past it to mutate each other's locks directly
// (spec.md §9, "Cross-component lifecycle flags on a shared entity").
type Manager struct {
	cas   CAS
	owner string
	ttl   time.Duration
}

// New creates a Manager for one lock kind, owned by the given worker
// identity (e.g. pod id + process id).
func New(cas CAS, owner string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{cas: cas, owner: owner, ttl: ttl}
}

// Acquire attempts to win the lease for id. Returns errs.LeaseContention
// (not a hard failure — callers should skip the document this run) when
// another worker already holds a live lease.
func (m *Manager) Acquire(ctx context.Context, id string, now time.Time) error {
	ok, err := m.cas.TryAcquire(ctx, id, m.owner, m.ttl, now)
	if err != nil {
		return err
	}
	if !ok {
		return errs.LeaseContention
	}
	return nil
}

// Release clears the lease. Errors are logged, never returned: per
// SPEC_FULL.md §4.C2 "release... never fails the caller."
func (m *Manager) Release(ctx context.Context, id string) {
	if err := m.cas.Release(ctx, id); err != nil {
		slog.Warn("lease release failed", "id", id, "owner", m.owner, "error", err)
	}
}

// WithLease acquires the lease, runs fn, and releases it regardless of fn's
// outcome. If the lease is contended, fn is not run and a nil error is
// returned (contention is "skip this document", not a caller-visible
// error) — callers that need to distinguish contention from success should
// call Acquire/Release directly instead.
func (m *Manager) WithLease(ctx context.Context, id string, now time.Time, fn func(ctx context.Context) error) error {
	if err := m.Acquire(ctx, id, now); err != nil {
		if errors.Is(err, errs.LeaseContention) {
			return nil
		}
		return err
	}
	defer m.Release(context.WithoutCancel(ctx), id)
	return fn(ctx)
}

// Heartbeat periodically refreshes the lease's locked_at timestamp while
// work is in flight, mirroring Worker.runHeartbeat, so long-running holders
// don't get reclaimed by the TTL mid-flight. Stops when ctx is cancelled.
func (m *Manager) Heartbeat(ctx context.Context, id string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.cas.TryAcquire(ctx, id, m.owner, m.ttl, time.Now()); err != nil {
				slog.Warn("lease heartbeat failed", "id", id, "owner", m.owner, "error", err)
			}
		}
	}
}
