package queue

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/errs"
	"github.com/codeready-toolchain/verifyd/pkg/lease"
)

// StageJob is one pipeline stage a StagePool worker polls and runs:
// enrich, extract, lifecycle, or roundup. Run should return promptly (no
// work pending) rather than block; each stage's own Run already returns
// early when nothing is due.
type StageJob struct {
	Name         string
	Run          func(ctx context.Context) error
	PollInterval time.Duration
	Jitter       time.Duration
}

// StageHealth reports one stage worker's last poll outcome, the
// stage-pool analogue of WorkerHealth.
type StageHealth struct {
	Name        string    `json:"name"`
	LastRunAt   time.Time `json:"last_run_at,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	RunCount    int       `json:"run_count"`
	SkipCount   int       `json:"skip_count"`
}

// StagePool runs one polling goroutine per StageJob, each claiming a named
// pkg/lease.Manager lock (backed by store.Store.PipelineLocks, one
// PipelineLock row per stage) before invoking Run, so only one pod across
// the fleet executes a given stage at a time. Generalizes
// WorkerPool/Worker's per-AlertSession claim-then-process loop to a
// fixed, small set of named daily jobs instead of an unbounded row queue.
type StagePool struct {
	jobs   []StageJob
	leases *lease.Manager
	owner  string

	mu     sync.RWMutex
	health map[string]*StageHealth

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStagePool builds a StagePool. owner identifies this pod/process in the
// PipelineLock rows it acquires.
func NewStagePool(jobs []StageJob, cas lease.CAS, owner string) *StagePool {
	health := make(map[string]*StageHealth, len(jobs))
	for _, j := range jobs {
		health[j.Name] = &StageHealth{Name: j.Name}
	}
	return &StagePool{
		jobs:   jobs,
		leases: lease.New(cas, owner, lease.DefaultTTL),
		owner:  owner,
		health: health,
		stopCh: make(chan struct{}),
	}
}

// Start launches one polling goroutine per job.
func (p *StagePool) Start(ctx context.Context) {
	for _, job := range p.jobs {
		p.wg.Add(1)
		go p.run(ctx, job)
	}
}

// Stop signals every job goroutine to exit and waits for them.
func (p *StagePool) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

// Health returns a snapshot of every stage's last poll outcome.
func (p *StagePool) Health() []StageHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]StageHealth, 0, len(p.health))
	for _, j := range p.jobs {
		out = append(out, *p.health[j.Name])
	}
	return out
}

func (p *StagePool) run(ctx context.Context, job StageJob) {
	defer p.wg.Done()
	log := slog.With("stage", job.Name, "owner", p.owner)
	log.Info("stage worker started")

	for {
		select {
		case <-p.stopCh:
			log.Info("stage worker shutting down")
			return
		case <-ctx.Done():
			return
		default:
		}

		ran, err := p.tryRun(ctx, job)
		switch {
		case err != nil:
			log.Error("stage run failed", "error", err)
			p.recordError(job.Name, err)
		case ran:
			p.recordSuccess(job.Name)
		default:
			p.recordSkip(job.Name)
		}

		p.sleep(job.pollInterval())
	}
}

// tryRun acquires the stage's named lease and invokes Run under it. A lost
// lease race (another pod already running this stage) is not an error; the
// caller simply waits for the next poll.
func (p *StagePool) tryRun(ctx context.Context, job StageJob) (ran bool, err error) {
	lockID := "stage:" + job.Name
	now := time.Now()

	if err := p.leases.Acquire(ctx, lockID, now); err != nil {
		if errors.Is(err, errs.LeaseContention) {
			return false, nil
		}
		return false, err
	}
	defer p.leases.Release(context.WithoutCancel(ctx), lockID)

	if err := job.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *StagePool) sleep(d time.Duration) {
	select {
	case <-p.stopCh:
	case <-time.After(d):
	}
}

func (j StageJob) pollInterval() time.Duration {
	if j.Jitter <= 0 {
		return j.PollInterval
	}
	offset := time.Duration(rand.Int64N(int64(2 * j.Jitter)))
	return j.PollInterval - j.Jitter + offset
}

func (p *StagePool) recordSuccess(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.health[name]
	h.LastRunAt = time.Now()
	h.LastError = ""
	h.RunCount++
}

func (p *StagePool) recordSkip(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health[name].SkipCount++
}

func (p *StagePool) recordError(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.health[name]
	h.LastRunAt = time.Now()
	h.LastError = err.Error()
}
