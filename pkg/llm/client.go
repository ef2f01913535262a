package llm

import (
	"context"
	"log/slog"
	"time"
)

// DispatchOptions configures one Dispatch call.
type DispatchOptions struct {
	// Parse validates one item's raw output; nil skips validation.
	Parse func(customID, output string) error
	// ForceSyncMode skips Mode A entirely (used by C5's tool loop, which is
	// inherently per-turn synchronous).
	ForceSyncMode bool
}

// Dispatcher is C4's public surface: submit a set of requests and get back
// one Result per CustomID, using bulk-async Mode A when the batch size
// warrants it and failing over to Mode B on submission or watchdog failure.
// This composition — try the cheaper bulk path, fail over to the per-item
// path on timeout — is grounded on the two-tier poll_batch/
// poll_batch_with_fallback flow in
// _examples/original_source/service/util/openai_batch.py, expressed with Go
// interfaces in place of Python callables.
type Dispatcher struct {
	batch       BatchSubmitter
	sync        *SyncDispatcher
	minBatchLen int
	now         func() time.Time
}

// NewDispatcher builds a Dispatcher. minBatchLen is the smallest request
// count worth submitting as a batch; smaller sets go straight to Mode B.
func NewDispatcher(batch BatchSubmitter, sync *SyncDispatcher, minBatchLen int) *Dispatcher {
	return &Dispatcher{batch: batch, sync: sync, minBatchLen: minBatchLen, now: time.Now}
}

// Dispatch runs requests through Mode A (if eligible) and fails over the
// whole set to Mode B on any batch-level error.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []Request, opts DispatchOptions) ([]Result, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	useBatch := d.batch != nil && !opts.ForceSyncMode && len(requests) >= d.minBatchLen
	if useBatch {
		results, err := d.dispatchBatch(ctx, requests, opts)
		if err == nil {
			return results, nil
		}
		slog.Warn("llm batch dispatch failed, failing over to synchronous mode", "error", err, "requests", len(requests))
	}

	return d.dispatchSync(ctx, requests, opts), nil
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, requests []Request, opts DispatchOptions) ([]Result, error) {
	batchID, err := d.batch.Submit(ctx, requests)
	if err != nil {
		return nil, err
	}

	progress, err := PollBatch(ctx, d.batch, batchID, d.now)
	if err != nil {
		return nil, err
	}
	if progress.Status != BatchStatusCompleted {
		return nil, ErrBatchTimedOut
	}

	results, err := d.batch.FetchResults(ctx, progress)
	if err != nil {
		return nil, err
	}

	if opts.Parse != nil {
		for i, r := range results {
			if r.Err != nil {
				continue
			}
			if perr := opts.Parse(r.CustomID, r.Output); perr != nil {
				results[i].Err = perr
			}
		}
	}
	return results, nil
}

func (d *Dispatcher) dispatchSync(ctx context.Context, requests []Request, opts DispatchOptions) []Result {
	results := make([]Result, len(requests))
	for i, req := range requests {
		req := req
		parse := func(output string) error {
			if opts.Parse == nil {
				return nil
			}
			return opts.Parse(req.CustomID, output)
		}
		results[i] = d.sync.DispatchOne(ctx, req, parse)
	}
	return results
}
