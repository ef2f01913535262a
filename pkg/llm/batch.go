package llm

import (
	"context"
	"fmt"
	"time"
)

// Batch states, mirroring the provider's bulk-async job lifecycle as
// confirmed in
// _examples/original_source/service/util/openai_batch.py.
const (
	BatchStatusValidating = "validating"
	BatchStatusInProgress = "in_progress"
	BatchStatusFinalizing = "finalizing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
	BatchStatusExpired    = "expired"
	BatchStatusCancelled  = "cancelled"
)

// terminalBatchStatuses are states poll_batch stops on.
var terminalBatchStatuses = map[string]bool{
	BatchStatusCompleted: true,
	BatchStatusFailed:    true,
	BatchStatusExpired:   true,
	BatchStatusCancelled: true,
}

// BatchProgress is the subset of batch status fields the watchdog inspects.
type BatchProgress struct {
	Status           string
	CompletedCount   int
	TotalCount       int
	ResultFileID     string
	ErrorFileID      string
}

// BatchSubmitter is Mode A: submit a set of per-item requests as one bulk
// job and poll it to completion. Implementations wrap a specific provider's
// batch API.
type BatchSubmitter interface {
	Submit(ctx context.Context, requests []Request) (batchID string, err error)
	Status(ctx context.Context, batchID string) (BatchProgress, error)
	Cancel(ctx context.Context, batchID string) error
	FetchResults(ctx context.Context, progress BatchProgress) ([]Result, error)
}

// Request is one item submitted to either execution mode, keyed by
// CustomID so Mode A's per-row results and Mode B's bounded retries can both
// report back against the same caller-supplied identity.
type Request struct {
	CustomID     string
	SystemPrompt string
	UserPrompt   string
	Schema       map[string]interface{}
	SchemaName   string
	Model        string
}

// Result is the outcome of dispatching one Request, via either mode.
type Result struct {
	CustomID string
	Output   string // raw structured-output JSON
	LMLogID  string
	Err      error
}

// watchdogInterval is how often poll re-checks batch status.
const watchdogInterval = 30 * time.Second

// stallWindow bounds how long progress may go unchanged before the batch is
// considered stalled, mirroring poll_batch's last_progress_ts bump-on-
// increase rule from openai_batch.py.
const stallWindow = 20 * time.Minute

// hardStopWindow is the fixed outer ceiling regardless of progress,
// mirroring poll_batch's hard_stop_ts (now + 4h).
const hardStopWindow = 4 * time.Hour

// PollBatch polls submitter for batchID until it reaches a terminal status,
// a stall timeout (no completed-count increase within stallWindow), or the
// fixed hard_stop_ts ceiling — whichever comes first. On either timeout it
// cancels the batch and returns the timeout error so the caller can fail
// over to Mode B, matching poll_batch_with_fallback's on-timeout callback.
func PollBatch(ctx context.Context, submitter BatchSubmitter, batchID string, now func() time.Time) (BatchProgress, error) {
	start := now()
	hardStop := start.Add(hardStopWindow)
	lastProgressAt := start
	lastCompleted := -1

	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()

	for {
		progress, err := submitter.Status(ctx, batchID)
		if err != nil {
			return BatchProgress{}, err
		}
		if terminalBatchStatuses[progress.Status] {
			return progress, nil
		}

		current := now()
		if progress.CompletedCount > lastCompleted {
			lastCompleted = progress.CompletedCount
			lastProgressAt = current
		}

		if current.Sub(lastProgressAt) > stallWindow {
			_ = submitter.Cancel(ctx, batchID)
			return progress, fmt.Errorf("%w: batch %s stalled after %s with no progress", ErrBatchTimedOut, batchID, stallWindow)
		}
		if current.After(hardStop) {
			_ = submitter.Cancel(ctx, batchID)
			return progress, fmt.Errorf("%w: batch %s exceeded hard stop at %s", ErrBatchTimedOut, batchID, hardStopWindow)
		}

		select {
		case <-ctx.Done():
			return BatchProgress{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
