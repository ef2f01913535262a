package llm

import (
	"errors"

	"github.com/codeready-toolchain/verifyd/pkg/errs"
)

// ErrBatchTimedOut wraps errs.ProviderTimeout for the two watchdog bounds
// PollBatch enforces (stall and hard-stop).
var ErrBatchTimedOut = errors.Join(errs.ProviderTimeout, errors.New("batch polling timed out"))

// ErrAllRetriesExhausted is returned by the Mode B structured-parse retry
// loop when every attempt for a CustomID failed to parse against the
// schema.
var ErrAllRetriesExhausted = errors.New("llm: exhausted structured-output retries")
