// Package errs defines the sentinel error kinds of SPEC_FULL.md §7, in the
// sentinel + wrapped-validation-error idiom of pkg/services/errors.go.
package errs

import (
	"errors"
	"fmt"
)

var (
	// TransientStoreError is retried by the next run; an individual insert
	// failure inside a batch is logged and the batch continues.
	TransientStoreError = errors.New("transient store error")

	// LeaseContention means "skip this document" — not an error to the caller.
	LeaseContention = errors.New("lease contention")

	// ProviderTimeout (Mode A) triggers failover to Mode B for the same
	// request list; it never propagates unless Mode B also fails.
	ProviderTimeout = errors.New("provider batch timed out")

	// ProviderRateOrNetworkError (Mode B) gets a bounded retry, then the item
	// is logged and skipped for the run.
	ProviderRateOrNetworkError = errors.New("provider rate limit or network error")

	// FatalConfigError means a required store or prompt is missing; the
	// stage exits non-zero.
	FatalConfigError = errors.New("fatal configuration error")
)

// ValidationError wraps a structured-parse failure. Bounded retries (max 3)
// are attempted before falling back to heuristic classification or dropping
// the record, per SPEC_FULL.md §7.
type ValidationError struct {
	CustomID string
	Cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %q: %s", e.CustomID, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// NewValidationError creates a new ValidationError.
func NewValidationError(customID string, cause error) error {
	return &ValidationError{CustomID: customID, Cause: cause}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
