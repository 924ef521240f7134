package ledger

import "errors"

// Error taxonomy surfaced to callers. Handlers match with errors.Is and
// decide how to present each class; none of these are retried here except
// ErrConcurrency, which wraps lock contention after the internal retry
// budget is spent.
var (
	// ErrValidation marks malformed input: bad dates, unknown enum values,
	// amounts that are not representable at two decimal places.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown user or account.
	ErrNotFound = errors.New("not found")

	// ErrAccountInactive marks a write against an Inactive account.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrConcurrency marks contention that outlasted the retry budget.
	// The operation was not committed; the caller may safely retry.
	ErrConcurrency = errors.New("concurrent update conflict")

	// ErrStorage marks a persistence failure. The atomic append either
	// committed fully or not at all, so no cleanup is needed, but the
	// caller must re-submit deliberately rather than retry blindly.
	ErrStorage = errors.New("storage error")
)
