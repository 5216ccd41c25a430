package ledger

import "errors"

var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrRowsLimitExceeded rejects a commit before any processing when the
	// batch is over the configured cap.
	ErrRowsLimitExceeded = errors.New("rows limit exceeded")
	// ErrDuplicateFingerprint is the store's idempotency signal: the
	// fingerprint already exists for this user. The commit pipeline counts
	// it; the manual path surfaces it.
	ErrDuplicateFingerprint = errors.New("duplicate fingerprint")
)
