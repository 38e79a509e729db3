package retry

import "errors"

var (
	// ErrPermanentFailure marks an error the policy refused to retry.
	ErrPermanentFailure = errors.New("permanent failure")

	// ErrRetriesExhausted marks the last error after the retry budget ran out.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
