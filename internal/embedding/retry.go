package embedding

import (
	"time"
)

// FailureKind classifies a failed embedding attempt for backoff selection.
type FailureKind int

const (
	// FailureRateLimited means the service answered HTTP 429.
	FailureRateLimited FailureKind = iota
	// FailureTransient covers any other non-2xx status or network error.
	FailureTransient
)

// RetryPolicy controls how many attempts an embedding call makes and how
// long it waits between them.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(kind FailureKind, attempt int) time.Duration
}

// DefaultRetryPolicy returns the standard policy: exponential backoff
// (2^attempt seconds) when rate limited, a fixed two-second pause for
// every other failure.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(kind FailureKind, attempt int) time.Duration {
			if kind == FailureRateLimited {
				return time.Duration(1<<uint(attempt)) * time.Second
			}
			return 2 * time.Second
		},
	}
}
