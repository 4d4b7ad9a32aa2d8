package evaluator

import "time"

// RetryPolicy governs how many times a model call is attempted and how
// long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// DefaultRetryPolicy returns the standard policy: 3 attempts with
// exponential backoff starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
	}
}

// ExponentialBackoff returns a backoff schedule of base, 2*base, 4*base...
// for attempts numbered from 1.
func ExponentialBackoff(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return base << (attempt - 1)
	}
}

// Delay returns the wait before the next attempt after the given attempt
// number. A nil Backoff means no wait.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}

// Attempts returns the effective attempt bound, at least 1.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
