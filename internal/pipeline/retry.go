package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/memoire/internal/llm"
)

// RetryPolicy decides how often and how long a section draft is retried after
// a transient model error.
type RetryPolicy struct {
	Attempts int           // total tries per section, including the first
	Base     time.Duration // wait after the first failure, doubled each time
	Max      time.Duration // cap on any single wait
}

// DefaultRetryPolicy is used by workers unless overridden.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Base: time.Second, Max: 30 * time.Second}

// IsRetryable reports whether a draft error is worth another attempt.
func IsRetryable(err error) bool {
	var retryErr *llm.RetryableError
	return errors.As(err, &retryErr)
}

// Delay returns the wait before the try following a failed attempt
// (0-indexed). Rate limits start from twice the base, and an explicit
// Retry-After from the API is honored when it is longer, up to Max.
func (p RetryPolicy) Delay(attempt int, err error) time.Duration {
	base := p.Base
	var retryErr *llm.RetryableError
	rateLimited := errors.As(err, &retryErr) && retryErr.RateLimited()
	if rateLimited {
		base *= 2
	}
	d := base << min(attempt, 16)
	if d <= 0 || d > p.Max {
		d = p.Max
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	if rateLimited && retryErr.RetryAfter > d {
		d = retryErr.RetryAfter
	}
	return min(d, p.Max)
}
