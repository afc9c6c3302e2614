package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// APIRateLimiter caps outbound request rates per provider using a
// token bucket.
type APIRateLimiter struct {
	limiter *rate.Limiter
}

// NewAPIRateLimiter allows requestsPerMinute sustained, with a small
// burst for slate-sized batches.
func NewAPIRateLimiter(requestsPerMinute int) *APIRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &APIRateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 5),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *APIRateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without blocking.
func (l *APIRateLimiter) Allow() bool {
	return l.limiter.Allow()
}
