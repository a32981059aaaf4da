// Package ratelimiter throttles retrieval dispatches. One token bucket
// bounds how many directory scans the scheduler may start per second so
// that a crowded minute with many schedules firing at once does not
// slam every source host simultaneously.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// unlimited stands in for "no limit configured"; rate.Inf has awkward
// burst semantics, a huge finite rate does not.
const unlimited = 1_000_000_000

// RateLimiter is a token-bucket dispatch throttle. Safe for concurrent
// use by all scanner goroutines.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New builds a limiter allowing dispatchesPerSecond sustained with the
// given burst capacity. A zero rate means no limiting at all.
func New(dispatchesPerSecond, burst uint) *RateLimiter {
	if dispatchesPerSecond == 0 {
		dispatchesPerSecond = unlimited
		burst = unlimited
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(dispatchesPerSecond), int(burst)),
	}
}

// Allow consumes one token when available and reports whether the
// dispatch may start now.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context ends. The
// scheduler uses this path so due directories are delayed rather than
// skipped.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// AllowN consumes n tokens at once, for dispatch batches.
func (r *RateLimiter) AllowN(n uint) bool {
	return r.limiter.AllowN(time.Now(), int(n))
}

// SetLimit changes the sustained rate at runtime. Burst follows the
// new rate unless a custom larger burst was configured.
func (r *RateLimiter) SetLimit(dispatchesPerSecond uint) {
	if dispatchesPerSecond == 0 {
		dispatchesPerSecond = unlimited
	}
	oldRate := uint(r.limiter.Limit())
	oldBurst := uint(r.limiter.Burst())
	r.limiter.SetLimit(rate.Limit(dispatchesPerSecond))
	if oldBurst <= oldRate {
		r.limiter.SetBurst(int(dispatchesPerSecond))
	}
}

// Tokens returns the tokens currently in the bucket, for diagnostics.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
