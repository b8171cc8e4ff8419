// Package ratelimit paces outgoing API requests.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next request is allowed to go out.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Limiter is a Pacer backed by a token bucket.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a pacer that lets one request through every interval.
// A zero or negative interval never blocks.
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait waits until the rate limit allows the next request.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Interval reports the gap enforced between requests.
func (l *Limiter) Interval() time.Duration {
	limit := l.limiter.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}

// Unlimited never blocks. It still honours context cancellation.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Counting wraps a Pacer and counts calls to Wait.
type Counting struct {
	Next  Pacer
	Calls int
}

func (c *Counting) Wait(ctx context.Context) error {
	c.Calls++
	if c.Next == nil {
		return ctx.Err()
	}
	return c.Next.Wait(ctx)
}
