package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/winefetch"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter gates the start of each attempt.
type Limiter interface {
	Wait(ctx context.Context) error
}

var _ Limiter = (*RateLimiter)(nil)

// RateLimiter enforces a minimum interval between successive grants across
// every caller in the process. It paces starts; it does not bound concurrency.
type RateLimiter struct {
	// turn serializes grants: exactly one Wait resolves at a time.
	turn     *semaphore.Weighted
	limiter  *rate.Limiter
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a RateLimiter that permits requestsPerMinute grants per minute.
func NewRateLimiter(requestsPerMinute int) (*RateLimiter, error) {
	if requestsPerMinute <= 0 {
		return nil, winefetch.Errorf(winefetch.EINVALID, "requests per minute must be positive, got %d", requestsPerMinute)
	}
	return NewIntervalLimiter(time.Minute / time.Duration(requestsPerMinute))
}

// NewIntervalLimiter creates a RateLimiter with an explicit interval between grants.
func NewIntervalLimiter(interval time.Duration) (*RateLimiter, error) {
	if interval <= 0 {
		return nil, winefetch.Errorf(winefetch.EINVALID, "rate limit interval must be positive, got %s", interval)
	}
	return &RateLimiter{
		turn:     semaphore.NewWeighted(1),
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}, nil
}

// Interval returns the minimum spacing between grants.
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until at least Interval has elapsed since the previous grant.
// Returns an error if the context is canceled before the grant.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if err := l.turn.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.turn.Release(1)

	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	// The token bucket schedules grants on a fixed grid, so a late wakeup
	// for the previous grant can leave this one short of the interval.
	if !l.last.IsZero() {
		if d := l.interval - time.Since(l.last); d > 0 {
			if err := sleep(ctx, d); err != nil {
				return err
			}
		}
	}

	l.last = time.Now()
	return nil
}
