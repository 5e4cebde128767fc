package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between consecutive outbound requests.
// Free data plans allow only a handful of calls per minute, so the fetcher
// waits here before every network hit.
type Throttle struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Throttle. A non-positive interval disables throttling.
func New(minInterval time.Duration) *Throttle {
	return &Throttle{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous call, or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.minInterval <= 0 {
		return nil
	}
	t.mu.Lock()
	now := t.now()
	var wait time.Duration
	if !t.last.IsZero() {
		if elapsed := now.Sub(t.last); elapsed < t.minInterval {
			wait = t.minInterval - elapsed
		}
	}
	t.last = now.Add(wait)
	t.mu.Unlock()

	if wait > 0 {
		return t.sleep(ctx, wait)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
