package aliexpress

import (
	"context"
	"sync"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
)

const rateWindow = 60 * time.Second

// RateLimiter admits at most limit requests per sliding 60-second window.
// The window is shared by every caller going through the same client, so
// concurrent requests serialize on it and cannot jointly exceed the cap.
type RateLimiter struct {
	mu         sync.Mutex
	limit      int
	timestamps []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit: limit,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Wait blocks until a request may be dispatched, then records its
// timestamp in the window. The lock is held across the wait on purpose:
// callers behind a full window proceed one at a time.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	// Drop timestamps that left the window.
	kept := r.timestamps[:0]
	for _, ts := range r.timestamps {
		if now.Sub(ts) < rateWindow {
			kept = append(kept, ts)
		}
	}
	r.timestamps = kept

	if len(r.timestamps) >= r.limit {
		wait := rateWindow - now.Sub(r.timestamps[0])
		if wait > 0 {
			log.Warnf(ctx, "rate limit reached, waiting %.2fs", wait.Seconds())
			if err := r.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	r.timestamps = append(r.timestamps, r.now())
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
