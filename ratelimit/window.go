// Package ratelimit bounds outbound request rate with a sliding trailing
// window over recent request timestamps.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-itsm/core"
)

const (
	DefaultPeriod = time.Minute

	// compactionThreshold caps how many expired entries accumulate at the
	// head of the timestamp slice before it is copied to fresh storage.
	compactionThreshold = 1000
)

// Window admits up to Limit requests per trailing Period. When the window is
// full, Acquire waits exactly until the oldest retained request ages out:
// (oldest + period) - now. A waiter holds the window lock for the duration,
// so concurrent callers drain strictly one at a time; no fairness beyond
// lock-acquisition order is guaranteed.
type Window struct {
	Limit  int
	Period time.Duration

	// Now and Sleep exist for tests; nil means the real clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, delay time.Duration) error

	mu     sync.Mutex
	stamps []time.Time
}

// NewWindow builds a gate admitting limit requests per minute. A
// non-positive limit falls back to the default of 100.
func NewWindow(limit int) *Window {
	if limit <= 0 {
		limit = core.DefaultRequestsPerMinute
	}
	return &Window{
		Limit:  limit,
		Period: DefaultPeriod,
	}
}

// Acquire blocks until the window admits another request, or the context is
// cancelled. On success the request's timestamp is recorded before return.
func (w *Window) Acquire(ctx context.Context) error {
	if w == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.pruneLocked(now)

	if w.Limit > 0 && len(w.stamps) >= w.Limit {
		wait := w.stamps[0].Add(w.period()).Sub(now)
		if wait > 0 {
			if err := w.sleep(ctx, wait); err != nil {
				return err
			}
		}
		now = w.now()
		w.pruneLocked(now)
	}

	w.stamps = append(w.stamps, now)
	return nil
}

// Pending reports how many requests are currently retained in the window.
func (w *Window) Pending() int {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(w.now())
	return len(w.stamps)
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.period())
	idx := 0
	for idx < len(w.stamps) && !w.stamps[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return
	}
	if idx >= compactionThreshold {
		remaining := make([]time.Time, len(w.stamps)-idx)
		copy(remaining, w.stamps[idx:])
		w.stamps = remaining
		return
	}
	w.stamps = w.stamps[idx:]
}

func (w *Window) period() time.Duration {
	if w.Period > 0 {
		return w.Period
	}
	return DefaultPeriod
}

func (w *Window) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Window) sleep(ctx context.Context, delay time.Duration) error {
	if w.Sleep != nil {
		return w.Sleep(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ core.RateGate = (*Window)(nil)
