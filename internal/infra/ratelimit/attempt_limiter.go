package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AttemptLimiter enforces "at most N verification attempts per trailing
// window" per Telegram user, keeping the exact timestamps of recent attempts
// (sliding log). State is process-local and best effort; it does not survive
// restarts.
type AttemptLimiter struct {
	mu       sync.Mutex
	attempts map[int64][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		attempts: make(map[int64][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow prunes attempts older than the window, then either records a new
// attempt and returns true, or returns false without recording one when the
// user is already at the limit. Only the calling user's entry is touched.
func (l *AttemptLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.attempts[userID][:0]
	for _, t := range l.attempts[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.attempts[userID] = kept
		return false
	}
	l.attempts[userID] = append(kept, now)
	return true
}

// Sweep drops users whose every attempt has aged out of the window, bounding
// map growth across long uptimes. Returns the number of evicted users.
func (l *AttemptLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	evicted := 0
	for id, ts := range l.attempts {
		stale := true
		for _, t := range ts {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.attempts, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps periodically until ctx is cancelled.
func (l *AttemptLimiter) Run(ctx context.Context, every time.Duration, log *zerolog.Logger) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if n := l.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("attempt limiter sweep")
			}
		}
	}
}
