package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func newTestLimiter(max int, window time.Duration) (*AttemptLimiter, *time.Time) {
	l := NewAttemptLimiter(max, window)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAttemptLimiter_DeniesAtLimit(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !l.Allow(1) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow(1) {
		t.Fatalf("attempt over the limit should be denied")
	}
}

func TestAttemptLimiter_DenialNotRecorded(t *testing.T) {
	t.Parallel()

	l, now := newTestLimiter(2, time.Hour)

	l.Allow(1)
	l.Allow(1)
	for i := 0; i < 10; i++ {
		if l.Allow(1) {
			t.Fatalf("denied attempt %d slipped through", i)
		}
	}

	// Only the two recorded attempts age out; the denials must not have
	// extended the window.
	*now = now.Add(time.Hour + time.Minute)
	if !l.Allow(1) {
		t.Fatalf("attempts should be allowed again after the window passes")
	}
}

func TestAttemptLimiter_WindowSlides(t *testing.T) {
	t.Parallel()

	l, now := newTestLimiter(2, time.Hour)

	l.Allow(1)
	*now = now.Add(30 * time.Minute)
	l.Allow(1)
	if l.Allow(1) {
		t.Fatalf("third attempt within the window should be denied")
	}

	// The first attempt ages out, freeing exactly one slot.
	*now = now.Add(31 * time.Minute)
	if !l.Allow(1) {
		t.Fatalf("one slot should be free after the oldest attempt aged out")
	}
	if l.Allow(1) {
		t.Fatalf("second slot is still held by the 30-minute attempt")
	}
}

func TestAttemptLimiter_PerUserIsolation(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(1, time.Hour)

	if !l.Allow(1) {
		t.Fatalf("first user should be allowed")
	}
	if l.Allow(1) {
		t.Fatalf("first user should now be at the limit")
	}
	if !l.Allow(2) {
		t.Fatalf("second user must not be affected by the first")
	}
}

func TestAttemptLimiter_Sweep(t *testing.T) {
	t.Parallel()

	l, now := newTestLimiter(5, time.Hour)

	l.Allow(1)
	l.Allow(2)
	*now = now.Add(2 * time.Hour)
	l.Allow(3)

	if n := l.Sweep(); n != 2 {
		t.Fatalf("expected 2 evicted users, got %d", n)
	}
	if len(l.attempts) != 1 {
		t.Fatalf("expected 1 live user after sweep, got %d", len(l.attempts))
	}
}

func TestAttemptLimiter_ConcurrentAllow(t *testing.T) {
	t.Parallel()

	l := NewAttemptLimiter(10, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(1) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Fatalf("expected exactly 10 allowed attempts, got %d", allowed)
	}
}
