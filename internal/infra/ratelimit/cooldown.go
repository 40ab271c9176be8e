package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCooldown is the process-local fallback for the per-user command
// cooldown, used when Redis is not configured.
type MemoryCooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryCooldown(ttl time.Duration) *MemoryCooldown {
	return &MemoryCooldown{
		last: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Allow returns (true, 0) when the user may invoke the command, or (false,
// retryAfter) while the cooldown is live. The error return only exists to
// match the Redis-backed implementation; it is always nil here.
func (c *MemoryCooldown) Allow(_ context.Context, userID int64, command string) (bool, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := fmt.Sprintf("%d:%s", userID, command)
	now := c.now()
	if t, ok := c.last[key]; ok {
		if left := c.ttl - now.Sub(t); left > 0 {
			return false, left, nil
		}
	}
	c.last[key] = now

	// drop expired entries opportunistically so the map stays bounded
	for k, t := range c.last {
		if now.Sub(t) > c.ttl {
			delete(c.last, k)
		}
	}
	return true, 0, nil
}
