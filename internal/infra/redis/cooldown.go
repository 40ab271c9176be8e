package redis

import (
	"context"
	"fmt"
	"time"
)

// CommandCooldown allows one command invocation per user per interval,
// backed by Redis so cooldowns hold across bot restarts.
type CommandCooldown struct {
	client RedisClient
	ttl    time.Duration
}

func NewCommandCooldown(client RedisClient, ttl time.Duration) *CommandCooldown {
	return &CommandCooldown{client: client, ttl: ttl}
}

// Allow returns (true, 0) when the user may invoke the command, or (false,
// retryAfter) while the cooldown key is live. Callers decide how to treat
// errors; the bot adapter fails open.
func (c *CommandCooldown) Allow(ctx context.Context, userID int64, command string) (bool, time.Duration, error) {
	key := UserCommandKey(userID, command)

	count, err := c.client.Incr(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, c.ttl); err != nil {
			return false, 0, err
		}
		return true, 0, nil
	}

	left, err := c.client.TTL(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if left <= 0 {
		// key without expiry (lost EXPIRE); be conservative
		left = c.ttl
	}
	return false, left, nil
}

func UserCommandKey(userID int64, command string) string {
	return fmt.Sprintf("cooldown:%d:%s", userID, command)
}
