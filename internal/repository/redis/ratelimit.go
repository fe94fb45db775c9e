package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter keyed by caller, used to throttle the
// public postback endpoint per partner. It replaces counting rows in the
// audit-log table on every request.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limitPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limitPerWindow,
		window: window,
	}
}

// Allow increments the caller's counter for the current window and reports
// whether the request is under the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(r.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:postback:%s:%d", key, bucket)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		// first hit in the window owns the expiry
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return count <= int64(r.limit), nil
}
