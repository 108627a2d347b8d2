package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter kept in Redis. Each (scope, subject)
// pair gets Limit hits per Window.
type Limiter struct {
	client redis.Cmdable
	Limit  int
	Window time.Duration
	now    func() time.Time
}

func NewLimiter(client redis.Cmdable, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		client: client,
		Limit:  limit,
		Window: window,
		now:    time.Now,
	}
}

type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

func (l *Limiter) Allow(ctx context.Context, scope string, subject string) (Decision, error) {
	if l == nil || l.Limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	now := l.now().UTC()
	windowStart := now.Truncate(l.Window)
	key := Key(scope, subject, windowStart)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit incr %s: %w", key, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit expire %s: %w", key, err)
		}
	}
	decision := Decision{Allowed: count <= int64(l.Limit), Count: count}
	if !decision.Allowed {
		decision.RetryAfter = windowStart.Add(l.Window).Sub(now)
	}
	return decision, nil
}

func Key(scope string, subject string, windowStart time.Time) string {
	return "ratelimit:" + scope + ":" + subject + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}
