package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "throttle:login:"

// RedisLimiter shares the fixed window across service instances.
type RedisLimiter struct {
	client *redis.Client
	max    int
	period time.Duration
}

// NewRedisLimiter allows max attempts per key per period using client.
func NewRedisLimiter(client *redis.Client, max int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, period: period}
}

// Allow counts one attempt for key. The window is opened with SET NX EX, which every
// Redis server supports, then incremented inside the same transaction.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	pipe := l.client.TxPipeline()
	_, incr, ttl := queueWindow(ctx, pipe, keyPrefix+key, l.period)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	return decide(incr.Val(), ttl.Val(), l.max, l.period)
}

func queueWindow(ctx context.Context, pipe redis.Pipeliner, key string, period time.Duration) (*redis.BoolCmd, *redis.IntCmd, *redis.DurationCmd) {
	open := pipe.SetNX(ctx, key, 0, period)
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	return open, incr, ttl
}

func decide(count int64, ttl time.Duration, max int, period time.Duration) (bool, time.Duration, error) {
	if count <= int64(max) {
		return true, 0, nil
	}
	if ttl <= 0 {
		ttl = period
	}
	return false, ttl, nil
}
