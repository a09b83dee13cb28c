package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements the sliding window on a Redis sorted set so the
// window is shared across server instances. Members are unique per hit and
// scored by their unix-millisecond timestamp.
type RedisLimiter struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisLimiter returns a limiter backed by the given client.
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, now: time.Now}
}

// Hit checks and records one attempt for (action, scope, clientID).
func (l *RedisLimiter) Hit(ctx context.Context, action, scope, clientID string, window time.Duration, max int) (Result, error) {
	now := l.now()
	k := "rl:" + key(action, scope, clientID)
	cutoff := now.Add(-window).UnixMilli()

	if err := l.rdb.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return Result{}, err
	}

	count, err := l.rdb.ZCard(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}

	if count >= int64(max) {
		oldest, err := l.rdb.ZRangeWithScores(ctx, k, 0, 0).Result()
		if err != nil {
			return Result{}, err
		}
		retry := MinRetryAfter
		if len(oldest) == 1 {
			elapsed := time.Duration(now.UnixMilli()-int64(oldest[0].Score)) * time.Millisecond
			if r := window - elapsed; r > retry {
				retry = r
			}
		}
		return Result{Limited: true, RetryAfter: retry}, nil
	}

	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
