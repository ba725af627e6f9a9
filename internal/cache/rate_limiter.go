package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/redis/go-redis/v9"
)

const CaptureKeyPrefix = "capture_attempts"

// RateLimiter counts attempts per key over a sliding window.
type RateLimiter interface {
	// Allow records an attempt. It returns whether the attempt is allowed, the
	// attempts left in the window and the seconds to wait when refused.
	Allow(ctx context.Context, key string) (bool, int, int, error)
}

type redisRateLimiter struct {
	client *redis.Client
	cfg    *config.RateConfig
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, cfg *config.RateConfig) RateLimiter {
	return &redisRateLimiter{client: client, cfg: cfg, now: time.Now}
}

// Allow keeps one sorted-set member per attempt, scored by its timestamp in
// milliseconds. Entries older than the window are dropped before counting.
func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, int, int, error) {

	now := r.now()
	nowMs := now.UnixMilli()
	window := r.cfg.WindowSize

	windowStart := nowMs - window.Milliseconds()

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: now.UnixNano()})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	remaining := r.cfg.MaxAttempts - attempts

	if attempts > r.cfg.MaxAttempts {

		scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
			Key: key, Start: 0, Stop: 0,
		}).Result()
		if err != nil || len(scores) == 0 {
			slog.Warn("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, int(window.Seconds()), nil
		}

		oldestMs := int64(scores[0].Score)
		waitMs := max(oldestMs+window.Milliseconds()-nowMs, 0)

		// round up so clients never retry a moment too early
		return false, 0, int((waitMs + 999) / 1000), nil
	}

	return true, int(remaining), 0, nil
}

type noopRateLimiter struct{}

// NewNoopRateLimiter allows every attempt. Used when Redis is not configured.
func NewNoopRateLimiter() RateLimiter {
	return noopRateLimiter{}
}

func (noopRateLimiter) Allow(context.Context, string) (bool, int, int, error) { return true, 0, 0, nil }
