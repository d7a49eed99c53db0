package redis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// RateLimiter 滑动窗口限流器，每个请求以时间戳为分值写入有序集合
type RateLimiter struct {
	client *Client
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow 检查是否允许请求（滑动窗口算法）
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.Allow")
	span.SetAttributes(
		attribute.String("ratelimit.key", key),
		attribute.Int("ratelimit.limit", limit),
		attribute.Int64("ratelimit.window_ms", window.Milliseconds()),
	)
	defer span.End()

	now := time.Now()
	windowStart := now.Add(-window).UnixMilli()

	pipe := l.client.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return false, err
	}

	count := countCmd.Val()
	allowed := count <= int64(limit)
	span.SetAttributes(
		attribute.Int64("ratelimit.current_count", count),
		attribute.Bool("ratelimit.allowed", allowed),
	)
	return allowed, nil
}

// BuildRateLimitKey 构建限流键：prefix:subject:endpoint
func BuildRateLimitKey(prefix, subject, endpoint string) string {
	if prefix == "" {
		prefix = "ratelimit"
	}
	if subject == "" {
		subject = "anonymous"
	}
	return strings.Join([]string{prefix, subject, endpoint}, ":")
}
