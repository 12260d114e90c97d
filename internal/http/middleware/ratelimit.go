package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key in the current window.
type Limiter interface {
	// Allow records a hit and reports whether the key is still under its limit.
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Max() int
}

// RedisLimiter is a fixed-window counter. INCR and PEXPIRE on the window key
// run in one MULTI/EXEC so a counter never outlives its window.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	window time.Duration
	max    int
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, window time.Duration, limit int) *RedisLimiter {
	if window < time.Millisecond {
		window = 15 * time.Minute
	}
	return &RedisLimiter{
		client: client,
		prefix: "gitgrok:ratelimit:",
		window: window,
		max:    limit,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Max() int {
	return l.max
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	bucket := l.now().UnixMilli() / l.window.Milliseconds()
	redisKey := l.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("counting hit on %s: %w", redisKey, err)
	}
	count := incr.Val()

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(l.max), remaining, nil
}

// RateLimit limits requests per client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		allowed, remaining, err := limiter.Allow(ctx, c.ClientIP())
		if err != nil {
			slog.WarnContext(ctx, "rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Max()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
