// Package ratelimit throttles sensitive endpoints with fixed-window counters.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Counter increments the hit count of key within a window and returns the
// new count.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct{ C *redis.Client }

func NewRedis(addr string) *RedisCounter {
	return &RedisCounter{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisCounter) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *RedisCounter) Close() error                  { return r.C.Close() }

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.C.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Limiter allows Limit requests per client IP and Window.
type Limiter struct {
	Counter Counter
	Limit   int
	Window  time.Duration
	Prefix  string
	Log     *zap.Logger
}

// Handler rejects requests over the limit with 429. Counter errors let the
// request through.
func (l *Limiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil || l.Counter == nil || l.Limit <= 0 {
			return c.Next()
		}

		window := l.Window
		if window <= 0 {
			window = time.Minute
		}
		slot := time.Now().Unix() / int64(window.Seconds())
		key := l.Prefix + ":" + c.IP() + ":" + strconv.FormatInt(slot, 10)

		n, err := l.Counter.Hit(c.UserContext(), key, window)
		if err != nil {
			if l.Log != nil {
				l.Log.Warn("rate limiter unavailable", zap.Error(err), zap.String("key", key))
			}
			return c.Next()
		}

		remaining := int64(l.Limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(l.Limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(l.Limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests, try again later"})
		}
		return c.Next()
	}
}
