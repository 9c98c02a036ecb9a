package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/redisclient"
)

// RateLimiter is a fixed-window counter kept in process memory. It is the
// fallback when no Redis is configured; counts are per instance.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
	}
}

func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		now := time.Now()

		rl.mu.Lock()

		b, ok := rl.clients[key]

		if !ok || now.After(b.windowEnd) {
			rl.clients[key] = &clientBucket{
				count:     1,
				windowEnd: now.Add(rl.window),
			}

			rl.mu.Unlock()
			c.Next()
			return
		}

		if b.count >= rl.limit {
			retryAfter := int(time.Until(b.windowEnd).Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			rl.mu.Unlock()

			abortRateLimited(c, retryAfter)
			return
		}

		b.count++
		rl.mu.Unlock()
		c.Next()
	}
}

// RedisRateLimiter shares one fixed window across instances through Redis
// INCR + EXPIRE. A Redis failure fails open: a throttle outage must not take
// the billboard down with it.
type RedisRateLimiter struct {
	client *redisclient.Client
	window time.Duration
	limit  int
	prefix string
}

func NewRedisRateLimiter(client *redisclient.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (rl *RedisRateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		ctx := c.Request.Context()
		redisKey := rl.prefix + ":" + key

		rdb := rl.client.Raw()

		n, err := rdb.Incr(ctx, redisKey).Result()

		if err != nil {
			c.Next()
			return
		}

		if n == 1 {
			rdb.Expire(ctx, redisKey, rl.window)
		}

		if n > int64(rl.limit) {
			ttl, err := rdb.TTL(ctx, redisKey).Result()

			retryAfter := int(rl.window.Seconds())
			if err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			abortRateLimited(c, retryAfter)
			return
		}

		c.Next()
	}
}

func abortRateLimited(c *gin.Context, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))

	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": gin.H{
			"code":    "rate_limited",
			"message": "Too many requests. Please try again shortly.",
		},
	})
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// for authenticated endpoints: rate limit by userID when present
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
