package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CounterStore counts hits per key within a fixed window. Implementations:
// a redis-backed store shared across instances, and an in-process fallback.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, retryAfter time.Duration, err error)
}

type RateLimiter struct {
	store  CounterStore
	limit  int64
	window time.Duration
}

func NewRateLimiter(store CounterStore, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// RateLimiterMiddleware returns a gin.HandlerFunc that enforces the limit
// for a derived key.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, retryAfter, err := rl.store.Incr(c.Request.Context(), key, rl.window)

		if err != nil {
			// limiter outage must not take the API down with it
			c.Next()
			return
		}

		if count > rl.limit {
			secs := int(retryAfter.Seconds())

			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

// MemoryCounterStore keeps fixed windows per key in process memory.
type MemoryCounterStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{clients: make(map[string]*clientBucket)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]

	if !ok || now.After(b.windowEnd) {
		s.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(window),
		}
		return 1, window, nil
	}

	b.count++

	return b.count, time.Until(b.windowEnd), nil
}

// RedisCounterStore shares windows across instances via INCR + EXPIRE.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb, prefix: "ratelimit:"}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.prefix + key

	count, err := s.rdb.Incr(ctx, k).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		err = s.rdb.Expire(ctx, k, window).Err()

		if err != nil {
			return 0, 0, err
		}

		return count, window, nil
	}

	ttl, err := s.rdb.TTL(ctx, k).Result()

	if err != nil || ttl < 0 {
		ttl = window
	}

	return count, ttl, nil
}
