package httpmiddleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a request from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit returns a gin handler enforcing per-IP limits via the limiter.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(c.Request.Context(), ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

// SimpleTokenBucket is an in-memory per-key token bucket.
type SimpleTokenBucket struct {
	capacity int
	rate     int
	mu       sync.Mutex
	state    map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewSimpleTokenBucket creates a limiter with capacity tokens and rate per minute.
func NewSimpleTokenBucket(capacity, perMinute int) *SimpleTokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &SimpleTokenBucket{
		capacity: capacity,
		rate:     perMinute,
		state:    make(map[string]*bucket),
	}
}

// Allow takes one token for key, refilling by elapsed time first.
func (l *SimpleTokenBucket) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := time.Now()
	if !ok {
		b = &bucket{tokens: l.capacity - 1, last: now}
		l.state[key] = b
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RedisLimiter is a fixed-window limiter shared across instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing perMinute requests per key.
func NewRedisLimiter(client *redis.Client, prefix string, perMinute int) *RedisLimiter {
	if prefix == "" {
		prefix = "trainlog:ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: perMinute, window: time.Minute}
}

// Allow increments the key's window counter; the request passes while the
// counter stays at or under the limit. Redis errors fail open so a limiter
// outage does not take the API down with it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := l.prefix + ":" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}
	return count <= int64(l.limit)
}
