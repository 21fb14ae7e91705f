package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window limiter shared across instances through Redis
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRedisLimiter creates a new Redis-backed rate limiter
func NewRedisLimiter(redisClient *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Allow increments the counter for key in the current window
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(rl.config.Window),
	}, nil
}

// LocalLimiter is an in-process token bucket per key, used when Redis is not configured
type LocalLimiter struct {
	config RateLimitConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalLimiter refills Limit tokens per Window with a burst of Limit
func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow takes one token from the bucket for key. A non-positive Limit allows everything.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if l.config.Limit <= 0 || l.config.Window <= 0 {
		return Decision{Allowed: true}, nil
	}

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.config.Window/time.Duration(l.config.Limit)), l.config.Limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := time.Now()
	allowed := lim.AllowN(now, 1)

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	// time until the bucket is full again
	missing := float64(l.config.Limit) - lim.TokensAt(now)
	resetAt := now.Add(time.Duration(missing / float64(lim.Limit()) * float64(time.Second)))

	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// RateLimit returns a Gin middleware that limits requests per client IP
func RateLimit(limiter Limiter, logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Log error but don't fail the request
			logger.Printf("Warning: rate limit check failed: %v", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d suggestion requests", decision.Limit),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// NewSuggestionRateLimiter picks the Redis limiter when a client is given, the local one otherwise.
// It returns nil, meaning no limiting, when perMinute is not positive.
func NewSuggestionRateLimiter(redisClient *redis.Client, perMinute int) Limiter {
	if perMinute <= 0 {
		return nil
	}
	config := RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:suggestions",
	}
	if redisClient != nil {
		return NewRedisLimiter(redisClient, config)
	}
	return NewLocalLimiter(config)
}
