package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-ai/backend/internal/apperror"
	"github.com/pageza/recipe-ai/backend/internal/logging"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Name labels the policy in errors and metrics
	Name string
	// Window is the sliding window length
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for store keys
	KeyPrefix string
}

// Policies enforced by the API.
var (
	GeneralPolicy = RateLimitConfig{Name: "general", Window: 15 * time.Minute, Limit: 100, KeyPrefix: "rate_limit:general"}
	AuthPolicy    = RateLimitConfig{Name: "auth", Window: 15 * time.Minute, Limit: 5, KeyPrefix: "rate_limit:auth"}
	AIPolicy      = RateLimitConfig{Name: "ai", Window: time.Minute, Limit: 10, KeyPrefix: "rate_limit:ai"}
)

// RateLimitStore counts requests in a sliding window. Hit records one request
// for key and reports whether it fits, how many remain and when the oldest
// counted request leaves the window.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, resetAt time.Time, err error)
}

// RateLimiter applies one policy against a store.
type RateLimiter struct {
	store  RateLimitStore
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(store RateLimitStore, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store:  store,
		config: config,
	}
}

// IsAllowed checks if a request from the given client is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, client string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("%s:%s", rl.config.KeyPrefix, client)
	return rl.store.Hit(ctx, key, rl.config.Limit, rl.config.Window)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// per client address.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			// A broken store must not take the API down.
			logging.FromContext(c).WithError(err).WithField("policy", rl.config.Name).Warn("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			rateLimitRejects.WithLabelValues(rl.config.Name).Inc()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortWithError(c, &apperror.RateLimitError{
				Policy:     rl.config.Name,
				Limit:      rl.config.Limit,
				RetryAfter: retryAfter,
			})
			return
		}

		c.Next()
	}
}

// RedisStore keeps one sorted set per key, scored by request time.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()[:8]

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(card.Val())
	resetAt := now.Add(window)
	if z := oldest.Val(); len(z) > 0 {
		resetAt = time.Unix(0, int64(z[0].Score)).Add(window)
	}

	if count > limit {
		// Rejected requests do not occupy the window.
		if err := s.redis.ZRem(ctx, key, member).Err(); err != nil {
			return false, 0, resetAt, err
		}
		return false, 0, resetAt, nil
	}
	return true, limit - count, resetAt, nil
}

// MemoryStore is a process-local sliding window used when Redis is not
// configured.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time), now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (bool, int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)
	hits := s.hits[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]

	if len(hits) >= limit {
		s.hits[key] = hits
		return false, 0, hits[0].Add(window), nil
	}

	hits = append(hits, now)
	s.hits[key] = hits
	return true, limit - len(hits), hits[0].Add(window), nil
}

// Sweep drops keys with no requests in window. Call it periodically.
func (s *MemoryStore) Sweep(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-window)
	for key, hits := range s.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.hits, key)
		}
	}
}

// NewRateLimitStore picks Redis when a client is available.
func NewRateLimitStore(client *redis.Client, log logrus.FieldLogger) RateLimitStore {
	if client == nil {
		log.Info("redis not configured, using in-memory rate limiting")
		return NewMemoryStore()
	}
	return NewRedisStore(client)
}
