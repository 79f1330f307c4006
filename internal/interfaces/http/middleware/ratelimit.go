package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// RateLimitInfo describes the limiter state returned alongside an Allow
// decision, used to populate the X-RateLimit-* response headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate per client key.
	RequestsPerSecond float64

	// BurstSize is the maximum number of tokens a bucket can hold.
	BurstSize int

	// KeyFunc extracts the client key from a request.  Defaults to the
	// client IP when nil.
	KeyFunc func(c *gin.Context) string

	// SkipPaths are paths exempt from rate limiting.
	SkipPaths []string

	// CleanupInterval controls how often idle buckets are evicted.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns the default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

func defaultKeyFunc(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := c.GetHeader("X-Real-IP"); real != "" {
		return real
	}
	return c.ClientIP()
}

// bucket is a token bucket for a single client key.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter is an in-memory per-key token bucket limiter.  Buckets
// refill continuously at the configured rate up to the burst size; idle full
// buckets are evicted by a background cleanup loop.
type TokenBucketLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	rate  float64
	burst float64

	stopCh   chan struct{}
	stopOnce sync.Once

	now func() time.Time
}

// NewTokenBucketLimiter constructs a limiter and starts its cleanup loop.
// Call Stop when the limiter is no longer needed.
func NewTokenBucketLimiter(requestsPerSecond float64, burstSize int, cleanupInterval time.Duration) *TokenBucketLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 50
	}
	if burstSize <= 0 {
		burstSize = int(requestsPerSecond) * 2
	}
	l := &TokenBucketLimiter{
		buckets: make(map[string]*bucket),
		rate:    requestsPerSecond,
		burst:   float64(burstSize),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop(cleanupInterval)
	}
	return l
}

// Allow consumes a token for key if one is available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	b := l.getBucket(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastRefill = now

	info := RateLimitInfo{
		Limit:   int(l.burst),
		ResetAt: now.Add(time.Duration((l.burst - b.tokens) / l.rate * float64(time.Second))),
	}

	if b.tokens < 1 {
		info.Remaining = 0
		return false, info
	}
	b.tokens--
	info.Remaining = int(b.tokens)
	return true, info
}

func (l *TokenBucketLimiter) getBucket(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		return b
	}
	b = &bucket{tokens: l.burst, lastRefill: l.now()}
	l.buckets[key] = b
	return b
}

// BucketCount returns the number of tracked client keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop terminates the cleanup loop.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *TokenBucketLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.cleanup(interval)
		}
	}
}

// cleanup removes buckets that have been idle long enough to be full again.
func (l *TokenBucketLimiter) cleanup(idleFor time.Duration) {
	cutoff := l.now().Add(-idleFor)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastRefill.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

// RateLimit returns a middleware enforcing the given limiter.  Rejected
// requests receive 429 with X-RateLimit-* headers describing the bucket.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, info := limiter.Allow(keyFunc(c))

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
