// Package ratelimit throttles requests per client with token buckets.
package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL   = 3 * time.Minute
	defaultRetryHint = 5 * time.Second
)

// KeyFunc picks the bucket for a request.
type KeyFunc func(*fiber.Ctx) string

// Config sets the bucket size and refill rate.
type Config struct {
	// RequestsPerSecond is the refill rate. Zero or less disables limiting.
	RequestsPerSecond float64
	Burst             int
	// IdleTTL evicts buckets not seen for this long.
	IdleTTL time.Duration
	Key     KeyFunc
	Now     func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	cfg       Config
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// New applies defaults: burst 1 and the user, then tenant, then IP key.
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.Key == nil {
		cfg.Key = ViewerKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Limiter{cfg: cfg, visitors: map[string]*visitor{}}
}

// ViewerKey keys by the authenticated user, falling back to the client IP.
func ViewerKey(c *fiber.Ctx) string {
	if user, ok := c.Locals("user_id").(string); ok && user != "" {
		return "user:" + user
	}
	return "ip:" + c.IP()
}

// Allow reports whether key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l.cfg.RequestsPerSecond <= 0 {
		return true
	}
	now := l.cfg.Now()
	l.mu.Lock()
	l.sweep(now)
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// sweep drops idle buckets at most once per IdleTTL. Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.cfg.IdleTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.Allow(l.cfg.Key(c)) {
			return c.Next()
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(l.retryHint().Seconds())))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
	}
}

func (l *Limiter) retryHint() time.Duration {
	if l.cfg.RequestsPerSecond <= 0 {
		return defaultRetryHint
	}
	wait := time.Duration(float64(time.Second) / l.cfg.RequestsPerSecond)
	if wait < time.Second {
		return time.Second
	}
	return wait
}
