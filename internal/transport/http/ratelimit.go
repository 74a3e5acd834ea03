package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campthai/campthai-backend/internal/observability"
	"github.com/campthai/campthai-backend/internal/util"
)

// RateLimitConfig describes one fixed-window counter policy. Key resolution
// order: authenticated user id, then client IP, then KeyFunc if set.
type RateLimitConfig struct {
	// Policy names the limiter in metrics, e.g. "general" or "reviews".
	Policy string
	Max    int
	Window time.Duration
	// KeyFunc overrides key resolution entirely when it returns a
	// non-empty string.
	KeyFunc func(c echo.Context) string

	now func() time.Time
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

type rateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

// RateLimit returns a fixed-window rate-limiting middleware. State is
// in-process only: a restart clears all counters, and replicas do not
// coordinate.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiter := newRateLimiter(cfg)
	go limiter.cleanupLoop()
	return limiter.middleware
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	if cfg.Max <= 0 {
		cfg.Max = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Policy == "" {
		cfg.Policy = "general"
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &rateLimiter{
		cfg:     cfg,
		entries: make(map[string]*rateLimitEntry),
	}
}

func (l *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := l.keyFor(c)

		allowed, remaining, resetAt := l.take(key)
		if !allowed {
			retryAfter := int(resetAt.Sub(l.cfg.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			observability.ObserveRateLimited(l.cfg.Policy)
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			return c.JSON(http.StatusTooManyRequests, util.Envelope{
				"error":      "too many requests",
				"retryAfter": retryAfter,
			})
		}

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		return next(c)
	}
}

func (l *rateLimiter) keyFor(c echo.Context) string {
	if user, ok := CurrentUser(c); ok && user != nil {
		return "user:" + user.ID.String()
	}
	if ip := c.RealIP(); ip != "" {
		return "ip:" + ip
	}
	if l.cfg.KeyFunc != nil {
		if key := l.cfg.KeyFunc(c); key != "" {
			return "custom:" + key
		}
	}
	return "anonymous"
}

// take increments the counter for key and reports whether the request is
// within the window budget, the remaining budget, and when the window resets.
func (l *rateLimiter) take(key string) (allowed bool, remaining int, resetAt time.Time) {
	now := l.cfg.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.windowStart) >= l.cfg.Window {
		entry = &rateLimitEntry{count: 1, windowStart: now}
		l.entries[key] = entry
	} else {
		entry.count++
	}

	resetAt = entry.windowStart.Add(l.cfg.Window)
	if entry.count > l.cfg.Max {
		return false, 0, resetAt
	}
	return true, l.cfg.Max - entry.count, resetAt
}

// cleanupLoop drops expired entries so one-off clients do not accumulate
// forever. Runs for the lifetime of the process.
func (l *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for range ticker.C {
		l.cleanup()
	}
}

func (l *rateLimiter) cleanup() {
	now := l.cfg.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) >= l.cfg.Window {
			delete(l.entries, key)
		}
	}
}
