package httpx

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/slogx"
)

// Default rate-limit parameters for the global gate.
const (
	DefaultRateLimitWindow  = 10 * time.Minute
	DefaultRateLimitCeiling = 300
)

// window is the per-key counter state. Counts are approximate under
// concurrent access; approximate fairness is all a throttle needs.
type window struct {
	count int
	start time.Time
}

// RateLimiter counts requests per key within a rolling window and rejects
// past the ceiling. It is an owned, injected instance rather than a package
// singleton so tests can construct isolated limiters and drive the clock.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window

	ceiling   int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter builds a limiter allowing ceiling requests per key per
// window. Non-positive arguments fall back to the defaults.
func NewRateLimiter(ceiling int, windowSize time.Duration) *RateLimiter {
	if ceiling <= 0 {
		ceiling = DefaultRateLimitCeiling
	}
	if windowSize <= 0 {
		windowSize = DefaultRateLimitWindow
	}
	return &RateLimiter{
		windows: make(map[string]*window),
		ceiling: ceiling,
		window:  windowSize,
		now:     time.Now,
	}
}

// SetClock replaces the limiter's time source. Tests use it to assert on
// window boundaries deterministically.
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

// Allow records a request for key and reports whether it is within the
// ceiling. retryAfter is how long until the window resets when rejected.
func (rl *RateLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.windows[key] = &window{count: 1, start: now}
		return true, 0
	}

	w.count++
	if w.count > rl.ceiling {
		return false, rl.window - now.Sub(w.start)
	}
	return true, 0
}

// sweepLocked drops windows that elapsed, at most once per window size, so
// ephemeral keys do not accumulate forever.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now

	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.window {
			delete(rl.windows, key)
		}
	}
}

// RateLimitMiddleware applies limiter keyed by client IP, skipping any path
// under a bypass prefix. Payment-critical paths are exempted this way: a
// false-positive rejection mid-checkout is worse than under-throttling them.
func RateLimitMiddleware(limiter *RateLimiter, identity ClientIdentity, bypassPrefixes []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range bypassPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			key := identity.ClientIP(r)
			if key == "" {
				// No key means no way to throttle fairly; let it through.
				slogx.FromContext(r.Context()).Warn("rate limit: no client key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				seconds := max(int(retryAfter.Seconds()), 1)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))

				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", seconds,
				)

				WriteError(w, r, errx.RateLimited("too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
