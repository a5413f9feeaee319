package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/tutora/platform/pkg/errx"
	"golang.org/x/time/rate"
)

// BurstConfig defines token-bucket parameters for endpoints that need
// tighter, smoother throttling than the global window limiter, mainly
// credential-bearing auth endpoints (brute-force prevention).
type BurstConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// AuthBurstLimit is the profile applied to token refresh and logout.
var AuthBurstLimit = BurstConfig{
	RequestsPerWindow: 20,
	Window:            time.Minute,
	Burst:             20,
}

// burstEntry pairs a bucket with its last use so idle buckets can be
// evicted.
type burstEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// burstLimiter keeps a token bucket per key. Idle entries are swept, so the
// map does not grow with every distinct client address ever seen.
type burstLimiter struct {
	mu      sync.Mutex
	entries map[string]*burstEntry

	rate  rate.Limit
	burst int

	// idleTTL is several windows long; an idle bucket is fully refilled
	// well before it elapses, so eviction never readmits a throttled
	// client early.
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newBurstLimiter(config BurstConfig) *burstLimiter {
	return &burstLimiter{
		entries: make(map[string]*burstEntry),
		rate:    rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:   config.Burst,
		idleTTL: 3 * config.Window,
		now:     time.Now,
	}
}

func (bl *burstLimiter) get(key string) *rate.Limiter {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	now := bl.now()
	bl.sweepLocked(now)

	e, ok := bl.entries[key]
	if !ok {
		e = &burstEntry{limiter: rate.NewLimiter(bl.rate, bl.burst)}
		bl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweepLocked drops buckets idle past the TTL, at most once per TTL.
func (bl *burstLimiter) sweepLocked(now time.Time) {
	if now.Sub(bl.lastSweep) < bl.idleTTL {
		return
	}
	bl.lastSweep = now

	for key, e := range bl.entries {
		if now.Sub(e.lastSeen) >= bl.idleTTL {
			delete(bl.entries, key)
		}
	}
}

// BurstLimitMiddleware applies a per-client token bucket on top of whatever
// the global window limiter allows. Both run: the bucket smooths spikes, the
// window caps volume.
func BurstLimitMiddleware(config BurstConfig, identity ClientIdentity) Middleware {
	bl := newBurstLimiter(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := identity.ClientIP(r)
			if key == "" || bl.get(key).Allow() {
				next.ServeHTTP(w, r)
				return
			}
			WriteError(w, r, errx.RateLimited("too many requests, please try again later"))
		})
	}
}
