package chi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateExemptPaths are routes that bypass rate limiting (health, metrics).
var rateExemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// ipLimiter tracks one token bucket per client IP. Stale entries are evicted
// lazily so the map does not grow unbounded.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipEntry
	rps      rate.Limit
	burst    int
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const ipEntryTTL = 10 * time.Minute

func newIPLimiter(perMinute float64, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*ipEntry),
		rps:      rate.Limit(perMinute / 60),
		burst:    burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) > 1024 {
			l.evictStale(now)
		}
		entry = &ipEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	return entry.limiter.Allow()
}

func (l *ipLimiter) evictStale(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > ipEntryTTL {
			delete(l.limiters, ip)
		}
	}
}

// RateLimitMiddleware returns a per-IP token-bucket limiter.
// perMinute <= 0 disables limiting (pass-through).
func RateLimitMiddleware(perMinute float64, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if perMinute <= 0 {
			return next
		}

		limiter := newIPLimiter(perMinute, burst)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := rateExemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.allow(clientIP(r)) {
				retryAfter := int(time.Minute.Seconds() / perMinute)
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{
					Error:      "Too many requests. Please try again later.",
					RetryAfter: retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address, tolerating a missing port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
