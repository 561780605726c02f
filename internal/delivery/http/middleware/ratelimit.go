package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"eventboard/internal/delivery/http/helpers"
)

// RateLimiterConfig holds token-bucket settings for the per-client limiter.
type RateLimiterConfig struct {
	RPS     float64       // steady-state refill rate per key
	Burst   int           // bucket capacity
	IdleTTL time.Duration // evict a key's bucket after this much inactivity
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP, evicting idle entries in
// the background.
type RateLimiter struct {
	conf    RateLimiterConfig
	mu      sync.Mutex
	buckets map[string]*clientLimiter
}

// NewRateLimiter creates a RateLimiter and starts its idle-entry cleanup loop.
func NewRateLimiter(conf RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		conf:    conf,
		buckets: make(map[string]*clientLimiter),
	}

	go func() {
		interval := conf.IdleTTL / 2
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			rl.mu.Lock()
			for k, v := range rl.buckets {
				if now.Sub(v.lastSeen) > rl.conf.IdleTTL {
					delete(rl.buckets, k)
				}
			}
			rl.mu.Unlock()
		}
	}()

	return rl
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}
	lim := rate.NewLimiter(rate.Limit(rl.conf.RPS), rl.conf.Burst)
	rl.buckets[key] = &clientLimiter{limiter: lim, lastSeen: now}
	return lim
}

// Middleware limits requests per client IP, responding 429 when the client's
// bucket is empty.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiterFor(key).Allow() {
			w.Header().Set("Retry-After", "1")
			helpers.WriteJSONError(w, http.StatusTooManyRequests, "too_many_requests",
				"too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
