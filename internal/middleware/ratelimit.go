package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tomasen/realip"
	"golang.org/x/time/rate"

	"github.com/Decentr-net/yatube/internal/api"
	"github.com/Decentr-net/yatube/internal/auth"
)

type limiter struct {
	l          *rate.Limiter
	lastAccess time.Time
}

// RateLimiter limits requests per identity; anonymous requests are limited per client ip.
type RateLimiter struct {
	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration

	mu       sync.Mutex
	limiters map[string]*limiter

	stop chan struct{}
}

// NewRateLimiter creates RateLimiter and starts background cleanup of idle limiters.
func NewRateLimiter(limit rate.Limit, burst int, cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:           limit,
		burst:           burst,
		cleanupInterval: cleanupInterval,
		limiters:        map[string]*limiter{},
		stop:            make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops background cleanup.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Middleware ...
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := auth.FromContext(r.Context())
		if !ok {
			key = "ip:" + realip.FromRequest(r)
		}

		if !rl.get(key).Allow() {
			retryAfter := int(math.Ceil(1 / float64(rl.limit)))
			if retryAfter < 1 {
				retryAfter = 1
			}

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			api.WriteError(w, http.StatusTooManyRequests, "too many requests")

			log.WithField("key", key).Warn("rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		l = &limiter{l: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastAccess = time.Now()

	return l.l
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, v := range rl.limiters {
		if now.Sub(v.lastAccess) > 2*rl.cleanupInterval {
			delete(rl.limiters, k)
		}
	}
}
