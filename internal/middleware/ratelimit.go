package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// RateLimiter applies a per-client token bucket, keyed by user id when
// authenticated and remote address otherwise.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the given
// burst per client.
func NewRateLimiter(requestsPerSecond, burst int, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.NewDefault("ratelimit")
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		log:      log,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Bound the map; per-client fairness resets under sustained churn.
	if len(rl.limiters) > 10000 {
		rl.limiters = make(map[string]*rate.Limiter)
	}

	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Handler rejects requests exceeding the client's budget with 429.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetUserID(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !rl.limiter(key).Allow() {
			rl.log.WithField("key", key).
				WithField("path", r.URL.Path).
				Warn("rate limit exceeded")
			w.Header().Set("Retry-After", time.Second.String())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
