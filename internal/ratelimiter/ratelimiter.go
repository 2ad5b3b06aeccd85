package ratelimiter

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests with a token bucket.
//
// Tokens are added at a constant rate up to the burst capacity; each request
// consumes one. A request that finds the bucket empty is rejected rather
// than queued, so a slow scraper can never pile up goroutines.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter allowing requestsPerSecond sustained and burst
// requests at once.
//
// Special cases:
//   - requestsPerSecond = 0: No rate limiting (unlimited)
//   - burst = 0: Burst defaults to requestsPerSecond
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// retryAfter is the number of whole seconds until the next token, at least 1.
func (r *RateLimiter) retryAfter() int {
	limit := float64(r.limiter.Limit())
	if limit <= 0 || math.IsInf(limit, 1) {
		return 1
	}
	return max(1, int(math.Ceil(1/limit)))
}

// Middleware rejects requests over the limit with 429 Too Many Requests and
// a Retry-After header; the rest are passed to next.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(r.retryAfter()))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}
