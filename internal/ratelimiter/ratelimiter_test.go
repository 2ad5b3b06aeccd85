package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNew verifies rate limiter creation with different parameters.
func TestNew(t *testing.T) {
	tests := []struct {
		name              string
		requestsPerSecond uint
		burst             uint
		wantBurst         int
	}{
		{name: "standard rate", requestsPerSecond: 100, burst: 200, wantBurst: 200},
		{name: "burst defaults to rate", requestsPerSecond: 50, burst: 0, wantBurst: 50},
		{name: "low rate", requestsPerSecond: 1, burst: 2, wantBurst: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.requestsPerSecond, tt.burst)
			if limiter == nil || limiter.limiter == nil {
				t.Fatal("New() returned an unusable limiter")
			}
			if got := limiter.limiter.Burst(); got != tt.wantBurst {
				t.Errorf("burst = %d, want %d", got, tt.wantBurst)
			}
		})
	}
}

// TestUnlimited verifies that a zero rate never rejects.
func TestUnlimited(t *testing.T) {
	limiter := New(0, 0)

	for i := 0; i < 10_000; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d rejected by an unlimited limiter", i)
		}
	}
	if got := limiter.retryAfter(); got != 1 {
		t.Errorf("retryAfter() = %d, want 1", got)
	}
}

// TestAllow verifies that Allow() correctly enforces rate limits.
func TestAllow(t *testing.T) {
	// Create limiter with 10 req/s, burst of 10
	limiter := New(10, 10)

	// First burst should be allowed (up to burst capacity)
	for i := 0; i < 10; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d should be allowed (within burst)", i)
		}
	}

	// Next request should be rate-limited (bucket empty)
	if limiter.Allow() {
		t.Fatal("request should be rate-limited after burst exhausted")
	}

	// Wait for token replenishment (100ms for 10 req/s = 1 token)
	time.Sleep(110 * time.Millisecond)

	// Should have 1 token available now
	if !limiter.Allow() {
		t.Fatal("request should be allowed after token replenishment")
	}
}

// TestMiddleware verifies that requests over the limit get 429.
func TestMiddleware(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	handler := New(1, 2).Middleware(next)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want \"1\"", got)
	}
	if calls != 2 {
		t.Errorf("next called %d times, want 2", calls)
	}
}

// TestRetryAfterSlowRate verifies the hint for rates below one per second.
func TestRetryAfterSlowRate(t *testing.T) {
	limiter := New(1, 1)
	limiter.limiter.SetLimit(0.25)

	if got := limiter.retryAfter(); got != 4 {
		t.Errorf("retryAfter() = %d, want 4", got)
	}
}
