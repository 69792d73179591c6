package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/calculate_shipping", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if !limiter.Allow("client") {
		t.Fatalf("expected first request to be allowed")
	}
}

func TestTokenBucketLimiterIsolatesClients(t *testing.T) {
	limiter := newTokenBucketLimiter(1, 1)

	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first request from 10.0.0.1 to be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected second request from 10.0.0.1 to be denied")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected a different client to have its own bucket")
	}
}

func TestTokenBucketLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	limiter := &clientLimiter{
		limit:   1,
		burst:   1,
		clients: make(map[string]*clientEntry),
		now:     func() time.Time { return now },
	}

	limiter.Allow("stale")
	now = now.Add(clientIdleTTL + time.Second)
	limiter.Allow("fresh")
	limiter.evictIdle(now)

	if _, ok := limiter.clients["stale"]; ok {
		t.Fatalf("expected idle client to be evicted")
	}
	if _, ok := limiter.clients["fresh"]; !ok {
		t.Fatalf("expected recent client to be kept")
	}
}

func TestClientAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	if got := clientAddress(req); got != "192.0.2.10" {
		t.Fatalf("expected remote host, got %s", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := clientAddress(req); got != "192.0.2.10" {
		t.Fatalf("expected forwarded header to be ignored, got %s", got)
	}

	req.Header.Del("X-Forwarded-For")
	req.RemoteAddr = "not-a-host-port"
	if got := clientAddress(req); got != "not-a-host-port" {
		t.Fatalf("expected raw remote addr fallback, got %s", got)
	}
}

func TestRateLimitMiddlewareIgnoresSpoofedForwardedFor(t *testing.T) {
	middleware := rateLimitMiddleware(newTokenBucketLimiter(0.001, 1), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/calculate_shipping", nil)
		req.RemoteAddr = "198.51.100.4:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		middleware.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	if allowed != 1 {
		t.Fatalf("expected a single request through at burst 1, got %d", allowed)
	}
}
