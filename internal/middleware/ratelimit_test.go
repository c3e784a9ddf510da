package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4", 3, time.Minute) {
			t.Fatalf("request %d denied under the limit", i)
		}
	}
	if rl.Allow("1.2.3.4", 3, time.Minute) {
		t.Error("request over the limit allowed")
	}
	if !rl.Allow("5.6.7.8", 3, time.Minute) {
		t.Error("different key shares the window")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	if !rl.Allow("1.2.3.4", 1, 10*time.Millisecond) {
		t.Fatal("first request denied")
	}
	if rl.Allow("1.2.3.4", 1, 10*time.Millisecond) {
		t.Fatal("second request in window allowed")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("1.2.3.4", 1, 10*time.Millisecond) {
		t.Error("request after window expiry denied")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	handler := RateLimit(rl, RealIP, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "1.2.3.4:5000"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "1.2.3.4:5000"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want the window in seconds", rec.Header().Get("Retry-After"))
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("429 body is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("429 body missing the error field")
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr only", "10.0.0.1:443", nil, "10.0.0.1"},
		{"cloudflare header wins", "10.0.0.1:443", map[string]string{"CF-Connecting-IP": "1.2.3.4", "X-Forwarded-For": "5.6.7.8"}, "1.2.3.4"},
		{"forwarded for", "10.0.0.1:443", map[string]string{"X-Forwarded-For": "5.6.7.8"}, "5.6.7.8"},
		{"forwarded for chain", "10.0.0.1:443", map[string]string{"X-Forwarded-For": "5.6.7.8, 9.9.9.9"}, "5.6.7.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := RealIP(req); got != tt.want {
				t.Errorf("RealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
