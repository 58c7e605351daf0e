package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		byAPIKey bool
		byIP     bool
		expected string
	}{
		{"api key wins", map[string]string{"X-API-Key": "k1"}, true, true, "api:k1"},
		{"bearer token", map[string]string{"Authorization": "Bearer k2"}, true, false, "api:k2"},
		{"falls back to ip", nil, true, true, "ip:192.0.2.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.4"}, false, true, "ip:198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.9"}, false, true, "ip:198.51.100.9"},
		{"nothing enabled", map[string]string{"X-API-Key": "k1"}, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/extract/sections", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getRateLimitKey(req, tt.byAPIKey, tt.byIP); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLimiterManager(t *testing.T) {
	m := NewRateLimiter(60, time.Minute, 2, nil)
	defer m.Close()

	if !m.Allow("a") || !m.Allow("a") {
		t.Fatal("Expected burst of 2 to be allowed")
	}
	if m.Allow("a") {
		t.Error("Expected third request to be limited")
	}
	if !m.Allow("b") {
		t.Error("Expected other keys to have their own bucket")
	}

	stats := m.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("Expected 2 active limiters, got %v", stats["active_limiters"])
	}

	m.mu.Lock()
	m.lastSeen["a"] = time.Now().Add(-2 * time.Minute)
	m.mu.Unlock()
	m.cleanup(time.Minute)

	if got := m.GetStats()["active_limiters"]; got != 1 {
		t.Errorf("Expected idle limiter evicted, got %v active", got)
	}

	m.Close()
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("Expected ****, got %q", got)
	}
	if got := maskAPIKey("abcdefghijkl"); got != "abcdefgh****" {
		t.Errorf("Expected abcdefgh****, got %q", got)
	}
	if got := maskRateLimitKey("api:abcdefghijkl"); got != "api:abcdefgh****" {
		t.Errorf("Expected masked api key, got %q", got)
	}
}
