package server

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobassist/internal/ai"
	"jobassist/internal/config"
)

func TestKeyRing(t *testing.T) {
	kr := NewKeyRing([]string{"alpha", "", "beta"})
	if kr.Len() != 2 {
		t.Fatalf("Expected 2 keys, got %d", kr.Len())
	}
	if !kr.Contains("alpha") || kr.Contains("") {
		t.Error("Expected alpha accepted and empty key rejected")
	}

	kr.Replace([]string{"gamma"})
	if kr.Contains("alpha") || !kr.Contains("gamma") {
		t.Error("Expected replace to drop old keys")
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, &fakeProvider{})
	s.APIKeys.Replace([]string{"test-key-123456"})
	mux := s.setupRoutes(nil)

	tests := []struct {
		name     string
		header   string
		value    string
		expected int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"invalid key", "X-API-Key", "wrong", http.StatusUnauthorized},
		{"valid X-API-Key", "X-API-Key", "test-key-123456", http.StatusOK},
		{"valid bearer", "Authorization", "Bearer test-key-123456", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/extract/sections", strings.NewReader(`{"text": "x"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}

	t.Run("stats stays public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
	})
}

func TestAuthFollowsKeyRotation(t *testing.T) {
	s := newTestServer(t, &fakeProvider{})
	s.APIKeys.Replace([]string{"old-key-00000000"})
	mux := s.setupRoutes(nil)

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/extract/sections", strings.NewReader(`{"text": "x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", key)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("old-key-00000000"); code != http.StatusOK {
		t.Fatalf("Expected old key accepted before rotation, got %d", code)
	}
	s.APIKeys.Replace([]string{"new-key-00000000"})
	if code := send("old-key-00000000"); code != http.StatusUnauthorized {
		t.Errorf("Expected old key rejected after rotation, got %d", code)
	}
	if code := send("new-key-00000000"); code != http.StatusOK {
		t.Errorf("Expected new key accepted after rotation, got %d", code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true}
	cfg := &config.Config{}
	s := NewServer(cfg, ServerConfig{RateLimit: rl}, nil)
	defer s.RateLimiter.Close()
	mux := s.setupRoutes(nil)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/extract/sections", strings.NewReader(`{"text": "x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Errorf("Expected second request limited, got %d", code)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	s := newTestServer(t, &fakeProvider{})
	s.MaxRequestSize = 16
	mux := s.setupRoutes(nil)

	rec := postJSON(t, mux, "/extract/sections", `{"text": "this body is longer than sixteen bytes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too large") {
		t.Errorf("Expected size error, got %s", rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		expected int
		status   string
	}{
		{"models available", &fakeProvider{available: true}, http.StatusOK, `"status":"healthy"`},
		{"model unavailable", &fakeProvider{available: false}, http.StatusServiceUnavailable, `"status":"degraded"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestServer(t, tt.provider).setupRoutes(nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.status) {
				t.Errorf("Expected %s in %s", tt.status, rec.Body.String())
			}
		})
	}

	t.Run("provider cannot be created", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.providers.factory = func(op string) (ai.AIProvider, error) {
			return nil, context.DeadlineExceeded
		}
		rec := httptest.NewRecorder()
		s.setupRoutes(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", rec.Code)
		}
	})
}

func TestProviderPoolCachesProviders(t *testing.T) {
	calls := 0
	pool := &providerPool{
		providers: map[string]ai.AIProvider{},
		factory: func(op string) (ai.AIProvider, error) {
			calls++
			return &fakeProvider{}, nil
		},
	}

	for range 3 {
		if _, err := pool.get(config.OperationPosting); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected one provider creation, got %d", calls)
	}
	if err := pool.close(); err != nil {
		t.Errorf("Expected clean close, got %v", err)
	}
	if len(pool.providers) != 0 {
		t.Error("Expected close to drop providers")
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, &fakeProvider{})
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.serve(ctx, s.setupHTTPServer(nil), listener)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/stats")
	if err != nil {
		t.Fatalf("Expected server to answer, got %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down")
	}
}

func TestWriteServerInfo(t *testing.T) {
	s := newTestServer(t, &fakeProvider{})
	var buf bytes.Buffer
	s.writeServerInfo(&buf)

	for _, want := range []string{"/analyze-posting", "/profile/import", "API authentication: DISABLED", "Rate limiting: DISABLED"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected %q in server info", want)
		}
	}
}
