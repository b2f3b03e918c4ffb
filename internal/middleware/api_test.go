// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// simpleOKHandler returns an http.Handler that writes 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// executeFromIP runs a GET against handler with the given remote address.
func executeFromIP(handler http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestWriteAPIError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteAPIError(w, http.StatusBadRequest, "validation_error", "Invalid input", map[string]string{
		"field": "email",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %s", ct)
	}

	var resp APIError
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Error.Code != "validation_error" {
		t.Errorf("expected code 'validation_error', got %s", resp.Error.Code)
	}
	if resp.Error.Message != "Invalid input" {
		t.Errorf("expected message 'Invalid input', got %s", resp.Error.Message)
	}
	if resp.Error.Details["field"] != "email" {
		t.Errorf("expected details.field 'email', got %s", resp.Error.Details["field"])
	}
}

func TestAnonKeyAuth(t *testing.T) {
	handler := AnonKeyAuth("anon-key-123")(simpleOKHandler)

	tests := []struct {
		name     string
		header   string
		value    string
		wantCode int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", APIKeyHeader, "nope", http.StatusUnauthorized},
		{"apikey header", APIKeyHeader, "anon-key-123", http.StatusOK},
		{"bearer token", "Authorization", "Bearer anon-key-123", http.StatusOK},
		{"lowercase bearer", "Authorization", "bearer anon-key-123", http.StatusOK},
		{"basic auth ignored", "Authorization", "Basic anon-key-123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/stars", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusUnauthorized {
				var resp APIError
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("error body is not JSON: %v", err)
				}
				if resp.Error.Code != "unauthorized" {
					t.Errorf("code = %q", resp.Error.Code)
				}
			}
		})
	}
}

func TestAnonKeyAuth_EmptyConfiguredKey(t *testing.T) {
	handler := AnonKeyAuth("")(simpleOKHandler)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stars", nil)
	req.Header.Set(APIKeyHeader, "anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when no key is configured", w.Code)
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	rl := NewGlobalRateLimiter(2, 2)
	handler := rl.Middleware()(simpleOKHandler)

	for i := 0; i < 2; i++ {
		if w := executeFromIP(handler, "/api/v1/stars", "192.168.1.1:12345"); w.Code != http.StatusOK {
			t.Errorf("request %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}

	w := executeFromIP(handler, "/api/v1/stars", "192.168.1.1:12345")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
}

func TestGlobalRateLimiter_DifferentIPs(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	handler := rl.Middleware()(simpleOKHandler)

	executeFromIP(handler, "/api/v1/stars", "192.168.1.1:12345")

	if w := executeFromIP(handler, "/api/v1/stars", "192.168.1.2:12345"); w.Code != http.StatusOK {
		t.Errorf("second IP: expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestGlobalRateLimiter_PortIgnored(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	handler := rl.Middleware()(simpleOKHandler)

	executeFromIP(handler, "/api/v1/news", "10.1.1.1:1000")
	if w := executeFromIP(handler, "/api/v1/news", "10.1.1.1:2000"); w.Code != http.StatusTooManyRequests {
		t.Errorf("same host on another port: status = %d, want 429", w.Code)
	}
}

func TestGlobalRateLimiter_XForwardedFor(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	handler := rl.Middleware()(simpleOKHandler)

	send := func(port string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stars", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.2, 172.16.0.1")
		req.RemoteAddr = "127.0.0.1:" + port
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("12345"); code != http.StatusOK {
		t.Errorf("first request: status = %d", code)
	}
	if code := send("12346"); code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", code)
	}
}

func TestGlobalRateLimiter_HTMLMiddleware(t *testing.T) {
	rl := NewGlobalRateLimiter(2, 2)
	handler := rl.HTMLMiddleware()(simpleOKHandler)

	for i := 0; i < 2; i++ {
		if w := executeFromIP(handler, "/signup", "192.168.1.100:12345"); w.Code != http.StatusOK {
			t.Errorf("request %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}

	w := executeFromIP(handler, "/signup", "192.168.1.100:12345")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}

	body := w.Body.String()
	if body == "" || body[0] == '{' {
		t.Errorf("expected plain text response, got %q", body)
	}
}

func TestGlobalRateLimiter_Prune(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	handler := rl.Middleware()(simpleOKHandler)

	executeFromIP(handler, "/api/v1/stars", "10.0.0.1:1")
	executeFromIP(handler, "/api/v1/stars", "10.0.0.2:1")

	rl.Prune(1)

	if w := executeFromIP(handler, "/api/v1/stars", "10.0.0.1:1"); w.Code != http.StatusOK {
		t.Errorf("after prune: status = %d, want 200", w.Code)
	}
}
