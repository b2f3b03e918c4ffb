// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/testutil"
)

const testHealthKey = "health-anon-key"

func newHealthHandler(t *testing.T) (*HealthHandler, *sql.DB) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	// A storage directory that does not exist yet counts as healthy.
	return NewHealthHandler(db, c, filepath.Join(t.TempDir(), "storage"), testHealthKey), db
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthLiveness(t *testing.T) {
	h, _ := newHealthHandler(t)
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decodeJSON(t, w)["status"]; got != "alive" {
		t.Errorf("status = %v, want alive", got)
	}
}

func TestHealthReadiness(t *testing.T) {
	h, db := newHealthHandler(t)

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	_ = db.Close()

	w = httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	body := decodeJSON(t, w)
	if body["status"] != "not_ready" {
		t.Errorf("status = %v, want not_ready", body["status"])
	}
	if _, ok := body["message"]; ok {
		t.Error("anonymous caller got error details")
	}

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req.Header.Set(middleware.APIKeyHeader, testHealthKey)
	w = httptest.NewRecorder()
	h.Readiness(w, req)
	if _, ok := decodeJSON(t, w)["message"]; !ok {
		t.Error("key holder did not get error details")
	}
}

func TestHealthDetailLevels(t *testing.T) {
	h, _ := newHealthHandler(t)

	tests := []struct {
		name        string
		user        *model.User
		key         string
		query       string
		wantVersion bool
		wantChecks  bool
		wantSystem  bool
	}{
		{name: "anonymous"},
		{name: "wrong key", key: "nope"},
		{name: "fan", user: &model.User{ID: 1, Role: model.RoleUser}},
		{name: "anon key", key: testHealthKey, wantVersion: true},
		{name: "editor", user: &model.User{ID: 2, Role: model.RoleEditor}, wantVersion: true},
		{name: "admin", user: &model.User{ID: 3, Role: model.RoleAdmin}, wantVersion: true, wantChecks: true},
		{name: "admin verbose", user: &model.User{ID: 3, Role: model.RoleAdmin}, query: "?verbose=true", wantVersion: true, wantChecks: true, wantSystem: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, "/health"+tt.query, nil, tt.user)
			if tt.key != "" {
				req.Header.Set(middleware.APIKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()
			h.Health(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
			}
			body := decodeJSON(t, w)
			if body["status"] != "healthy" {
				t.Errorf("status = %v, want healthy", body["status"])
			}
			if _, ok := body["version"]; ok != tt.wantVersion {
				t.Errorf("version present = %v, want %v", ok, tt.wantVersion)
			}
			checks, ok := body["checks"].(map[string]any)
			if ok != tt.wantChecks {
				t.Fatalf("checks present = %v, want %v", ok, tt.wantChecks)
			}
			if ok {
				for _, name := range []string{"database", "storage", "cache"} {
					if _, found := checks[name]; !found {
						t.Errorf("check %q missing", name)
					}
				}
			}
			if _, ok := body["system"]; ok != tt.wantSystem {
				t.Errorf("system present = %v, want %v", ok, tt.wantSystem)
			}
			if stats, ok := body["cache"].(map[string]any); ok != tt.wantSystem {
				t.Errorf("cache stats present = %v, want %v", ok, tt.wantSystem)
			} else if ok && stats["backend"] != "memory" {
				t.Errorf("cache backend = %v, want memory", stats["backend"])
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
