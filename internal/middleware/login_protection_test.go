// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLoginProtection(cfg LoginProtectionConfig) (*LoginProtection, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)}
	lp := NewLoginProtection(cfg)
	lp.now = clock.now
	return lp, clock
}

func TestLoginProtectionConfigDefaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{Lockout: 48 * time.Hour})
	want := DefaultLoginProtectionConfig()
	if lp.cfg.MaxFailures != want.MaxFailures || lp.cfg.Window != want.Window || lp.cfg.IPBurst != want.IPBurst {
		t.Errorf("config = %+v, want defaults", lp.cfg)
	}
	if lp.cfg.MaxLockout != 48*time.Hour {
		t.Errorf("MaxLockout = %v, want it raised to the base lockout", lp.cfg.MaxLockout)
	}
}

func TestLoginProtectionLocksAfterMaxFailures(t *testing.T) {
	lp, clock := newTestLoginProtection(LoginProtectionConfig{MaxFailures: 3, Lockout: 10 * time.Minute})
	email := "Fan@Example.com"

	for i := 1; i < 3; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d failures", i)
		}
		if got := lp.GetRemainingAttempts(email); got != 3-i {
			t.Errorf("remaining after %d failures = %d, want %d", i, got, 3-i)
		}
	}
	locked, d := lp.RecordFailedAttempt(" fan@example.com ")
	if !locked || d != 10*time.Minute {
		t.Fatalf("third failure = (%v, %v), want locked for 10m", locked, d)
	}

	if locked, left := lp.IsAccountLocked("FAN@example.com"); !locked || left != 10*time.Minute {
		t.Errorf("IsAccountLocked = (%v, %v)", locked, left)
	}
	clock.advance(10*time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("still locked after the lockout expired")
	}
}

func TestLoginProtectionBackoff(t *testing.T) {
	lp, clock := newTestLoginProtection(LoginProtectionConfig{
		MaxFailures: 1,
		Lockout:     time.Minute,
		MaxLockout:  5 * time.Minute,
	})

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute, 5 * time.Minute, 5 * time.Minute}
	for i, w := range want {
		_, d := lp.RecordFailedAttempt("a@example.com")
		if d != w {
			t.Errorf("lockout %d = %v, want %v", i+1, d, w)
		}
		clock.advance(d)
	}
}

func TestLoginProtectionWindowReset(t *testing.T) {
	lp, clock := newTestLoginProtection(LoginProtectionConfig{MaxFailures: 3, Window: time.Minute})
	email := "a@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	clock.advance(2 * time.Minute)
	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining after window = %d, want 3", got)
	}
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("stale failures counted towards the lockout")
	}
}

func TestLoginProtectionSuccessClears(t *testing.T) {
	lp, _ := newTestLoginProtection(LoginProtectionConfig{MaxFailures: 3})
	lp.RecordFailedAttempt("a@example.com")
	lp.RecordFailedAttempt("a@example.com")
	lp.RecordSuccessfulLogin("A@example.com")
	if got := lp.GetRemainingAttempts("a@example.com"); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}

func TestLoginProtectionPrune(t *testing.T) {
	lp, clock := newTestLoginProtection(LoginProtectionConfig{
		MaxFailures: 2,
		Window:      time.Minute,
		Lockout:     time.Minute,
		MaxLockout:  10 * time.Minute,
	})

	lp.RecordFailedAttempt("stale@example.com")
	lp.RecordFailedAttempt("locked@example.com")
	lp.RecordFailedAttempt("locked@example.com")
	lp.ips.get("10.0.0.1")
	lp.ips.get("10.0.0.2")

	clock.advance(2 * time.Minute)
	if got := lp.Prune(1); got != 1 {
		t.Errorf("first prune dropped %d accounts, want 1", got)
	}
	if len(lp.ips.limiters) != 0 {
		t.Errorf("ip limiters = %d, want cleared", len(lp.ips.limiters))
	}

	clock.advance(10 * time.Minute)
	if got := lp.Prune(1); got != 1 {
		t.Errorf("second prune dropped %d accounts, want the expired lockout", got)
	}
	if len(lp.accounts) != 0 {
		t.Errorf("accounts left: %d", len(lp.accounts))
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRate: 0.5, IPBurst: 2})
	h := lp.Middleware()(okHandler())

	do := func(method, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	for i := range 2 {
		if w := do(http.MethodPost, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("post %d status = %d, want 200", i+1, w.Code)
		}
	}
	w := do(http.MethodPost, "10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status over burst = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
	if w := do(http.MethodGet, "10.0.0.1"); w.Code != http.StatusOK {
		t.Errorf("GET was limited: %d", w.Code)
	}
	if w := do(http.MethodPost, "10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other address was limited: %d", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		forward string
		realIP  string
		want    string
	}{
		{name: "remote addr", remote: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "remote addr without port", remote: "192.168.1.1", want: "192.168.1.1"},
		{name: "first forwarded hop", remote: "127.0.0.1:8080", forward: " 10.0.0.1 , 10.0.0.2", want: "10.0.0.1"},
		{name: "real ip", remote: "127.0.0.1:8080", realIP: "10.0.0.5", want: "10.0.0.5"},
		{name: "forwarded beats real ip", remote: "127.0.0.1:8080", forward: "10.0.0.1", realIP: "10.0.0.5", want: "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forward != "" {
				req.Header.Set("X-Forwarded-For", tt.forward)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
