// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LoginProtectionConfig tunes sign-in throttling.
type LoginProtectionConfig struct {
	// IPRate is login posts per second allowed from one address.
	IPRate  float64
	IPBurst int
	// MaxFailures within Window locks the account.
	MaxFailures int
	Window      time.Duration
	// Lockout doubles with every repeated lockout, up to MaxLockout.
	Lockout    time.Duration
	MaxLockout time.Duration
}

// DefaultLoginProtectionConfig allows one login post every two seconds per
// address and locks an account for 15 minutes after 5 failures.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRate:      0.5,
		IPBurst:     5,
		MaxFailures: 5,
		Window:      15 * time.Minute,
		Lockout:     15 * time.Minute,
		MaxLockout:  24 * time.Hour,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	def := DefaultLoginProtectionConfig()
	if c.IPRate <= 0 {
		c.IPRate = def.IPRate
	}
	if c.IPBurst <= 0 {
		c.IPBurst = def.IPBurst
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = def.MaxFailures
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.Lockout <= 0 {
		c.Lockout = def.Lockout
	}
	if c.MaxLockout < c.Lockout {
		c.MaxLockout = max(def.MaxLockout, c.Lockout)
	}
	return c
}

// LoginProtection throttles login posts per IP and locks accounts after
// repeated failures. It satisfies auth.Guard. Accounts are keyed by the
// lower-cased email.
type LoginProtection struct {
	cfg LoginProtectionConfig
	ips *limiterCache[string]
	now func() time.Time

	mu       sync.Mutex
	accounts map[string]*accountFailures
}

type accountFailures struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// NewLoginProtection builds a LoginProtection; zero config fields take
// their defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	return &LoginProtection{
		cfg:      cfg,
		ips:      newLimiterCache[string](cfg.IPRate, cfg.IPBurst),
		now:      time.Now,
		accounts: make(map[string]*accountFailures),
	}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAccountLocked reports whether email is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[accountKey(email)]
	if !ok {
		return false, 0
	}
	if left := a.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailedAttempt counts a failure and reports whether it locked the
// account.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[key]
	if !ok {
		a = &accountFailures{}
		lp.accounts[key] = a
	}
	if a.failures == 0 || now.Sub(a.windowStart) > lp.cfg.Window {
		a.failures = 0
		a.windowStart = now
	}
	a.failures++
	if a.failures < lp.cfg.MaxFailures {
		return false, 0
	}

	d := lp.lockoutFor(a.lockouts)
	a.lockedUntil = now.Add(d)
	a.lockouts++
	a.failures = 0
	slog.Warn("account locked after failed logins", "email", key, "lockouts", a.lockouts, "duration", d)
	return true, d
}

// lockoutFor returns the lockout after n earlier lockouts.
func (lp *LoginProtection) lockoutFor(n int) time.Duration {
	d := lp.cfg.Lockout
	for range n {
		d *= 2
		if d >= lp.cfg.MaxLockout {
			return lp.cfg.MaxLockout
		}
	}
	return d
}

// RecordSuccessfulLogin forgets the account's failures.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// GetRemainingAttempts returns the failures left before a lockout.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[accountKey(email)]
	if !ok || a.failures == 0 || lp.now().Sub(a.windowStart) > lp.cfg.Window {
		return lp.cfg.MaxFailures
	}
	return max(lp.cfg.MaxFailures-a.failures, 0)
}

// Prune drops accounts whose lockout and failure window have both passed,
// and resets the per-IP limiters once more than maxIPs are tracked. It
// returns the number of accounts dropped.
func (lp *LoginProtection) Prune(maxIPs int) int {
	if lp.ips.clearIfExceeds(maxIPs) {
		slog.Info("cleared login rate limiters", "max", maxIPs)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()

	dropped := 0
	for key, a := range lp.accounts {
		if now.Before(a.lockedUntil) || now.Sub(a.windowStart) <= lp.cfg.Window {
			continue
		}
		// Keep lockout history while a repeat offence would still double it.
		if a.lockouts > 0 && now.Sub(a.lockedUntil) < lp.cfg.MaxLockout {
			continue
		}
		delete(lp.accounts, key)
		dropped++
	}
	return dropped
}

// Middleware limits login posts per client IP. Other methods pass through.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / lp.cfg.IPRate)))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			if !lp.ips.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Too many sign-in attempts. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the client address: the first X-Forwarded-For hop, then
// X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
