// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Directive is one Content-Security-Policy directive.
type Directive struct {
	Name  string
	Value string
}

// CSP renders directives in order.
type CSP []Directive

func (c CSP) String() string {
	parts := make([]string, 0, len(c))
	for _, d := range c {
		if d.Value == "" {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// set replaces the value of name, appending it when missing.
func (c CSP) set(name, value string) CSP {
	for i := range c {
		if c[i].Name == name {
			c[i].Value = value
			return c
		}
	}
	return append(c, Directive{Name: name, Value: value})
}

// lockedDownCSP is sent with JSON and uploaded objects, which are never
// rendered as pages.
const lockedDownCSP = "default-src 'none'; frame-ancestors 'none'; sandbox"

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment drops HSTS.
	IsDevelopment bool

	CSP CSP

	// HSTSMaxAge in seconds; 0 disables HSTS.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy []string

	// LockedDownPrefixes get lockedDownCSP instead of the page policy.
	LockedDownPrefixes []string
}

// DefaultSecurityHeadersConfig returns the site policy. imageOrigins are
// added to img-src so star and news pages can show images from the storage
// backend and the allowed remote hosts. lockedDown lists path prefixes
// serving JSON or uploaded files.
func DefaultSecurityHeadersConfig(isDev bool, imageOrigins []string, lockedDown ...string) SecurityHeadersConfig {
	imgSrc := []string{"'self'", "data:", "blob:"}
	for _, origin := range imageOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			imgSrc = append(imgSrc, origin)
		}
	}

	csp := CSP{
		{"default-src", "'self'"},
		{"script-src", "'self'"},
		{"style-src", "'self' 'unsafe-inline'"},
		{"img-src", strings.Join(imgSrc, " ")},
		{"font-src", "'self' data:"},
		{"connect-src", "'self'"},
		// Star video tabs embed YouTube's privacy-enhanced player.
		{"frame-src", "https://www.youtube-nocookie.com"},
		{"object-src", "'none'"},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
		{"frame-ancestors", "'self'"},
	}
	if isDev {
		csp = csp.set("script-src", "'self' 'unsafe-inline' 'unsafe-eval'")
		csp = csp.set("connect-src", "'self' ws: wss:")
	}

	return SecurityHeadersConfig{
		IsDevelopment:         isDev,
		CSP:                   csp,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubDomains: !isDev,
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy: []string{
			"accelerometer=()", "browsing-topics=()", "camera=()", "geolocation=()",
			"gyroscope=()", "microphone=()", "payment=()", "usb=()",
		},
		LockedDownPrefixes: lockedDown,
	}
}

// SecurityHeaders adds the configured headers to every response.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	common := http.Header{}
	common.Set("X-Content-Type-Options", "nosniff")
	if cfg.FrameOptions != "" {
		common.Set("X-Frame-Options", cfg.FrameOptions)
	}
	if cfg.ReferrerPolicy != "" {
		common.Set("Referrer-Policy", cfg.ReferrerPolicy)
	}
	if len(cfg.PermissionsPolicy) > 0 {
		common.Set("Permissions-Policy", strings.Join(cfg.PermissionsPolicy, ", "))
	}
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
		common.Set("Strict-Transport-Security", hsts)
	}
	pageCSP := cfg.CSP.String()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range common {
				h[k] = v
			}
			csp := pageCSP
			for _, prefix := range cfg.LockedDownPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					csp = lockedDownCSP
					break
				}
			}
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}
