// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Auth modes.
const (
	AuthModeDB   = "db"
	AuthModeMock = "mock"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Public base URL of the storage backend. Image URLs are built as
	// {BackendURL}/storage/v1/object/public/{bucket}/{path}.
	BackendURL string `env:"DIZI_BACKEND_URL,required"`
	// Anonymous key clients send in the "apikey" header of the JSON API.
	AnonKey string `env:"DIZI_ANON_KEY,required"`

	DBPath        string `env:"DIZI_DB_PATH" envDefault:"./data/dizistars.db"`
	SessionSecret string `env:"DIZI_SESSION_SECRET,required"`
	ServerHost    string `env:"DIZI_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"DIZI_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"DIZI_ENV" envDefault:"development"`
	LogLevel      string `env:"DIZI_LOG_LEVEL" envDefault:"info"`
	StorageDir    string `env:"DIZI_STORAGE_DIR" envDefault:"./storage"`
	AuthMode      string `env:"DIZI_AUTH_MODE" envDefault:"db"`
	// Site URL used in reset links, the sitemap and the CSRF origin check.
	PublicURL string `env:"DIZI_PUBLIC_URL" envDefault:"http://localhost:8080"`
	// Scheduled publish times typed in the admin are read in this zone.
	Timezone string `env:"DIZI_TIMEZONE" envDefault:"Europe/Istanbul"`
	DemoMode bool   `env:"DIZI_DEMO_MODE" envDefault:"false"` // Block destructive admin actions, reset data daily

	// Uploads
	MaxUploadMB      int      `env:"DIZI_MAX_UPLOAD_MB" envDefault:"5"`
	ImageRemoteHosts []string `env:"DIZI_IMAGE_REMOTE_HOSTS" envSeparator:","` // Hosts allowed in external image URLs

	// Cache configuration
	RedisURL     string `env:"DIZI_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"DIZI_CACHE_PREFIX" envDefault:"dizi:"`   // Redis key prefix
	CacheTTL     int    `env:"DIZI_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"DIZI_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"DIZI_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Seeding configuration
	DoSeed bool `env:"DIZI_DO_SEED" envDefault:"false"` // Seed demo stars and news
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location returns the configured time zone, or UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("DIZI_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("DIZI_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("DIZI_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	backend, err := url.Parse(cfg.BackendURL)
	if err != nil || (backend.Scheme != "http" && backend.Scheme != "https") || backend.Host == "" {
		return nil, fmt.Errorf("DIZI_BACKEND_URL must be an absolute http(s) URL, got %q", cfg.BackendURL)
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	switch cfg.AuthMode {
	case AuthModeDB, AuthModeMock:
	default:
		return nil, fmt.Errorf("DIZI_AUTH_MODE must be %q or %q, got %q", AuthModeDB, AuthModeMock, cfg.AuthMode)
	}
	if cfg.AuthMode == AuthModeMock && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("DIZI_AUTH_MODE=mock is only allowed in development")
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("DIZI_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	public, err := url.Parse(cfg.PublicURL)
	if err != nil || (public.Scheme != "http" && public.Scheme != "https") || public.Host == "" {
		return nil, fmt.Errorf("DIZI_PUBLIC_URL must be an absolute http(s) URL, got %q", cfg.PublicURL)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("DIZI_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	cfg.ImageRemoteHosts = normalizeHosts(cfg.ImageRemoteHosts)

	return cfg, nil
}

// normalizeHosts lower-cases hosts, strips schemes and drops empties and duplicates.
func normalizeHosts(hosts []string) []string {
	seen := make(map[string]bool, len(hosts))
	var out []string
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "https://")
		h = strings.TrimPrefix(h, "http://")
		h = strings.TrimRight(h, "/")
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
