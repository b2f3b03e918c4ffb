// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

// setRequired sets the variables Load refuses to start without.
func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	setEnv(t, "DIZI_SESSION_SECRET", testSecret)
	setEnv(t, "DIZI_BACKEND_URL", "https://cdn.dizistars.example/")
	setEnv(t, "DIZI_ANON_KEY", "anon-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/dizistars.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/dizistars.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.AuthMode != AuthModeDB {
		t.Errorf("AuthMode = %q, want %q", cfg.AuthMode, AuthModeDB)
	}
	if cfg.MaxUploadBytes() != 5<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 5<<20)
	}
	if cfg.BackendURL != "https://cdn.dizistars.example" {
		t.Errorf("BackendURL = %q, trailing slash not trimmed", cfg.BackendURL)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without DIZI_REDIS_URL")
	}
	if cfg.PublicURL != "http://localhost:8080" || cfg.DemoMode {
		t.Errorf("PublicURL = %q, DemoMode = %v", cfg.PublicURL, cfg.DemoMode)
	}
	if got := cfg.Location().String(); got != "Europe/Istanbul" {
		t.Errorf("Location() = %q, want Europe/Istanbul", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, missing := range []string{"DIZI_BACKEND_URL", "DIZI_ANON_KEY", "DIZI_SESSION_SECRET"} {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			if err := os.Unsetenv(missing); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(); err == nil {
				t.Errorf("Load() succeeded without %s", missing)
			}
		})
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	setEnv(t, "DIZI_DB_PATH", "/custom/path.db")
	setEnv(t, "DIZI_SERVER_PORT", "3000")
	setEnv(t, "DIZI_ENV", "production")
	setEnv(t, "DIZI_IMAGE_REMOTE_HOSTS", "images.example.com, https://CDN.Example.org/ ,images.example.com")
	setEnv(t, "DIZI_MAX_UPLOAD_MB", "8")
	setEnv(t, "DIZI_PUBLIC_URL", "https://dizistars.example/")
	setEnv(t, "DIZI_DEMO_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerAddr() != "localhost:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production")
	}
	want := []string{"images.example.com", "cdn.example.org"}
	if strings.Join(cfg.ImageRemoteHosts, ",") != strings.Join(want, ",") {
		t.Errorf("ImageRemoteHosts = %v, want %v", cfg.ImageRemoteHosts, want)
	}
	if cfg.MaxUploadBytes() != 8<<20 {
		t.Errorf("MaxUploadBytes() = %d", cfg.MaxUploadBytes())
	}
	if cfg.PublicURL != "https://dizistars.example" || !cfg.DemoMode {
		t.Errorf("PublicURL = %q, DemoMode = %v", cfg.PublicURL, cfg.DemoMode)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"short secret", "DIZI_SESSION_SECRET", "too-short"},
		{"weak secret", "DIZI_SESSION_SECRET", "change-me-to-32-byte-secret-key!"},
		{"relative backend", "DIZI_BACKEND_URL", "/storage"},
		{"ftp backend", "DIZI_BACKEND_URL", "ftp://files.example"},
		{"bad auth mode", "DIZI_AUTH_MODE", "ldap"},
		{"zero upload size", "DIZI_MAX_UPLOAD_MB", "0"},
		{"relative public url", "DIZI_PUBLIC_URL", "dizistars.example"},
		{"unknown time zone", "DIZI_TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_MockAuthOnlyInDevelopment(t *testing.T) {
	setRequired(t)
	setEnv(t, "DIZI_AUTH_MODE", "mock")
	if _, err := Load(); err != nil {
		t.Fatalf("mock auth in development: %v", err)
	}

	setEnv(t, "DIZI_ENV", "production")
	if _, err := Load(); err == nil {
		t.Error("mock auth accepted in production")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single class secret reported as diverse")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("test secret reported as low entropy")
	}
}
