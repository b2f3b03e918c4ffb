// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"
)

func TestLookupDisabled(t *testing.T) {
	g := NewLookup()
	if err := g.Init(""); err != nil {
		t.Fatalf("Init(\"\") error = %v", err)
	}
	if g.IsEnabled() {
		t.Error("lookup enabled without a database")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", CountryLocal},
		{"192.168.1.20", CountryLocal},
		{"10.1.2.3", CountryLocal},
		{"::1", CountryLocal},
		{"85.105.1.1", ""},
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		if got := g.LookupCountry(tt.ip); got != tt.want {
			t.Errorf("LookupCountry(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
	if err := g.Reload(); err != nil {
		t.Errorf("Reload() without path error = %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestInitMissingFile(t *testing.T) {
	g := NewLookup()
	err := g.Init(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("Init() with missing file should fail")
	}
	if g.IsEnabled() {
		t.Error("lookup enabled after failed Init")
	}
}

func TestCountryName(t *testing.T) {
	tests := map[string]string{
		"TR":         "Türkiye",
		"DE":         "Germany",
		CountryLocal: "Local network",
		"ZZ":         "ZZ",
		"":           "Unknown",
	}
	for code, want := range tests {
		if got := CountryName(code); got != want {
			t.Errorf("CountryName(%q) = %q, want %q", code, got, want)
		}
	}
}
