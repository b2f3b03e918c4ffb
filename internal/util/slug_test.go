// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Can Yaman", "can-yaman"},
		{"turkish letters", "Kıvanç Tatlıtuğ", "kivanc-tatlitug"},
		{"dotted capital", "İlker Kaleli", "ilker-kaleli"},
		{"cedilla and breve", "Hande Erçel Şükrü Ğ", "hande-ercel-sukru-g"},
		{"burak", "Burak Özçivit", "burak-ozcivit"},
		{"with punctuation", "Yaman'ın yeni dizisi: Sandokan!", "yamanin-yeni-dizisi-sandokan"},
		{"with underscores", "yeni_sezon", "yeni-sezon"},
		{"with hyphens", "Hello - World", "hello-world"},
		{"leading and trailing spaces", "  Hello World  ", "hello-world"},
		{"all special characters", "!@#$%^&*()", ""},
		{"empty string", "", ""},
		{"german umlauts", "Über München", "uber-munchen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("dizi ", 40)
	got := Slugify(long)
	if len(got) > maxSlugLength {
		t.Errorf("len(Slugify) = %d, want <= %d", len(got), maxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Slugify left trailing hyphen: %q", got)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"can-yaman": true, "can-yaman-2": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	got, err := UniqueSlug(context.Background(), "can-yaman", exists)
	if err != nil {
		t.Fatalf("UniqueSlug: %v", err)
	}
	if got != "can-yaman-3" {
		t.Errorf("UniqueSlug = %q, want can-yaman-3", got)
	}

	got, _ = UniqueSlug(context.Background(), "hande-ercel", exists)
	if got != "hande-ercel" {
		t.Errorf("UniqueSlug = %q, want base slug", got)
	}

	boom := errors.New("db down")
	if _, err := UniqueSlug(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Errorf("UniqueSlug err = %v, want %v", err, boom)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "valid simple slug",
			input:    "hello-world",
			expected: true,
		},
		{
			name:     "valid slug with numbers",
			input:    "page-123",
			expected: true,
		},
		{
			name:     "valid single word",
			input:    "hello",
			expected: true,
		},
		{
			name:     "valid numbers only",
			input:    "123",
			expected: true,
		},
		{
			name:     "invalid - empty",
			input:    "",
			expected: false,
		},
		{
			name:     "invalid - uppercase",
			input:    "Hello-World",
			expected: false,
		},
		{
			name:     "invalid - spaces",
			input:    "hello world",
			expected: false,
		},
		{
			name:     "invalid - special chars",
			input:    "hello!world",
			expected: false,
		},
		{
			name:     "invalid - starts with hyphen",
			input:    "-hello",
			expected: false,
		},
		{
			name:     "invalid - ends with hyphen",
			input:    "hello-",
			expected: false,
		},
		{
			name:     "invalid - consecutive hyphens",
			input:    "hello--world",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSlug(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
