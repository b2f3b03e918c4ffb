// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
)

func TestGenerateRobots(t *testing.T) {
	content := GenerateRobots("https://dizistars.example/", false)

	if !strings.HasPrefix(content, "User-agent: *\n") {
		t.Errorf("robots.txt = %q, want a User-agent line first", content)
	}
	for _, path := range []string{"/admin", "/api/", "/profile", "/login", "/signup", "/reset-password/", "/*?lang="} {
		if !strings.Contains(content, "Disallow: "+path+"\n") {
			t.Errorf("robots.txt should disallow %q", path)
		}
	}
	if !strings.Contains(content, "Allow: /\n") {
		t.Error("robots.txt should allow the public site")
	}
	if !strings.HasSuffix(content, "\nSitemap: https://dizistars.example/sitemap.xml\n") {
		t.Errorf("sitemap line wrong in %q", content)
	}
}

func TestGenerateRobotsDisallowAll(t *testing.T) {
	if got, want := GenerateRobots("https://demo.dizistars.example", true), "User-agent: *\nDisallow: /\n"; got != want {
		t.Errorf("robots.txt = %q, want %q", got, want)
	}
}

func TestRobotsString(t *testing.T) {
	got := Robots{Disallow: []string{"/storage/"}, CrawlDelay: 10}.String()
	want := "User-agent: *\nDisallow: /storage/\nAllow: /\nCrawl-delay: 10\n"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
