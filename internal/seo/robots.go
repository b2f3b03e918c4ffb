// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strconv"
	"strings"
)

// PrivatePaths are account, form and admin pages. They never belong in
// search results.
var PrivatePaths = []string{
	"/admin",
	"/api/",
	"/profile",
	"/login",
	"/signup",
	"/forgot-password",
	"/reset-password/",
	"/logout",
	// ?lang= only switches the interface language of an indexed page.
	"/*?lang=",
}

// Robots describes a robots.txt file for all user agents.
type Robots struct {
	SiteURL     string
	DisallowAll bool
	Disallow    []string
	CrawlDelay  int
}

// String renders the file.
func (r Robots) String() string {
	var sb strings.Builder
	line := func(key, value string) {
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteByte('\n')
	}

	line("User-agent", "*")
	if r.DisallowAll {
		line("Disallow", "/")
		return sb.String()
	}
	for _, p := range r.Disallow {
		line("Disallow", p)
	}
	line("Allow", "/")
	if r.CrawlDelay > 0 {
		line("Crawl-delay", strconv.Itoa(r.CrawlDelay))
	}
	if r.SiteURL != "" {
		sb.WriteByte('\n')
		line("Sitemap", strings.TrimSuffix(r.SiteURL, "/")+"/sitemap.xml")
	}
	return sb.String()
}

// GenerateRobots returns robots.txt for siteURL. disallowAll hides the
// whole site, as on demo deployments.
func GenerateRobots(siteURL string, disallowAll bool) string {
	return Robots{SiteURL: siteURL, DisallowAll: disallowAll, Disallow: PrivatePaths}.String()
}
