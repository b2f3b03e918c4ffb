// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "strconv"

// Key prefixes. Writers invalidate by prefix, so every key of a kind shares one.
const (
	PrefixHome = "home:"
	PrefixStar = "star:"
	PrefixNews = "news:"
)

// KeyHomeSections caches the four home page star rows and the latest news.
const KeyHomeSections = PrefixHome + "sections"

// KeySitemap caches sitemap.xml. It shares the home prefix so star and news
// writes drop it too.
const KeySitemap = PrefixHome + "sitemap"

// StarKey is the cache key of a star profile by slug.
func StarKey(slug string) string {
	return PrefixStar + slug
}

// NewsKey is the cache key of a news article by slug.
func NewsKey(slug string) string {
	return PrefixNews + slug
}

// PrefixUser groups per-user state.
const PrefixUser = "user:"

// UserStateKey is the cache key of a user's favorites, notifications and preferences.
func UserStateKey(userID int64) string {
	return PrefixUser + strconv.FormatInt(userID, 10) + ":state"
}
