// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"regexp"
	"time"
)

// StarType distinguishes actors from actresses.
type StarType string

// Star types.
const (
	StarTypeActor   StarType = "actor"
	StarTypeActress StarType = "actress"
)

// IsValid reports whether t is a known star type.
func (t StarType) IsValid() bool {
	return t == StarTypeActor || t == StarTypeActress
}

// Label returns the display label.
func (t StarType) Label() string {
	switch t {
	case StarTypeActress:
		return "Actress"
	default:
		return "Actor"
	}
}

// FilmographyEntry is one production in a star's filmography.
type FilmographyEntry struct {
	Title       string `json:"title"`
	Role        string `json:"role"`
	Year        int    `json:"year"`
	StreamingOn string `json:"streaming_on,omitempty"`
}

// Star is an actor or actress profile.
type Star struct {
	ID              int64              `json:"id"`
	FullName        string             `json:"full_name"`
	Slug            string             `json:"slug"`
	ProfileImageURL string             `json:"profile_image_url"`
	StarType        StarType           `json:"star_type"`
	CurrentProject  string             `json:"current_project,omitempty"`
	BirthDate       string             `json:"birth_date,omitempty"`
	BirthPlace      string             `json:"birth_place,omitempty"`
	Biography       string             `json:"biography,omitempty"`
	Education       string             `json:"education,omitempty"`
	IsFeatured      bool               `json:"is_featured"`
	IsTrending      bool               `json:"is_trending"`
	IsRising        bool               `json:"is_rising"`
	IsInfluential   bool               `json:"is_influential"`
	Filmography     []FilmographyEntry `json:"filmography"`
	GalleryImages   []string           `json:"gallery_images"`
	SocialLinks     []SocialLink       `json:"social_links,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// StarFlags groups the home-page placement flags of a star.
type StarFlags struct {
	IsFeatured    bool
	IsTrending    bool
	IsRising      bool
	IsInfluential bool
}

// Platform is a supported social media network.
type Platform string

// Social media platforms.
const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
)

// Platforms lists platforms in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTwitter, PlatformFacebook, PlatformTikTok}

// SocialLink is a star's profile on one platform.
type SocialLink struct {
	ID       int64    `json:"id"`
	StarID   int64    `json:"star_id"`
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
}

var (
	handlePattern   = regexp.MustCompile(`^@?[A-Za-z0-9._]{1,30}$`)
	platformPattern = map[Platform]*regexp.Regexp{
		PlatformInstagram: regexp.MustCompile(`^https://(www\.)?instagram\.com/[A-Za-z0-9._]{1,30}/?$`),
		PlatformTwitter:   regexp.MustCompile(`^https://(www\.)?(twitter|x)\.com/[A-Za-z0-9_]{1,15}/?$`),
		PlatformFacebook:  regexp.MustCompile(`^https://(www\.|m\.)?facebook\.com/[A-Za-z0-9.\-]{1,50}/?$`),
		PlatformTikTok:    regexp.MustCompile(`^https://(www\.)?tiktok\.com/@[A-Za-z0-9._]{1,24}/?$`),
	}
	platformBase = map[Platform]string{
		PlatformInstagram: "https://instagram.com/",
		PlatformTwitter:   "https://x.com/",
		PlatformFacebook:  "https://facebook.com/",
		PlatformTikTok:    "https://tiktok.com/@",
	}
)

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	_, ok := platformPattern[p]
	return ok
}

// NormalizeSocialURL accepts either a full profile URL or a bare handle and
// returns the canonical profile URL. ok is false when the value matches neither.
func NormalizeSocialURL(p Platform, value string) (string, bool) {
	re, known := platformPattern[p]
	if !known || value == "" {
		return "", false
	}
	if re.MatchString(value) {
		return value, true
	}
	if handlePattern.MatchString(value) {
		handle := value
		if handle[0] == '@' {
			handle = handle[1:]
		}
		url := platformBase[p] + handle
		if re.MatchString(url) {
			return url, true
		}
	}
	return "", false
}
