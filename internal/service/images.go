// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"strings"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/util"
)

// PublicObjectPath is the URL path under which bucket objects are served.
const PublicObjectPath = "/storage/v1/object/public/"

// ImagePolicy decides which image URLs may be stored on stars, news and users.
// Objects from our own storage are always accepted; other URLs must be
// served over http(s) from one of RemoteHosts.
type ImagePolicy struct {
	StorageBase string
	RemoteHosts []string
}

// Check validates rawURL for the named form field. Empty URLs are accepted.
func (p ImagePolicy) Check(field, rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if p.IsStored(rawURL) {
		return nil
	}
	if err := util.ValidateImageURL(rawURL, p.RemoteHosts); err != nil {
		return apperror.ValidationFailed(field, "Image URL is not allowed: "+err.Error())
	}
	return nil
}

// IsStored reports whether rawURL points into our own buckets.
func (p ImagePolicy) IsStored(rawURL string) bool {
	return p.StorageBase != "" && strings.HasPrefix(rawURL, p.StorageBase+PublicObjectPath)
}

// ObjectFromURL splits a stored public URL into bucket and object path.
// ok is false for external URLs.
func (p ImagePolicy) ObjectFromURL(rawURL string) (bucket, path string, ok bool) {
	if !p.IsStored(rawURL) {
		return "", "", false
	}
	rest := strings.TrimPrefix(rawURL, p.StorageBase+PublicObjectPath)
	bucket, path, found := strings.Cut(rest, "/")
	if !found || bucket == "" || path == "" {
		return "", "", false
	}
	return bucket, path, true
}
