// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const maxObjectPathLen = 512

var objectPathRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ValidateObjectPath checks a storage object key such as "12/1700000000000-can-yaman.jpg".
// Keys are relative, use forward slashes and never contain traversal segments.
func ValidateObjectPath(p string) error {
	if p == "" || len(p) > maxObjectPathLen {
		return fmt.Errorf("invalid object path length")
	}
	if !objectPathRegex.MatchString(p) {
		return fmt.Errorf("invalid characters in object path %q", p)
	}
	for seg := range strings.SplitSeq(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid segment in object path %q", p)
		}
	}
	return nil
}

// SafeJoinPath joins components onto root and fails when the result would
// land outside root.
func SafeJoinPath(root string, components ...string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}
	joined := filepath.Join(append([]string{absRoot}, components...)...)
	rel, err := filepath.Rel(absRoot, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %q", filepath.Join(components...), root)
	}
	return filepath.Join(append([]string{root}, components...)...), nil
}
