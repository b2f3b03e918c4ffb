// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across DiziStars: stars,
// news, comments, favorites, notifications, users and the UI tab enums.
package model

import (
	"time"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// User represents a registered member of the site.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModerate reports whether the user may access the back-office.
func (u *User) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// Initials returns up to two uppercase initials for avatar placeholders.
func (u *User) Initials() string {
	var out []rune
	startOfWord := true
	for _, r := range u.Name {
		if r == ' ' {
			startOfWord = true
			continue
		}
		if startOfWord {
			out = append(out, r)
			startOfWord = false
			if len(out) == 2 {
				break
			}
		}
	}
	if len(out) == 0 && u.Email != "" {
		out = append(out, []rune(u.Email)[0])
	}
	return toUpperTR(string(out))
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	default:
		return false
	}
}
