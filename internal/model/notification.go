// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// NotificationType categorises notifications for icons and filtering.
type NotificationType string

// Notification types.
const (
	NotificationNews    NotificationType = "news"
	NotificationComment NotificationType = "comment"
	NotificationSystem  NotificationType = "system"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Favorite is a star saved by a user.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	StarID    int64     `json:"star_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	StarSlug  string    `json:"star_slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Languages supported for user preferences.
const (
	LanguageTR = "tr"
	LanguageEN = "en"
)

// Preferences holds per-user settings.
type Preferences struct {
	UserID             int64     `json:"user_id"`
	EmailNotifications bool      `json:"email_notifications"`
	NewsAlerts         bool      `json:"news_alerts"`
	Language           string    `json:"language"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings used before a user saves any.
func DefaultPreferences(userID int64) Preferences {
	return Preferences{
		UserID:             userID,
		EmailNotifications: true,
		NewsAlerts:         true,
		Language:           LanguageTR,
	}
}
