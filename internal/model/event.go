// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryStar    = "star"
	EventCategoryNews    = "news"
	EventCategoryComment = "comment"
	EventCategoryUser    = "user"
	EventCategoryUpload  = "upload"
	EventCategorySystem  = "system"
	EventCategoryCache   = "cache"
)

// Event represents an audit log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    *int64
	IPAddress string
	Metadata  string // JSON string
	CreatedAt time.Time
}
