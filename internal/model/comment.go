// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// CommentTarget names the kind of entity a comment is attached to.
type CommentTarget string

// Comment targets.
const (
	CommentTargetStar CommentTarget = "star"
	CommentTargetNews CommentTarget = "news"
)

// IsValid reports whether t is a known target type.
func (t CommentTarget) IsValid() bool {
	return t == CommentTargetStar || t == CommentTargetNews
}

// CommentStatus is the moderation state of a comment.
type CommentStatus string

// Comment statuses.
const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s CommentStatus) IsValid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected:
		return true
	default:
		return false
	}
}

// Comment is a user comment on a star or a news article.
type Comment struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	UserName      string        `json:"user_name,omitempty"`
	UserAvatarURL string        `json:"user_avatar_url,omitempty"`
	TargetType    CommentTarget `json:"target_type"`
	TargetID      int64         `json:"target_id"`
	Content       string        `json:"content"`
	Status        CommentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CommentRef identifies the entity a comment belongs to.
type CommentRef struct {
	Type CommentTarget
	ID   int64
}
