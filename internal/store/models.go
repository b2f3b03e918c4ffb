// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	AvatarUrl    string       `json:"avatar_url"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at"`
}

type Star struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"full_name"`
	Slug            string    `json:"slug"`
	ProfileImageUrl string    `json:"profile_image_url"`
	StarType        string    `json:"star_type"`
	CurrentProject  string    `json:"current_project"`
	BirthDate       string    `json:"birth_date"`
	BirthPlace      string    `json:"birth_place"`
	Biography       string    `json:"biography"`
	Education       string    `json:"education"`
	IsFeatured      bool      `json:"is_featured"`
	IsTrending      bool      `json:"is_trending"`
	IsRising        bool      `json:"is_rising"`
	IsInfluential   bool      `json:"is_influential"`
	Filmography     string    `json:"filmography"`
	GalleryImages   string    `json:"gallery_images"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type StarSocialLink struct {
	ID       int64  `json:"id"`
	StarID   int64  `json:"star_id"`
	Platform string `json:"platform"`
	Url      string `json:"url"`
}

// News rows are always read joined with their author and star.
type News struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Content     string         `json:"content"`
	Excerpt     string         `json:"excerpt"`
	CoverImage  string         `json:"cover_image"`
	AuthorID    int64          `json:"author_id"`
	StarID      sql.NullInt64  `json:"star_id"`
	Status      string         `json:"status"`
	PublishedAt sql.NullTime   `json:"published_at"`
	ScheduledAt sql.NullTime   `json:"scheduled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	AuthorName  sql.NullString `json:"author_name"`
	StarName    sql.NullString `json:"star_name"`
	StarSlug    sql.NullString `json:"star_slug"`
}

type Comment struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	TargetType    string         `json:"target_type"`
	TargetID      int64          `json:"target_id"`
	Content       string         `json:"content"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	UserName      sql.NullString `json:"user_name"`
	UserAvatarUrl sql.NullString `json:"user_avatar_url"`
}

type Favorite struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	StarID          int64     `json:"star_id"`
	CreatedAt       time.Time `json:"created_at"`
	FullName        string    `json:"full_name"`
	Slug            string    `json:"slug"`
	ProfileImageUrl string    `json:"profile_image_url"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPreference struct {
	UserID             int64     `json:"user_id"`
	EmailNotifications bool      `json:"email_notifications"`
	NewsAlerts         bool      `json:"news_alerts"`
	Language           string    `json:"language"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type PasswordReset struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	TokenHash string       `json:"token_hash"`
	ExpiresAt time.Time    `json:"expires_at"`
	UsedAt    sql.NullTime `json:"used_at"`
	CreatedAt time.Time    `json:"created_at"`
}

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	IpAddress string        `json:"ip_address"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}
