// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"html/template"
	"time"
)

// NewsStatus is the publication state of a news article.
type NewsStatus string

// News statuses.
const (
	NewsStatusDraft     NewsStatus = "draft"
	NewsStatusPublished NewsStatus = "published"
	NewsStatusArchived  NewsStatus = "archived"
)

// IsValid reports whether s is a known status.
func (s NewsStatus) IsValid() bool {
	switch s {
	case NewsStatusDraft, NewsStatusPublished, NewsStatusArchived:
		return true
	default:
		return false
	}
}

// News is an article, optionally about a single star.
type News struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	ContentHTML template.HTML `json:"content_html,omitempty"`
	Excerpt     string        `json:"excerpt"`
	CoverImage  string        `json:"cover_image,omitempty"`
	AuthorID    int64         `json:"author_id"`
	AuthorName  string        `json:"author_name,omitempty"`
	StarID      *int64        `json:"star_id,omitempty"`
	StarName    string        `json:"star_name,omitempty"`
	StarSlug    string        `json:"star_slug,omitempty"`
	Status      NewsStatus    `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished reports whether the article is publicly visible.
func (n *News) IsPublished() bool {
	return n.Status == NewsStatusPublished
}

// DisplayDate returns the publication date, falling back to creation time.
func (n *News) DisplayDate() time.Time {
	if n.PublishedAt != nil {
		return *n.PublishedAt
	}
	return n.CreatedAt
}
