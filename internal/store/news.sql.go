// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const newsSelect = `SELECT n.id, n.title, n.slug, n.content, n.excerpt, n.cover_image, n.author_id,
    n.star_id, n.status, n.published_at, n.scheduled_at, n.created_at, n.updated_at,
    u.name, s.full_name, s.slug
FROM news n
LEFT JOIN users u ON u.id = n.author_id
LEFT JOIN stars s ON s.id = n.star_id`

const newsReturning = `RETURNING id, title, slug, content, excerpt, cover_image, author_id,
    star_id, status, published_at, scheduled_at, created_at, updated_at`

func scanNews(row interface{ Scan(...any) error }) (News, error) {
	var n News
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.Content,
		&n.Excerpt,
		&n.CoverImage,
		&n.AuthorID,
		&n.StarID,
		&n.Status,
		&n.PublishedAt,
		&n.ScheduledAt,
		&n.CreatedAt,
		&n.UpdatedAt,
		&n.AuthorName,
		&n.StarName,
		&n.StarSlug,
	)
	return n, err
}

// scanNewsRow reads a RETURNING row, which carries no joined columns.
func scanNewsRow(row *sql.Row) (News, error) {
	var n News
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.Content,
		&n.Excerpt,
		&n.CoverImage,
		&n.AuthorID,
		&n.StarID,
		&n.Status,
		&n.PublishedAt,
		&n.ScheduledAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return n, err
}

func (q *Queries) queryNews(ctx context.Context, query string, args ...any) ([]News, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

const getLatestNews = `-- name: GetLatestNews :many
` + newsSelect + `
WHERE n.status = 'published'
ORDER BY n.published_at DESC, n.id DESC
LIMIT ?`

func (q *Queries) GetLatestNews(ctx context.Context, limit int64) ([]News, error) {
	return q.queryNews(ctx, getLatestNews, limit)
}

const getNewsBySlug = `-- name: GetNewsBySlug :one
` + newsSelect + `
WHERE n.slug = ?`

func (q *Queries) GetNewsBySlug(ctx context.Context, slug string) (News, error) {
	return scanNews(q.db.QueryRowContext(ctx, getNewsBySlug, slug))
}

const getNewsByID = `-- name: GetNewsByID :one
` + newsSelect + `
WHERE n.id = ?`

func (q *Queries) GetNewsByID(ctx context.Context, id int64) (News, error) {
	return scanNews(q.db.QueryRowContext(ctx, getNewsByID, id))
}

const getStarNews = `-- name: GetStarNews :many
` + newsSelect + `
WHERE n.star_id = ? AND n.status = 'published'
ORDER BY n.published_at DESC, n.id DESC
LIMIT ? OFFSET ?`

type GetStarNewsParams struct {
	StarID sql.NullInt64 `json:"star_id"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

func (q *Queries) GetStarNews(ctx context.Context, arg GetStarNewsParams) ([]News, error) {
	return q.queryNews(ctx, getStarNews, arg.StarID, arg.Limit, arg.Offset)
}

const countStarNews = `-- name: CountStarNews :one
SELECT COUNT(*) FROM news WHERE star_id = ? AND status = 'published'`

func (q *Queries) CountStarNews(ctx context.Context, starID sql.NullInt64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countStarNews, starID).Scan(&count)
	return count, err
}

const listPublishedNews = `-- name: ListPublishedNews :many
` + newsSelect + `
WHERE n.status = 'published'
ORDER BY n.published_at DESC, n.id DESC
LIMIT ? OFFSET ?`

type ListPublishedNewsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListPublishedNews(ctx context.Context, arg ListPublishedNewsParams) ([]News, error) {
	return q.queryNews(ctx, listPublishedNews, arg.Limit, arg.Offset)
}

const countPublishedNews = `-- name: CountPublishedNews :one
SELECT COUNT(*) FROM news WHERE status = 'published'`

func (q *Queries) CountPublishedNews(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPublishedNews).Scan(&count)
	return count, err
}

const listNews = `-- name: ListNews :many
` + newsSelect + `
ORDER BY n.updated_at DESC, n.id DESC
LIMIT ? OFFSET ?`

type ListNewsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListNews(ctx context.Context, arg ListNewsParams) ([]News, error) {
	return q.queryNews(ctx, listNews, arg.Limit, arg.Offset)
}

const countNews = `-- name: CountNews :one
SELECT COUNT(*) FROM news`

func (q *Queries) CountNews(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countNews).Scan(&count)
	return count, err
}

const listNewsByStatus = `-- name: ListNewsByStatus :many
` + newsSelect + `
WHERE n.status = ?
ORDER BY n.updated_at DESC, n.id DESC
LIMIT ? OFFSET ?`

type ListNewsByStatusParams struct {
	Status string `json:"status"`
	Limit  int64  `json:"limit"`
	Offset int64  `json:"offset"`
}

func (q *Queries) ListNewsByStatus(ctx context.Context, arg ListNewsByStatusParams) ([]News, error) {
	return q.queryNews(ctx, listNewsByStatus, arg.Status, arg.Limit, arg.Offset)
}

const countNewsByStatus = `-- name: CountNewsByStatus :one
SELECT COUNT(*) FROM news WHERE status = ?`

func (q *Queries) CountNewsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countNewsByStatus, status).Scan(&count)
	return count, err
}

const newsSlugExists = `-- name: NewsSlugExists :one
SELECT EXISTS(SELECT 1 FROM news WHERE slug = ? AND id != ?)`

type NewsSlugExistsParams struct {
	Slug string `json:"slug"`
	ID   int64  `json:"id"`
}

func (q *Queries) NewsSlugExists(ctx context.Context, arg NewsSlugExistsParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, newsSlugExists, arg.Slug, arg.ID).Scan(&exists)
	return exists, err
}

const createNews = `-- name: CreateNews :one
INSERT INTO news (
    title, slug, content, excerpt, cover_image, author_id, star_id,
    status, published_at, scheduled_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
` + newsReturning

type CreateNewsParams struct {
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	CoverImage  string        `json:"cover_image"`
	AuthorID    int64         `json:"author_id"`
	StarID      sql.NullInt64 `json:"star_id"`
	Status      string        `json:"status"`
	PublishedAt sql.NullTime  `json:"published_at"`
	ScheduledAt sql.NullTime  `json:"scheduled_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (q *Queries) CreateNews(ctx context.Context, arg CreateNewsParams) (News, error) {
	row := q.db.QueryRowContext(ctx, createNews,
		arg.Title,
		arg.Slug,
		arg.Content,
		arg.Excerpt,
		arg.CoverImage,
		arg.AuthorID,
		arg.StarID,
		arg.Status,
		arg.PublishedAt,
		arg.ScheduledAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanNewsRow(row)
}

const updateNews = `-- name: UpdateNews :one
UPDATE news SET
    title = ?, slug = ?, content = ?, excerpt = ?, cover_image = ?, star_id = ?,
    status = ?, published_at = ?, scheduled_at = ?, updated_at = ?
WHERE id = ?
` + newsReturning

type UpdateNewsParams struct {
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	CoverImage  string        `json:"cover_image"`
	StarID      sql.NullInt64 `json:"star_id"`
	Status      string        `json:"status"`
	PublishedAt sql.NullTime  `json:"published_at"`
	ScheduledAt sql.NullTime  `json:"scheduled_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ID          int64         `json:"id"`
}

func (q *Queries) UpdateNews(ctx context.Context, arg UpdateNewsParams) (News, error) {
	row := q.db.QueryRowContext(ctx, updateNews,
		arg.Title,
		arg.Slug,
		arg.Content,
		arg.Excerpt,
		arg.CoverImage,
		arg.StarID,
		arg.Status,
		arg.PublishedAt,
		arg.ScheduledAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanNewsRow(row)
}

const setNewsStatus = `-- name: SetNewsStatus :one
UPDATE news SET status = ?, published_at = ?, scheduled_at = ?, updated_at = ?
WHERE id = ?
` + newsReturning

type SetNewsStatusParams struct {
	Status      string       `json:"status"`
	PublishedAt sql.NullTime `json:"published_at"`
	ScheduledAt sql.NullTime `json:"scheduled_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ID          int64        `json:"id"`
}

func (q *Queries) SetNewsStatus(ctx context.Context, arg SetNewsStatusParams) (News, error) {
	row := q.db.QueryRowContext(ctx, setNewsStatus,
		arg.Status,
		arg.PublishedAt,
		arg.ScheduledAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanNewsRow(row)
}

const listDueScheduledNews = `-- name: ListDueScheduledNews :many
` + newsSelect + `
WHERE n.status = 'draft' AND n.scheduled_at IS NOT NULL AND n.scheduled_at <= ?
ORDER BY n.scheduled_at ASC`

func (q *Queries) ListDueScheduledNews(ctx context.Context, now time.Time) ([]News, error) {
	return q.queryNews(ctx, listDueScheduledNews, now)
}

const deleteNews = `-- name: DeleteNews :exec
DELETE FROM news WHERE id = ?`

func (q *Queries) DeleteNews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteNews, id)
	return err
}
