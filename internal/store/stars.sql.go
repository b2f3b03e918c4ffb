// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const starColumns = `id, full_name, slug, profile_image_url, star_type, current_project,
birth_date, birth_place, biography, education, is_featured, is_trending, is_rising,
is_influential, filmography, gallery_images, created_at, updated_at`

func scanStar(row interface{ Scan(...any) error }) (Star, error) {
	var s Star
	err := row.Scan(
		&s.ID,
		&s.FullName,
		&s.Slug,
		&s.ProfileImageUrl,
		&s.StarType,
		&s.CurrentProject,
		&s.BirthDate,
		&s.BirthPlace,
		&s.Biography,
		&s.Education,
		&s.IsFeatured,
		&s.IsTrending,
		&s.IsRising,
		&s.IsInfluential,
		&s.Filmography,
		&s.GalleryImages,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (q *Queries) queryStars(ctx context.Context, query string, args ...any) ([]Star, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Star
	for rows.Next() {
		s, err := scanStar(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const getFeaturedStars = `-- name: GetFeaturedStars :many
SELECT ` + starColumns + ` FROM stars WHERE is_featured = 1 ORDER BY updated_at DESC, id DESC LIMIT ?`

func (q *Queries) GetFeaturedStars(ctx context.Context, limit int64) ([]Star, error) {
	return q.queryStars(ctx, getFeaturedStars, limit)
}

const getTrendingStars = `-- name: GetTrendingStars :many
SELECT ` + starColumns + ` FROM stars WHERE is_trending = 1 ORDER BY updated_at DESC, id DESC LIMIT ?`

func (q *Queries) GetTrendingStars(ctx context.Context, limit int64) ([]Star, error) {
	return q.queryStars(ctx, getTrendingStars, limit)
}

const getRisingStars = `-- name: GetRisingStars :many
SELECT ` + starColumns + ` FROM stars WHERE is_rising = 1 ORDER BY updated_at DESC, id DESC LIMIT ?`

func (q *Queries) GetRisingStars(ctx context.Context, limit int64) ([]Star, error) {
	return q.queryStars(ctx, getRisingStars, limit)
}

const getInfluentialStars = `-- name: GetInfluentialStars :many
SELECT ` + starColumns + ` FROM stars WHERE is_influential = 1 ORDER BY updated_at DESC, id DESC LIMIT ?`

func (q *Queries) GetInfluentialStars(ctx context.Context, limit int64) ([]Star, error) {
	return q.queryStars(ctx, getInfluentialStars, limit)
}

const getStarByID = `-- name: GetStarByID :one
SELECT ` + starColumns + ` FROM stars WHERE id = ?`

func (q *Queries) GetStarByID(ctx context.Context, id int64) (Star, error) {
	return scanStar(q.db.QueryRowContext(ctx, getStarByID, id))
}

const getStarBySlug = `-- name: GetStarBySlug :one
SELECT ` + starColumns + ` FROM stars WHERE slug = ?`

func (q *Queries) GetStarBySlug(ctx context.Context, slug string) (Star, error) {
	return scanStar(q.db.QueryRowContext(ctx, getStarBySlug, slug))
}

const listStars = `-- name: ListStars :many
SELECT ` + starColumns + ` FROM stars ORDER BY full_name ASC, id ASC LIMIT ? OFFSET ?`

type ListStarsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListStars(ctx context.Context, arg ListStarsParams) ([]Star, error) {
	return q.queryStars(ctx, listStars, arg.Limit, arg.Offset)
}

const listAllStars = `-- name: ListAllStars :many
SELECT ` + starColumns + ` FROM stars ORDER BY full_name ASC, id ASC`

func (q *Queries) ListAllStars(ctx context.Context) ([]Star, error) {
	return q.queryStars(ctx, listAllStars)
}

const countStars = `-- name: CountStars :one
SELECT COUNT(*) FROM stars`

func (q *Queries) CountStars(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countStars).Scan(&count)
	return count, err
}

const starSlugExists = `-- name: StarSlugExists :one
SELECT EXISTS(SELECT 1 FROM stars WHERE slug = ? AND id != ?)`

type StarSlugExistsParams struct {
	Slug string `json:"slug"`
	ID   int64  `json:"id"`
}

func (q *Queries) StarSlugExists(ctx context.Context, arg StarSlugExistsParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, starSlugExists, arg.Slug, arg.ID).Scan(&exists)
	return exists, err
}

const createStar = `-- name: CreateStar :one
INSERT INTO stars (
    full_name, slug, profile_image_url, star_type, current_project,
    birth_date, birth_place, biography, education,
    is_featured, is_trending, is_rising, is_influential,
    filmography, gallery_images, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + starColumns

type CreateStarParams struct {
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

func (q *Queries) CreateStar(ctx context.Context, arg CreateStarParams) (Star, error) {
	row := q.db.QueryRowContext(ctx, createStar,
		arg.FullName,
		arg.Slug,
		arg.ProfileImageUrl,
		arg.StarType,
		arg.CurrentProject,
		arg.BirthDate,
		arg.BirthPlace,
		arg.Biography,
		arg.Education,
		arg.IsFeatured,
		arg.IsTrending,
		arg.IsRising,
		arg.IsInfluential,
		arg.Filmography,
		arg.GalleryImages,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanStar(row)
}

const updateStar = `-- name: UpdateStar :one
UPDATE stars SET
    full_name = ?, slug = ?, profile_image_url = ?, star_type = ?, current_project = ?,
    birth_date = ?, birth_place = ?, biography = ?, education = ?,
    filmography = ?, updated_at = ?
WHERE id = ?
RETURNING ` + starColumns

type UpdateStarParams struct {
	FullName        string    `json:"full_name"`
	Slug            string    `json:"slug"`
	ProfileImageUrl string    `json:"profile_image_url"`
	StarType        string    `json:"star_type"`
	CurrentProject  string    `json:"current_project"`
	BirthDate       string    `json:"birth_date"`
	BirthPlace      string    `json:"birth_place"`
	Biography       string    `json:"biography"`
	Education       string    `json:"education"`
	Filmography     string    `json:"filmography"`
	UpdatedAt       time.Time `json:"updated_at"`
	ID              int64     `json:"id"`
}

func (q *Queries) UpdateStar(ctx context.Context, arg UpdateStarParams) (Star, error) {
	row := q.db.QueryRowContext(ctx, updateStar,
		arg.FullName,
		arg.Slug,
		arg.ProfileImageUrl,
		arg.StarType,
		arg.CurrentProject,
		arg.BirthDate,
		arg.BirthPlace,
		arg.Biography,
		arg.Education,
		arg.Filmography,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanStar(row)
}

const setStarFlags = `-- name: SetStarFlags :one
UPDATE stars SET is_featured = ?, is_trending = ?, is_rising = ?, is_influential = ?, updated_at = ?
WHERE id = ?
RETURNING ` + starColumns

type SetStarFlagsParams struct {
	IsFeatured    bool      `json:"is_featured"`
	IsTrending    bool      `json:"is_trending"`
	IsRising      bool      `json:"is_rising"`
	IsInfluential bool      `json:"is_influential"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            int64     `json:"id"`
}

func (q *Queries) SetStarFlags(ctx context.Context, arg SetStarFlagsParams) (Star, error) {
	row := q.db.QueryRowContext(ctx, setStarFlags,
		arg.IsFeatured,
		arg.IsTrending,
		arg.IsRising,
		arg.IsInfluential,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanStar(row)
}

const setStarProfileImage = `-- name: SetStarProfileImage :exec
UPDATE stars SET profile_image_url = ?, updated_at = ? WHERE id = ?`

type SetStarProfileImageParams struct {
	ProfileImageUrl string    `json:"profile_image_url"`
	UpdatedAt       time.Time `json:"updated_at"`
	ID              int64     `json:"id"`
}

func (q *Queries) SetStarProfileImage(ctx context.Context, arg SetStarProfileImageParams) error {
	_, err := q.db.ExecContext(ctx, setStarProfileImage, arg.ProfileImageUrl, arg.UpdatedAt, arg.ID)
	return err
}

const setStarGallery = `-- name: SetStarGallery :exec
UPDATE stars SET gallery_images = ?, updated_at = ? WHERE id = ?`

type SetStarGalleryParams struct {
	GalleryImages string    `json:"gallery_images"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            int64     `json:"id"`
}

func (q *Queries) SetStarGallery(ctx context.Context, arg SetStarGalleryParams) error {
	_, err := q.db.ExecContext(ctx, setStarGallery, arg.GalleryImages, arg.UpdatedAt, arg.ID)
	return err
}

const deleteStar = `-- name: DeleteStar :exec
DELETE FROM stars WHERE id = ?`

func (q *Queries) DeleteStar(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteStar, id)
	return err
}

const listStarSocialLinks = `-- name: ListStarSocialLinks :many
SELECT id, star_id, platform, url FROM star_social_links WHERE star_id = ? ORDER BY platform`

func (q *Queries) ListStarSocialLinks(ctx context.Context, starID int64) ([]StarSocialLink, error) {
	return q.querySocialLinks(ctx, listStarSocialLinks, starID)
}

const listAllSocialLinks = `-- name: ListAllSocialLinks :many
SELECT id, star_id, platform, url FROM star_social_links ORDER BY star_id, platform`

func (q *Queries) ListAllSocialLinks(ctx context.Context) ([]StarSocialLink, error) {
	return q.querySocialLinks(ctx, listAllSocialLinks)
}

func (q *Queries) querySocialLinks(ctx context.Context, query string, args ...any) ([]StarSocialLink, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []StarSocialLink
	for rows.Next() {
		var l StarSocialLink
		if err := rows.Scan(&l.ID, &l.StarID, &l.Platform, &l.Url); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

const upsertStarSocialLink = `-- name: UpsertStarSocialLink :exec
INSERT INTO star_social_links (star_id, platform, url) VALUES (?, ?, ?)
ON CONFLICT (star_id, platform) DO UPDATE SET url = excluded.url`

type UpsertStarSocialLinkParams struct {
	StarID   int64  `json:"star_id"`
	Platform string `json:"platform"`
	Url      string `json:"url"`
}

func (q *Queries) UpsertStarSocialLink(ctx context.Context, arg UpsertStarSocialLinkParams) error {
	_, err := q.db.ExecContext(ctx, upsertStarSocialLink, arg.StarID, arg.Platform, arg.Url)
	return err
}

const deleteStarSocialLink = `-- name: DeleteStarSocialLink :exec
DELETE FROM star_social_links WHERE star_id = ? AND platform = ?`

type DeleteStarSocialLinkParams struct {
	StarID   int64  `json:"star_id"`
	Platform string `json:"platform"`
}

func (q *Queries) DeleteStarSocialLink(ctx context.Context, arg DeleteStarSocialLinkParams) error {
	_, err := q.db.ExecContext(ctx, deleteStarSocialLink, arg.StarID, arg.Platform)
	return err
}
