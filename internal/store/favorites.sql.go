// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const addFavorite = `-- name: AddFavorite :exec
INSERT INTO favorites (user_id, star_id, created_at) VALUES (?, ?, ?)
ON CONFLICT (user_id, star_id) DO NOTHING`

type AddFavoriteParams struct {
	UserID    int64     `json:"user_id"`
	StarID    int64     `json:"star_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) AddFavorite(ctx context.Context, arg AddFavoriteParams) error {
	_, err := q.db.ExecContext(ctx, addFavorite, arg.UserID, arg.StarID, arg.CreatedAt)
	return err
}

const removeFavorite = `-- name: RemoveFavorite :exec
DELETE FROM favorites WHERE user_id = ? AND star_id = ?`

type RemoveFavoriteParams struct {
	UserID int64 `json:"user_id"`
	StarID int64 `json:"star_id"`
}

func (q *Queries) RemoveFavorite(ctx context.Context, arg RemoveFavoriteParams) error {
	_, err := q.db.ExecContext(ctx, removeFavorite, arg.UserID, arg.StarID)
	return err
}

const isFavorite = `-- name: IsFavorite :one
SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND star_id = ?)`

type IsFavoriteParams struct {
	UserID int64 `json:"user_id"`
	StarID int64 `json:"star_id"`
}

func (q *Queries) IsFavorite(ctx context.Context, arg IsFavoriteParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, isFavorite, arg.UserID, arg.StarID).Scan(&exists)
	return exists, err
}

const listFavorites = `-- name: ListFavorites :many
SELECT f.id, f.user_id, f.star_id, f.created_at, s.full_name, s.slug, s.profile_image_url
FROM favorites f
JOIN stars s ON s.id = f.star_id
WHERE f.user_id = ?
ORDER BY f.created_at DESC, f.id DESC`

func (q *Queries) ListFavorites(ctx context.Context, userID int64) ([]Favorite, error) {
	rows, err := q.db.QueryContext(ctx, listFavorites, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.StarID,
			&f.CreatedAt,
			&f.FullName,
			&f.Slug,
			&f.ProfileImageUrl,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

const listStarFollowers = `-- name: ListStarFollowers :many
SELECT f.user_id FROM favorites f
LEFT JOIN user_preferences p ON p.user_id = f.user_id
WHERE f.star_id = ? AND COALESCE(p.news_alerts, 1) = 1
ORDER BY f.user_id`

// ListStarFollowers returns users who favorited the star and accept news alerts.
func (q *Queries) ListStarFollowers(ctx context.Context, starID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listStarFollowers, starID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
