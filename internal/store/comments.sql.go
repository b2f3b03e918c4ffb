// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const commentSelect = `SELECT c.id, c.user_id, c.target_type, c.target_id, c.content, c.status,
    c.created_at, c.updated_at, u.name, u.avatar_url
FROM comments c
LEFT JOIN users u ON u.id = c.user_id`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var c Comment
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.TargetType,
		&c.TargetID,
		&c.Content,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.UserName,
		&c.UserAvatarUrl,
	)
	return c, err
}

func (q *Queries) queryComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createComment = `-- name: CreateComment :one
INSERT INTO comments (user_id, target_type, target_id, content, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateCommentParams struct {
	UserID     int64     `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateComment inserts a comment and returns it with the author columns filled.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createComment,
		arg.UserID,
		arg.TargetType,
		arg.TargetID,
		arg.Content,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Comment{}, err
	}
	return q.GetComment(ctx, id)
}

const getComment = `-- name: GetComment :one
` + commentSelect + `
WHERE c.id = ?`

func (q *Queries) GetComment(ctx context.Context, id int64) (Comment, error) {
	return scanComment(q.db.QueryRowContext(ctx, getComment, id))
}

const listApprovedComments = `-- name: ListApprovedComments :many
` + commentSelect + `
WHERE c.target_type = ? AND c.target_id = ? AND c.status = 'approved'
ORDER BY c.created_at DESC, c.id DESC`

type ListApprovedCommentsParams struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
}

func (q *Queries) ListApprovedComments(ctx context.Context, arg ListApprovedCommentsParams) ([]Comment, error) {
	return q.queryComments(ctx, listApprovedComments, arg.TargetType, arg.TargetID)
}

const listCommentsByStatus = `-- name: ListCommentsByStatus :many
` + commentSelect + `
WHERE c.status = ?
ORDER BY c.created_at DESC, c.id DESC
LIMIT ? OFFSET ?`

type ListCommentsByStatusParams struct {
	Status string `json:"status"`
	Limit  int64  `json:"limit"`
	Offset int64  `json:"offset"`
}

func (q *Queries) ListCommentsByStatus(ctx context.Context, arg ListCommentsByStatusParams) ([]Comment, error) {
	return q.queryComments(ctx, listCommentsByStatus, arg.Status, arg.Limit, arg.Offset)
}

const countCommentsByStatus = `-- name: CountCommentsByStatus :one
SELECT COUNT(*) FROM comments WHERE status = ?`

func (q *Queries) CountCommentsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCommentsByStatus, status).Scan(&count)
	return count, err
}

const setCommentStatus = `-- name: SetCommentStatus :execrows
UPDATE comments SET status = ?, updated_at = ? WHERE id = ?`

type SetCommentStatusParams struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) SetCommentStatus(ctx context.Context, arg SetCommentStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setCommentStatus, arg.Status, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteComment = `-- name: DeleteComment :execrows
DELETE FROM comments WHERE id = ?`

func (q *Queries) DeleteComment(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteComment, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCommentsForTarget = `-- name: DeleteCommentsForTarget :exec
DELETE FROM comments WHERE target_type = ? AND target_id = ?`

type DeleteCommentsForTargetParams struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
}

func (q *Queries) DeleteCommentsForTarget(ctx context.Context, arg DeleteCommentsForTargetParams) error {
	_, err := q.db.ExecContext(ctx, deleteCommentsForTarget, arg.TargetType, arg.TargetID)
	return err
}
