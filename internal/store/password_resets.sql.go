// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createPasswordReset = `-- name: CreatePasswordReset :exec
INSERT INTO password_resets (user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?)`

type CreatePasswordResetParams struct {
	UserID    int64     `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreatePasswordReset(ctx context.Context, arg CreatePasswordResetParams) error {
	_, err := q.db.ExecContext(ctx, createPasswordReset, arg.UserID, arg.TokenHash, arg.ExpiresAt, arg.CreatedAt)
	return err
}

const getPasswordResetByHash = `-- name: GetPasswordResetByHash :one
SELECT id, user_id, token_hash, expires_at, used_at, created_at
FROM password_resets WHERE token_hash = ?`

func (q *Queries) GetPasswordResetByHash(ctx context.Context, tokenHash string) (PasswordReset, error) {
	var r PasswordReset
	err := q.db.QueryRowContext(ctx, getPasswordResetByHash, tokenHash).Scan(
		&r.ID,
		&r.UserID,
		&r.TokenHash,
		&r.ExpiresAt,
		&r.UsedAt,
		&r.CreatedAt,
	)
	return r, err
}

const markPasswordResetUsed = `-- name: MarkPasswordResetUsed :execrows
UPDATE password_resets SET used_at = ? WHERE id = ? AND used_at IS NULL`

type MarkPasswordResetUsedParams struct {
	UsedAt sql.NullTime `json:"used_at"`
	ID     int64        `json:"id"`
}

// MarkPasswordResetUsed claims a token. It affects no rows when the token
// was already used.
func (q *Queries) MarkPasswordResetUsed(ctx context.Context, arg MarkPasswordResetUsedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markPasswordResetUsed, arg.UsedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpiredPasswordResets = `-- name: DeleteExpiredPasswordResets :execrows
DELETE FROM password_resets WHERE expires_at < ? OR used_at IS NOT NULL`

func (q *Queries) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredPasswordResets, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
