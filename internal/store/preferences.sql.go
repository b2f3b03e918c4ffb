// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getUserPreferences = `-- name: GetUserPreferences :one
SELECT user_id, email_notifications, news_alerts, language, updated_at
FROM user_preferences WHERE user_id = ?`

func (q *Queries) GetUserPreferences(ctx context.Context, userID int64) (UserPreference, error) {
	var p UserPreference
	err := q.db.QueryRowContext(ctx, getUserPreferences, userID).Scan(
		&p.UserID,
		&p.EmailNotifications,
		&p.NewsAlerts,
		&p.Language,
		&p.UpdatedAt,
	)
	return p, err
}

const upsertUserPreferences = `-- name: UpsertUserPreferences :exec
INSERT INTO user_preferences (user_id, email_notifications, news_alerts, language, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    email_notifications = excluded.email_notifications,
    news_alerts = excluded.news_alerts,
    language = excluded.language,
    updated_at = excluded.updated_at`

type UpsertUserPreferencesParams struct {
	UserID             int64     `json:"user_id"`
	EmailNotifications bool      `json:"email_notifications"`
	NewsAlerts         bool      `json:"news_alerts"`
	Language           string    `json:"language"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (q *Queries) UpsertUserPreferences(ctx context.Context, arg UpsertUserPreferencesParams) error {
	_, err := q.db.ExecContext(ctx, upsertUserPreferences,
		arg.UserID,
		arg.EmailNotifications,
		arg.NewsAlerts,
		arg.Language,
		arg.UpdatedAt,
	)
	return err
}
