// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retention periods of the purge jobs.
const (
	EventRetention        = 90 * 24 * time.Hour
	NotificationRetention = 30 * 24 * time.Hour
)

// NewsPublisher publishes scheduled articles.
type NewsPublisher interface {
	PublishDueNews(ctx context.Context) (int, error)
}

// EventPurger deletes old audit events.
type EventPurger interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NotificationPurger deletes old read notifications.
type NotificationPurger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ResetPurger deletes expired password reset tokens.
type ResetPurger interface {
	DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error)
}

// GeoIPReloader reopens the GeoIP database when the file changes.
type GeoIPReloader interface {
	Reload() error
	IsEnabled() bool
}

// Deps are the services the built-in jobs act on. Nil fields skip their job.
type Deps struct {
	News          NewsPublisher
	Events        EventPurger
	Notifications NotificationPurger
	Resets        ResetPurger
	GeoIP         GeoIPReloader
	Logger        *slog.Logger
}

// Jobs returns the built-in jobs for deps.
func Jobs(deps Deps) []Job {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var jobs []Job

	if deps.News != nil {
		jobs = append(jobs, Job{
			Name:        "publish-scheduled-news",
			Description: "Publishes draft articles whose scheduled time has passed",
			Schedule:    "* * * * *",
			Run: func(ctx context.Context) error {
				n, err := deps.News.PublishDueNews(ctx)
				if n > 0 {
					logger.Info("published scheduled news", "count", n)
				}
				return err
			},
		})
	}
	if deps.Resets != nil {
		jobs = append(jobs, Job{
			Name:        "purge-password-resets",
			Description: "Deletes expired password reset tokens",
			Schedule:    "@hourly",
			Run: func(ctx context.Context) error {
				n, err := deps.Resets.DeleteExpiredPasswordResets(ctx, time.Now().UTC())
				if err != nil {
					return fmt.Errorf("purging reset tokens: %w", err)
				}
				logPurged(logger, "password resets", n)
				return nil
			},
		})
	}
	if deps.Events != nil {
		jobs = append(jobs, Job{
			Name:        "purge-events",
			Description: "Deletes audit events older than 90 days",
			Schedule:    "30 3 * * *",
			Run: func(ctx context.Context) error {
				n, err := deps.Events.DeleteOldEvents(ctx, EventRetention)
				if err != nil {
					return fmt.Errorf("purging events: %w", err)
				}
				logPurged(logger, "events", n)
				return nil
			},
		})
	}
	if deps.Notifications != nil {
		jobs = append(jobs, Job{
			Name:        "purge-read-notifications",
			Description: "Deletes read notifications older than 30 days",
			Schedule:    "45 3 * * *",
			Run: func(ctx context.Context) error {
				n, err := deps.Notifications.PurgeRead(ctx, NotificationRetention)
				if err != nil {
					return fmt.Errorf("purging notifications: %w", err)
				}
				logPurged(logger, "notifications", n)
				return nil
			},
		})
	}
	if deps.GeoIP != nil && deps.GeoIP.IsEnabled() {
		jobs = append(jobs, Job{
			Name:        "reload-geoip",
			Description: "Reopens the GeoIP database when the file was replaced",
			Schedule:    "0 4 * * *",
			Run: func(context.Context) error {
				return deps.GeoIP.Reload()
			},
		})
	}
	return jobs
}

func logPurged(logger *slog.Logger, what string, n int64) {
	if n > 0 {
		logger.Info("purged "+what, "count", n)
	}
}
