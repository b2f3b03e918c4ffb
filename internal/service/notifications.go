// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
)

// MaxNotifications bounds the list shown in the profile and the nav badge menu.
const MaxNotifications = 50

// NotificationInput describes a notification to deliver.
type NotificationInput struct {
	UserID  int64
	Type    model.NotificationType
	Title   string
	Message string
	Link    string
}

// NotificationService stores per-user notifications.
type NotificationService struct {
	queries  *store.Queries
	onCreate func(ctx context.Context, userID int64)
	onPurge  func(ctx context.Context)
}

// OnCreate registers fn to run after a notification is delivered, so
// per-user caches can be dropped.
func (s *NotificationService) OnCreate(fn func(ctx context.Context, userID int64)) {
	s.onCreate = fn
}

// OnPurge registers fn to run after PurgeRead removed rows of any user.
func (s *NotificationService) OnPurge(fn func(ctx context.Context)) {
	s.onPurge = fn
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{queries: store.New(db)}
}

func notificationFromStore(r store.Notification) model.Notification {
	return model.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      model.NotificationType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		Link:      r.Link,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}

// CreateNotification delivers one notification.
func (s *NotificationService) CreateNotification(ctx context.Context, in NotificationInput) (*model.Notification, error) {
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "Title is required.")
	}
	if in.Type == "" {
		in.Type = model.NotificationSystem
	}
	row, err := s.queries.CreateNotification(ctx, store.CreateNotificationParams{
		UserID:    in.UserID,
		Type:      string(in.Type),
		Title:     in.Title,
		Message:   in.Message,
		Link:      in.Link,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating notification for user %d: %w", in.UserID, err)
	}
	if s.onCreate != nil {
		s.onCreate(ctx, in.UserID)
	}
	n := notificationFromStore(row)
	return &n, nil
}

// ListNotifications returns the newest notifications of a user.
func (s *NotificationService) ListNotifications(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if limit < 1 || limit > MaxNotifications {
		limit = MaxNotifications
	}
	rows, err := s.queries.ListNotifications(ctx, store.ListNotificationsParams{UserID: userID, Limit: int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("listing notifications of user %d: %w", userID, err)
	}
	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, notificationFromStore(r))
	}
	return out, nil
}

// UnreadCount returns how many notifications of a user are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.queries.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications of user %d: %w", userID, err)
	}
	return n, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	n, err := s.queries.MarkNotificationRead(ctx, store.MarkNotificationReadParams{ID: id, UserID: userID})
	if err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("notification", id)
	}
	return nil
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.queries.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("marking notifications of user %d read: %w", userID, err)
	}
	return nil
}

// DeleteNotification removes one of the user's notifications.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id int64) error {
	n, err := s.queries.DeleteNotification(ctx, store.DeleteNotificationParams{ID: id, UserID: userID})
	if err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("notification", id)
	}
	return nil
}

// NotifyStarFollowers tells every user who favorited the star, and accepts
// news alerts, about a published article. It returns the number notified.
func (s *NotificationService) NotifyStarFollowers(ctx context.Context, starID int64, news *model.News) (int, error) {
	followers, err := s.queries.ListStarFollowers(ctx, starID)
	if err != nil {
		return 0, fmt.Errorf("listing followers of star %d: %w", starID, err)
	}
	title := "New story"
	if news.StarName != "" {
		title = "New story about " + news.StarName
	}
	sent := 0
	for _, userID := range followers {
		if _, err := s.CreateNotification(ctx, NotificationInput{
			UserID:  userID,
			Type:    model.NotificationNews,
			Title:   title,
			Message: news.Title,
			Link:    "/news/" + news.Slug,
		}); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// PurgeRead deletes read notifications older than olderThan.
func (s *NotificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.queries.DeleteReadNotificationsBefore(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 && s.onPurge != nil {
		s.onPurge(ctx)
	}
	return n, nil
}
