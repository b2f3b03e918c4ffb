// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package features holds the signed-in user's favorites, notifications and
// preferences. Mutations update the cached state first, persist through the
// data layer, and restore the previous state when persisting fails.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
)

const stateTTL = 5 * time.Minute

// State is everything the profile page and the nav badge show for one user.
type State struct {
	Favorites     []model.Favorite     `json:"favorites"`
	Notifications []model.Notification `json:"notifications"`
	Preferences   model.Preferences    `json:"preferences"`
}

// UnreadCount returns the number of unread notifications.
func (s State) UnreadCount() int {
	n := 0
	for _, no := range s.Notifications {
		if !no.IsRead {
			n++
		}
	}
	return n
}

// IsFavorite reports whether starID is among the favorites.
func (s State) IsFavorite(starID int64) bool {
	return slices.ContainsFunc(s.Favorites, func(f model.Favorite) bool { return f.StarID == starID })
}

func (s State) clone() State {
	return State{
		Favorites:     slices.Clone(s.Favorites),
		Notifications: slices.Clone(s.Notifications),
		Preferences:   s.Preferences,
	}
}

// FavoriteInput is a star to add to favorites. Title and Image are shown
// until the stored row comes back.
type FavoriteInput struct {
	StarID int64
	Title  string
	Image  string
}

// FavoriteStore persists favorites.
type FavoriteStore interface {
	AddFavorite(ctx context.Context, userID, starID int64) (*model.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, starID int64) error
	ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	ListNotifications(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, userID, id int64) error
}

// PreferenceStore persists preferences.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID int64) (model.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs model.Preferences) (model.Preferences, error)
}

// CommentStore persists comments.
type CommentStore interface {
	AddComment(ctx context.Context, author *model.User, ref model.CommentRef, text string) (*model.Comment, error)
	DeleteComment(ctx context.Context, actor *model.User, id int64) error
}

// Backend bundles the data layer the service writes through.
type Backend struct {
	Favorites     FavoriteStore
	Notifications NotificationStore
	Preferences   PreferenceStore
	Comments      CommentStore
}

// Service manages user feature state.
type Service struct {
	backend Backend
	cache   cache.Cache
	states  *cache.TypedCache[State]

	mu    sync.Mutex
	locks map[int64]*userLock
}

// userLock is held while one user's state is mutated. refs counts holders
// and waiters; the entry is dropped when it reaches zero.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a Service caching state in c.
func New(backend Backend, c cache.Cache) *Service {
	return &Service{
		backend: backend,
		cache:   c,
		states:  cache.NewTypedCache[State](c, stateTTL),
		locks:   make(map[int64]*userLock),
	}
}

// lock serializes mutations of one user's state.
func (s *Service) lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// Load returns the user's state, read through the cache.
func (s *Service) Load(ctx context.Context, userID int64) (State, error) {
	return s.states.GetOrSet(ctx, cache.UserStateKey(userID), func(ctx context.Context) (State, error) {
		return s.fetch(ctx, userID)
	})
}

func (s *Service) fetch(ctx context.Context, userID int64) (State, error) {
	favs, err := s.backend.Favorites.ListFavorites(ctx, userID)
	if err != nil {
		return State{}, err
	}
	notes, err := s.backend.Notifications.ListNotifications(ctx, userID, service.MaxNotifications)
	if err != nil {
		return State{}, err
	}
	prefs, err := s.backend.Preferences.GetPreferences(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return State{Favorites: favs, Notifications: notes, Preferences: prefs}, nil
}

// Invalidate drops the cached state so the next Load reads the data layer.
func (s *Service) Invalidate(ctx context.Context, userID int64) {
	if err := s.states.Delete(ctx, cache.UserStateKey(userID)); err != nil {
		slog.Warn("user state invalidation failed", "user_id", userID, "error", err)
	}
}

// InvalidateAll drops the cached state of every user.
func (s *Service) InvalidateAll(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, cache.PrefixUser); err != nil {
		slog.Warn("user state invalidation failed", "error", err)
	}
}

func (s *Service) put(ctx context.Context, userID int64, st State) {
	if err := s.states.Set(ctx, cache.UserStateKey(userID), st); err != nil {
		slog.Warn("caching user state failed", "user_id", userID, "error", err)
	}
}

// mutate applies change to the cached state, runs persist, and restores the
// previous state if persist fails. reconcile, when set, adjusts the state
// with what the data layer returned.
func (s *Service) mutate(ctx context.Context, userID int64, change func(*State), persist func() error, reconcile func(*State)) (State, error) {
	unlock := s.lock(userID)
	defer unlock()

	prev, err := s.Load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	next := prev.clone()
	change(&next)
	s.put(ctx, userID, next)

	if err := persist(); err != nil {
		s.put(ctx, userID, prev)
		return prev, err
	}
	if reconcile != nil {
		reconcile(&next)
		s.put(ctx, userID, next)
	}
	return next, nil
}

// AddToFavorites saves a star. Adding a star twice keeps one entry.
func (s *Service) AddToFavorites(ctx context.Context, userID int64, in FavoriteInput) (State, error) {
	var saved *model.Favorite
	return s.mutate(ctx, userID,
		func(st *State) {
			if st.IsFavorite(in.StarID) {
				return
			}
			st.Favorites = append([]model.Favorite{{
				UserID:    userID,
				StarID:    in.StarID,
				Title:     in.Title,
				Image:     in.Image,
				CreatedAt: time.Now().UTC(),
			}}, st.Favorites...)
		},
		func() error {
			f, err := s.backend.Favorites.AddFavorite(ctx, userID, in.StarID)
			if err != nil {
				return fmt.Errorf("adding favorite: %w", err)
			}
			saved = f
			return nil
		},
		func(st *State) {
			for i := range st.Favorites {
				if st.Favorites[i].StarID == saved.StarID {
					st.Favorites[i] = *saved
				}
			}
		},
	)
}

// RemoveFromFavorites removes the star with id starID from favorites.
func (s *Service) RemoveFromFavorites(ctx context.Context, userID, starID int64) (State, error) {
	return s.mutate(ctx, userID,
		func(st *State) {
			st.Favorites = slices.DeleteFunc(st.Favorites, func(f model.Favorite) bool { return f.StarID == starID })
		},
		func() error {
			return s.backend.Favorites.RemoveFavorite(ctx, userID, starID)
		},
		nil,
	)
}

// MarkNotificationAsRead marks one notification read.
func (s *Service) MarkNotificationAsRead(ctx context.Context, userID, id int64) (State, error) {
	return s.mutate(ctx, userID,
		func(st *State) {
			for i := range st.Notifications {
				if st.Notifications[i].ID == id {
					st.Notifications[i].IsRead = true
				}
			}
		},
		func() error {
			return s.backend.Notifications.MarkRead(ctx, userID, id)
		},
		nil,
	)
}

// MarkAllNotificationsAsRead marks every notification read.
func (s *Service) MarkAllNotificationsAsRead(ctx context.Context, userID int64) (State, error) {
	return s.mutate(ctx, userID,
		func(st *State) {
			for i := range st.Notifications {
				st.Notifications[i].IsRead = true
			}
		},
		func() error {
			return s.backend.Notifications.MarkAllRead(ctx, userID)
		},
		nil,
	)
}

// ClearNotification deletes one notification.
func (s *Service) ClearNotification(ctx context.Context, userID, id int64) (State, error) {
	return s.mutate(ctx, userID,
		func(st *State) {
			st.Notifications = slices.DeleteFunc(st.Notifications, func(n model.Notification) bool { return n.ID == id })
		},
		func() error {
			return s.backend.Notifications.DeleteNotification(ctx, userID, id)
		},
		nil,
	)
}

// UpdatePreferences saves the user's settings.
func (s *Service) UpdatePreferences(ctx context.Context, userID int64, prefs model.Preferences) (State, error) {
	prefs.UserID = userID
	var saved model.Preferences
	return s.mutate(ctx, userID,
		func(st *State) { st.Preferences = prefs },
		func() error {
			p, err := s.backend.Preferences.UpdatePreferences(ctx, prefs)
			if err != nil {
				return err
			}
			saved = p
			return nil
		},
		func(st *State) { st.Preferences = saved },
	)
}

// UnreadCount returns the number of unread notifications of the user.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	st, err := s.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	return st.UnreadCount(), nil
}

// Language returns the user's preferred UI language.
func (s *Service) Language(ctx context.Context, userID int64) (string, error) {
	st, err := s.Load(ctx, userID)
	if err != nil {
		return "", err
	}
	return st.Preferences.Language, nil
}

// AddComment posts a comment as user. Comments are not part of State; they
// go straight to the data layer.
func (s *Service) AddComment(ctx context.Context, user *model.User, ref model.CommentRef, text string) (*model.Comment, error) {
	return s.backend.Comments.AddComment(ctx, user, ref, text)
}

// DeleteComment deletes a comment as user.
func (s *Service) DeleteComment(ctx context.Context, user *model.User, id int64) error {
	return s.backend.Comments.DeleteComment(ctx, user, id)
}
