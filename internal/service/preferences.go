// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
)

// PreferenceService stores per-user settings.
type PreferenceService struct {
	queries *store.Queries
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(db *sql.DB) *PreferenceService {
	return &PreferenceService{queries: store.New(db)}
}

// GetPreferences returns the user's settings, or the defaults if none were saved.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID int64) (model.Preferences, error) {
	row, err := s.queries.GetUserPreferences(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultPreferences(userID), nil
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("loading preferences of user %d: %w", userID, err)
	}
	return model.Preferences{
		UserID:             row.UserID,
		EmailNotifications: row.EmailNotifications,
		NewsAlerts:         row.NewsAlerts,
		Language:           row.Language,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

// UpdatePreferences saves the user's settings.
func (s *PreferenceService) UpdatePreferences(ctx context.Context, prefs model.Preferences) (model.Preferences, error) {
	if prefs.Language != model.LanguageTR && prefs.Language != model.LanguageEN {
		return model.Preferences{}, apperror.ValidationFailed("language", "Language has an invalid value.")
	}
	prefs.UpdatedAt = time.Now().UTC()
	if err := s.queries.UpsertUserPreferences(ctx, store.UpsertUserPreferencesParams{
		UserID:             prefs.UserID,
		EmailNotifications: prefs.EmailNotifications,
		NewsAlerts:         prefs.NewsAlerts,
		Language:           prefs.Language,
		UpdatedAt:          prefs.UpdatedAt,
	}); err != nil {
		return model.Preferences{}, fmt.Errorf("saving preferences of user %d: %w", prefs.UserID, err)
	}
	return prefs, nil
}
