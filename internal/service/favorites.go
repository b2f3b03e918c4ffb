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

// FavoriteService manages the stars a user has saved.
type FavoriteService struct {
	queries *store.Queries
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(db *sql.DB) *FavoriteService {
	return &FavoriteService{queries: store.New(db)}
}

func favoriteFromStore(r store.Favorite) model.Favorite {
	return model.Favorite{
		ID:        r.ID,
		UserID:    r.UserID,
		StarID:    r.StarID,
		Title:     r.FullName,
		Image:     r.ProfileImageUrl,
		StarSlug:  r.Slug,
		CreatedAt: r.CreatedAt,
	}
}

// AddFavorite saves a star for the user. Adding a star twice keeps one row.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, starID int64) (*model.Favorite, error) {
	if _, err := s.queries.GetStarByID(ctx, starID); err != nil {
		return nil, notFound(err, "star", starID)
	}
	if err := s.queries.AddFavorite(ctx, store.AddFavoriteParams{
		UserID:    userID,
		StarID:    starID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("adding favorite star %d for user %d: %w", starID, userID, err)
	}
	favs, err := s.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range favs {
		if favs[i].StarID == starID {
			return &favs[i], nil
		}
	}
	return nil, apperror.NotFound("favorite", starID)
}

// RemoveFavorite removes a saved star. Removing a star that is not saved is a no-op.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, starID int64) error {
	if err := s.queries.RemoveFavorite(ctx, store.RemoveFavoriteParams{UserID: userID, StarID: starID}); err != nil {
		return fmt.Errorf("removing favorite star %d for user %d: %w", starID, userID, err)
	}
	return nil
}

// ListFavorites returns the user's saved stars, newest first.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error) {
	rows, err := s.queries.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites of user %d: %w", userID, err)
	}
	out := make([]model.Favorite, 0, len(rows))
	for _, r := range rows {
		out = append(out, favoriteFromStore(r))
	}
	return out, nil
}

// IsFavorite reports whether the user saved the star.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, starID int64) (bool, error) {
	ok, err := s.queries.IsFavorite(ctx, store.IsFavoriteParams{UserID: userID, StarID: starID})
	if err != nil {
		return false, fmt.Errorf("checking favorite star %d for user %d: %w", starID, userID, err)
	}
	return ok, nil
}
