// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
	"github.com/dizistars/dizistars/internal/util"
)

// UserFromStore converts a database row into the domain user.
func UserFromStore(u store.User) *model.User {
	return &model.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarUrl,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: util.TimePtr(u.LastLoginAt),
	}
}

// UserService reads and updates user accounts.
type UserService struct {
	queries *store.Queries
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{queries: store.New(db)}
}

// GetUserByID returns the user with id.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return UserFromStore(u), nil
}

// GetUserByEmail returns the user registered with email, ignoring case.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.queries.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return UserFromStore(u), nil
}

// ListUsers returns one page of users, newest first.
func (s *UserService) ListUsers(ctx context.Context, page Page) (Paged[*model.User], error) {
	rows, err := s.queries.ListUsers(ctx, store.ListUsersParams{Limit: page.Limit(), Offset: page.Offset()})
	if err != nil {
		return Paged[*model.User]{}, fmt.Errorf("listing users: %w", err)
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return Paged[*model.User]{}, fmt.Errorf("counting users: %w", err)
	}
	users := make([]*model.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, UserFromStore(r))
	}
	return Paged[*model.User]{Items: users, Total: total, Page: page.normalize()}, nil
}

// UpdateUserProfile changes the display name of a user.
func (s *UserService) UpdateUserProfile(ctx context.Context, id int64, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Name is required.")
	}
	if len([]rune(name)) > 100 {
		return nil, apperror.ValidationFailed("name", "Name must be at most 100 characters.")
	}
	u, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Name:      name,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return UserFromStore(u), nil
}

// UpdateUserRole changes the role of a user. The last admin cannot be demoted.
func (s *UserService) UpdateUserRole(ctx context.Context, id int64, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, apperror.ValidationFailed("role", "Role has an invalid value.")
	}
	current, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	if current.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := s.queries.CountUsersByRole(ctx, model.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("counting admins: %w", err)
		}
		if admins <= 1 {
			return nil, apperror.Forbidden("The last admin cannot be demoted.")
		}
	}
	u, err := s.queries.UpdateUserRole(ctx, store.UpdateUserRoleParams{
		Role:      role,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return UserFromStore(u), nil
}

// UpdateUserAvatar stores the public URL of a user's avatar.
func (s *UserService) UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) (*model.User, error) {
	u, err := s.queries.UpdateUserAvatar(ctx, store.UpdateUserAvatarParams{
		AvatarUrl: avatarURL,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return UserFromStore(u), nil
}

// CountUsers returns the number of registered users.
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.queries.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
