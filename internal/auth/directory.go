// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

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
)

// UserDirectory owns the user rows that favorites, comments and
// notifications reference. MemoryAuthenticator takes its ids from it.
type UserDirectory interface {
	// FindUserID returns the id of the user with email, if there is one.
	FindUserID(ctx context.Context, email string) (int64, bool, error)
	// CreateUser inserts a user row and returns its id.
	CreateUser(ctx context.Context, a MemoryAccount) (int64, error)
}

// DBDirectory is the users table.
type DBDirectory struct {
	queries *store.Queries
	now     func() time.Time
}

var _ UserDirectory = (*DBDirectory)(nil)

// NewDBDirectory creates a DBDirectory over db.
func NewDBDirectory(db *sql.DB) *DBDirectory {
	return &DBDirectory{
		queries: store.New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FindUserID looks a user up by normalized email.
func (d *DBDirectory) FindUserID(ctx context.Context, email string) (int64, bool, error) {
	email = NormalizeEmail(email)
	row, err := d.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up %s: %w", email, err)
	}
	return row.ID, true, nil
}

// CreateUser stores the account with a hashed password, so the row also
// works with DBAuthenticator.
func (d *DBDirectory) CreateUser(ctx context.Context, a MemoryAccount) (int64, error) {
	hash, err := HashPassword(a.Password)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}
	if a.Role == "" {
		a.Role = model.RoleUser
	}
	now := d.now()
	row, err := d.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        NormalizeEmail(a.Email),
		PasswordHash: hash,
		Role:         a.Role,
		Name:         a.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, apperror.Conflict("user", a.Email)
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return row.ID, nil
}
