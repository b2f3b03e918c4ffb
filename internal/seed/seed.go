// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seed creates the default admin account and the optional demo
// catalogue of stars, news and accounts.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dizistars/dizistars/internal/auth"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/store"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@dizistars.local"
	DefaultAdminPassword = "changeme123"
	DefaultAdminName     = "Yönetici"
)

// Account is a seeded login.
type Account struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// DemoAccounts are created by Demo and accepted by the in-memory
// authenticator, which looks their ids up by email.
var DemoAccounts = []Account{
	{Email: DefaultAdminEmail, Password: DefaultAdminPassword, Name: DefaultAdminName, Role: model.RoleAdmin},
	{Email: "editor@dizistars.local", Password: "editor12345", Name: "Elif Editör", Role: model.RoleEditor},
	{Email: "fan@dizistars.local", Password: "fan1234567", Name: "Zeynep Hayran", Role: model.RoleUser},
}

// Admin creates the default admin account unless it already exists.
func Admin(ctx context.Context, db *sql.DB) error {
	queries := store.New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	user, err := createAccount(ctx, queries, DemoAccounts[0])
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}

func createAccount(ctx context.Context, queries *store.Queries, a Account) (store.User, error) {
	hash, err := auth.HashPassword(a.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}
	now := time.Now().UTC()
	return queries.CreateUser(ctx, store.CreateUserParams{
		Email:        a.Email,
		PasswordHash: hash,
		Role:         a.Role,
		Name:         a.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Demo fills an empty catalogue with the demo stars, their social links,
// a few published articles and the demo accounts. It does nothing when any
// star already exists.
func Demo(ctx context.Context, db *sql.DB) error {
	queries := store.New(db)
	n, err := queries.CountStars(ctx)
	if err != nil {
		return fmt.Errorf("counting stars: %w", err)
	}
	if n > 0 {
		slog.Info("stars already exist, skipping demo seed", "count", n)
		return nil
	}

	users := make(map[string]int64, len(DemoAccounts))
	for _, a := range DemoAccounts {
		u, err := queries.GetUserByEmail(ctx, a.Email)
		if errors.Is(err, sql.ErrNoRows) {
			u, err = createAccount(ctx, queries, a)
		}
		if err != nil {
			return fmt.Errorf("seeding account %s: %w", a.Email, err)
		}
		users[a.Role] = u.ID
	}

	stars := service.NewStarService(db, nil, service.ImagePolicy{})
	ids := make(map[string]int64, len(DemoStars))
	for _, in := range DemoStars {
		st, err := stars.CreateStar(ctx, in)
		if err != nil {
			return fmt.Errorf("seeding star %s: %w", in.FullName, err)
		}
		ids[st.FullName] = st.ID
		if links, ok := demoSocial[st.FullName]; ok {
			if _, err := stars.SetStarSocialMedia(ctx, st.ID, links); err != nil {
				return fmt.Errorf("seeding social links of %s: %w", st.FullName, err)
			}
		}
	}

	news := service.NewNewsService(db, nil, service.ImagePolicy{}, nil)
	for _, dn := range demoNews {
		in := dn.input
		if dn.star != "" {
			id := ids[dn.star]
			in.StarID = &id
		}
		if _, err := news.CreateNews(ctx, users[model.RoleEditor], in); err != nil {
			return fmt.Errorf("seeding news %q: %w", in.Title, err)
		}
	}

	favorites := service.NewFavoriteService(db)
	for _, name := range []string{"Can Yaman", "Hande Erçel"} {
		if _, err := favorites.AddFavorite(ctx, users[model.RoleUser], ids[name]); err != nil {
			return fmt.Errorf("seeding favorite %s: %w", name, err)
		}
	}

	slog.Info("seeded demo content", "stars", len(DemoStars), "news", len(demoNews))
	return nil
}
