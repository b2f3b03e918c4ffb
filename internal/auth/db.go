// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/store"
	"github.com/dizistars/dizistars/internal/validate"
)

const (
	// ResetTokenTTL is how long a password reset link stays valid.
	ResetTokenTTL = time.Hour
	resetTokenLen = 32
)

// DBOptions configures a DBAuthenticator. Guard, Events and Mailer are optional.
type DBOptions struct {
	Guard     Guard
	Events    *service.EventService
	Mailer    Mailer
	PublicURL string // base of reset links, e.g. https://dizistars.example
}

// DBAuthenticator authenticates against the users table.
type DBAuthenticator struct {
	db        *sql.DB
	queries   *store.Queries
	sessions  Sessions
	guard     Guard
	events    *service.EventService
	mailer    Mailer
	publicURL string
	now       func() time.Time
}

var _ Authenticator = (*DBAuthenticator)(nil)

// NewDBAuthenticator creates a DBAuthenticator.
func NewDBAuthenticator(db *sql.DB, sessions Sessions, opts DBOptions) *DBAuthenticator {
	mailer := opts.Mailer
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &DBAuthenticator{
		db:        db,
		queries:   store.New(db),
		sessions:  sessions,
		guard:     opts.Guard,
		events:    opts.Events,
		mailer:    mailer,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (a *DBAuthenticator) logAuth(ctx context.Context, level, msg string, userID *int64, meta map[string]any) {
	if a.events == nil {
		return
	}
	_ = a.events.LogAuthEvent(ctx, level, msg, userID, "", meta)
}

// Login checks the credentials, renews the session token and stores the
// user id in the session.
func (a *DBAuthenticator) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "Email and password are required.")
	}

	if a.guard != nil {
		if locked, remaining := a.guard.IsAccountLocked(email); locked {
			a.logAuth(ctx, model.EventLevelWarning, "Login attempt on locked account", nil, map[string]any{"email": email})
			return nil, &LockedError{Remaining: remaining}
		}
	}

	row, err := a.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loading user %s: %w", email, err)
		}
		slog.Debug("login attempt for non-existent user", "email", email)
		a.logAuth(ctx, model.EventLevelWarning, "Login failed: user not found", nil, map[string]any{"email": email})
		// Count unknown accounts too so lockout does not reveal which emails exist.
		return nil, failedLogin(a.guard, email)
	}

	valid, err := CheckPassword(password, row.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", row.ID)
	}
	if !valid {
		a.logAuth(ctx, model.EventLevelWarning, "Login failed: invalid password", &row.ID, map[string]any{"email": email})
		ferr := failedLogin(a.guard, email)
		var locked *LockedError
		if errors.As(ferr, &locked) {
			a.logAuth(ctx, model.EventLevelWarning, "Account locked due to failed attempts", &row.ID,
				map[string]any{"email": email, "duration": locked.Remaining.String()})
		}
		return nil, ferr
	}

	if a.guard != nil {
		a.guard.RecordSuccessfulLogin(email)
	}

	if NeedsRehash(row.PasswordHash) {
		if newHash, err := HashPassword(password); err == nil {
			if err := a.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    a.now(),
				ID:           row.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", row.ID)
			}
		}
	}

	now := a.now()
	if err := a.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		ID:          row.ID,
	}); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", row.ID)
	}
	row.LastLoginAt = sql.NullTime{Time: now, Valid: true}

	if err := a.startSession(ctx, row.ID); err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", row.ID, "email", row.Email)
	a.logAuth(ctx, model.EventLevelInfo, "User logged in", &row.ID, map[string]any{"email": row.Email})
	return service.UserFromStore(row), nil
}

// startSession regenerates the session id to prevent fixation and stores the user.
func (a *DBAuthenticator) startSession(ctx context.Context, userID int64) error {
	if a.sessions == nil {
		return nil
	}
	if err := a.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	a.sessions.Put(ctx, SessionKeyUserID, userID)
	return nil
}

// Signup registers a regular user and signs them in.
func (a *DBAuthenticator) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := a.queries.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("user", in.Email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checking email %s: %w", in.Email, err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	now := a.now()
	row, err := a.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Name:         in.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, apperror.Conflict("user", in.Email)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := a.startSession(ctx, row.ID); err != nil {
		return nil, err
	}
	a.logAuth(ctx, model.EventLevelInfo, "User signed up", &row.ID, map[string]any{"email": row.Email})
	return service.UserFromStore(row), nil
}

// Logout destroys the session.
func (a *DBAuthenticator) Logout(ctx context.Context) error {
	if a.sessions == nil {
		return nil
	}
	if err := a.sessions.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// User loads an account by id.
func (a *DBAuthenticator) User(ctx context.Context, id int64) (*model.User, error) {
	row, err := a.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return service.UserFromStore(row), nil
}

// ResetPassword mails a single-use reset link. Unknown addresses succeed
// without sending anything.
func (a *DBAuthenticator) ResetPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return apperror.ValidationFailed("email", "Enter a valid email address.")
	}
	row, err := a.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("password reset for unknown email", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading user %s: %w", email, err)
	}

	token, hash, err := newResetToken()
	if err != nil {
		return err
	}
	now := a.now()
	if err := a.queries.CreatePasswordReset(ctx, store.CreatePasswordResetParams{
		UserID:    row.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	link := a.publicURL + "/reset-password/" + token
	if err := a.mailer.SendPasswordReset(ctx, row.Email, link); err != nil {
		return fmt.Errorf("sending reset link: %w", err)
	}
	a.logAuth(ctx, model.EventLevelInfo, "Password reset requested", &row.ID, map[string]any{"email": row.Email})
	return nil
}

// ConfirmPasswordReset sets a new password with a token from ResetPassword.
// A token works once and only before it expires.
func (a *DBAuthenticator) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := validate.Var(password, "required,min=8,max=128"); err != nil {
		return apperror.ValidationFailed("password", "Password must be at least 8 characters.")
	}
	reset, err := a.queries.GetPasswordResetByHash(ctx, hashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("loading reset token: %w", err)
	}
	now := a.now()
	if reset.UsedAt.Valid || !now.Before(reset.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := a.queries.WithTx(tx)
	n, err := qtx.MarkPasswordResetUsed(ctx, store.MarkPasswordResetUsedParams{
		UsedAt: sql.NullTime{Time: now, Valid: true},
		ID:     reset.ID,
	})
	if err != nil {
		return fmt.Errorf("claiming reset token: %w", err)
	}
	if n == 0 {
		return ErrResetTokenInvalid
	}
	if err := qtx.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    now,
		ID:           reset.UserID,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing password reset: %w", err)
	}

	a.logAuth(ctx, model.EventLevelInfo, "Password reset completed", &reset.UserID, nil)
	return nil
}

// newResetToken returns a random URL-safe token and the hash stored for it.
func newResetToken() (token, hash string, err error) {
	b := make([]byte, resetTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating reset token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(b)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
