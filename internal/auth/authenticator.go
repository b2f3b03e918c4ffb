// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/validate"
)

// SessionKeyUserID is the session key holding the signed-in user id.
const SessionKeyUserID = "user_id"

// Errors returned by authenticators.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetTokenInvalid  = errors.New("password reset link is invalid or has expired")
)

// LockedError means the account is temporarily locked after repeated failures.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return "too many failed attempts, try again in " + FormatDuration(e.Remaining)
}

// AttemptsWarningError is a failed login close to the lockout threshold.
type AttemptsWarningError struct {
	Remaining int
}

func (e *AttemptsWarningError) Error() string {
	return fmt.Sprintf("invalid email or password, %d attempts remaining", e.Remaining)
}

func (e *AttemptsWarningError) Unwrap() error { return ErrInvalidCredentials }

// SignupInput is the registration form.
type SignupInput struct {
	Name            string `form:"name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// Validate normalizes and checks the form. A password mismatch reports
// "Passwords do not match." on confirm_password.
func (in *SignupInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	return validate.Struct(in)
}

// Authenticator signs users in and out and manages their passwords.
// ctx must carry the request session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
	// User loads the account behind a session user id.
	User(ctx context.Context, id int64) (*model.User, error)
}

// Sessions is the part of the session manager authenticators use.
// *scs.SessionManager satisfies it.
type Sessions interface {
	RenewToken(ctx context.Context) error
	Put(ctx context.Context, key string, val any)
	Destroy(ctx context.Context) error
}

// Guard tracks failed logins per account. middleware.LoginProtection
// satisfies it.
type Guard interface {
	IsAccountLocked(email string) (bool, time.Duration)
	RecordFailedAttempt(email string) (bool, time.Duration)
	RecordSuccessfulLogin(email string)
	GetRemainingAttempts(email string) int
}

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// LogMailer writes reset links to the log instead of sending mail.
type LogMailer struct{}

// SendPasswordReset logs the link.
func (LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	slog.Info("password reset link", "email", to, "link", link)
	return nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RedirectAfterLogin returns where a user lands after signing in.
func RedirectAfterLogin(u *model.User) string {
	if u != nil && u.CanModerate() {
		return "/admin"
	}
	return "/"
}

// FormatDuration formats a duration into a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

// failedLogin records a failed attempt for email and returns the error to show.
func failedLogin(g Guard, email string) error {
	if g == nil {
		return ErrInvalidCredentials
	}
	if locked, d := g.RecordFailedAttempt(email); locked {
		return &LockedError{Remaining: d}
	}
	if remaining := g.GetRemainingAttempts(email); remaining > 0 && remaining <= 3 {
		return &AttemptsWarningError{Remaining: remaining}
	}
	return ErrInvalidCredentials
}
