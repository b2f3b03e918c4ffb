// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/auth"
	"github.com/dizistars/dizistars/internal/model"
)

// fakeAuth records calls and answers with the configured errors.
type fakeAuth struct {
	user *model.User

	loginErr  error
	signupErr error
	resetErr  error

	loginCalls   int
	signupCalls  int
	resetEmails  []string
	resetTokens  []string
	logoutCalled bool
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (*model.User, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.user, nil
}

func (f *fakeAuth) Signup(_ context.Context, in auth.SignupInput) (*model.User, error) {
	f.signupCalls++
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &model.User{ID: 7, Name: in.Name, Email: in.Email, Role: model.RoleUser}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return nil
}

func (f *fakeAuth) ResetPassword(_ context.Context, email string) error {
	f.resetEmails = append(f.resetEmails, email)
	return nil
}

func (f *fakeAuth) ConfirmPasswordReset(_ context.Context, token, _ string) error {
	f.resetTokens = append(f.resetTokens, token)
	return f.resetErr
}

func (f *fakeAuth) User(context.Context, int64) (*model.User, error) {
	return f.user, nil
}

func TestSignupPasswordMismatchNeverReachesAuthenticator(t *testing.T) {
	renderer, sm := testRenderer(t)
	fa := &fakeAuth{}
	h := NewAuthHandler(renderer, fa)

	w := serve(t, sm, http.MethodPost, "/signup", "/signup", url.Values{
		"name":             {"Ayşe"},
		"email":            {"ayse@example.com"},
		"password":         {"supersecret"},
		"confirm_password": {"different1"},
	}, nil, h.Signup)

	assertStatus(t, w, http.StatusUnprocessableEntity)
	assertBodyContains(t, w, "Passwords do not match.")
	if fa.signupCalls != 0 {
		t.Errorf("authenticator called %d times, want 0", fa.signupCalls)
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		signupErr  error
		wantStatus int
		wantCalls  int
		wantBody   string
	}{
		{
			name: "success",
			form: url.Values{
				"name": {"Ayşe"}, "email": {"Ayse@Example.com"},
				"password": {"supersecret"}, "confirm_password": {"supersecret"},
			},
			wantStatus: http.StatusSeeOther,
			wantCalls:  1,
		},
		{
			name: "invalid email",
			form: url.Values{
				"name": {"Ayşe"}, "email": {"not-an-email"},
				"password": {"supersecret"}, "confirm_password": {"supersecret"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCalls:  0,
		},
		{
			name: "short password",
			form: url.Values{
				"name": {"Ayşe"}, "email": {"ayse@example.com"},
				"password": {"short"}, "confirm_password": {"short"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCalls:  0,
		},
		{
			name: "duplicate email",
			form: url.Values{
				"name": {"Ayşe"}, "email": {"ayse@example.com"},
				"password": {"supersecret"}, "confirm_password": {"supersecret"},
			},
			signupErr:  apperror.Conflict("user", "ayse@example.com"),
			wantStatus: http.StatusConflict,
			wantCalls:  1,
			wantBody:   "An account with this email already exists.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, sm := testRenderer(t)
			fa := &fakeAuth{signupErr: tt.signupErr}
			h := NewAuthHandler(renderer, fa)

			w := serve(t, sm, http.MethodPost, "/signup", "/signup", tt.form, nil, h.Signup)

			assertStatus(t, w, tt.wantStatus)
			if fa.signupCalls != tt.wantCalls {
				t.Errorf("signup calls = %d, want %d", fa.signupCalls, tt.wantCalls)
			}
			if tt.wantBody != "" {
				assertBodyContains(t, w, tt.wantBody)
			}
		})
	}
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password."},
		{"attempts warning", &auth.AttemptsWarningError{Remaining: 2}, http.StatusUnauthorized, "2 attempts remaining"},
		{"last attempt", &auth.AttemptsWarningError{Remaining: 1}, http.StatusUnauthorized, "1 attempt remaining"},
		{"locked", &auth.LockedError{Remaining: 5 * time.Minute}, http.StatusTooManyRequests, "Try again in 5 minutes."},
		{"store down", errors.New("database is locked"), http.StatusInternalServerError, "Sign in is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, sm := testRenderer(t)
			h := NewAuthHandler(renderer, &fakeAuth{loginErr: tt.err})

			w := serve(t, sm, http.MethodPost, "/login", "/login", url.Values{
				"email": {"user@example.com"}, "password": {"whatever1"},
			}, nil, h.Login)

			assertStatus(t, w, tt.wantStatus)
			assertBodyContains(t, w, tt.wantBody)
		})
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	renderer, sm := testRenderer(t)
	fa := &fakeAuth{}
	h := NewAuthHandler(renderer, fa)

	w := serve(t, sm, http.MethodPost, "/login", "/login", url.Values{"email": {"user@example.com"}}, nil, h.Login)

	assertStatus(t, w, http.StatusUnprocessableEntity)
	if fa.loginCalls != 0 {
		t.Errorf("login calls = %d, want 0", fa.loginCalls)
	}
}

func TestLoginRedirects(t *testing.T) {
	tests := []struct {
		name string
		role string
		next string
		want string
	}{
		{"fan goes home", model.RoleUser, "", "/"},
		{"editor goes to admin", model.RoleEditor, "", "/admin"},
		{"local next wins", model.RoleUser, "/stars/1", "/stars/1"},
		{"external next ignored", model.RoleUser, "//evil.example.com", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, sm := testRenderer(t)
			h := NewAuthHandler(renderer, &fakeAuth{user: &model.User{ID: 1, Name: "Ayşe", Role: tt.role}})

			w := serve(t, sm, http.MethodPost, "/login", "/login", url.Values{
				"email": {"user@example.com"}, "password": {"whatever1"}, "next": {tt.next},
			}, nil, h.Login)

			assertRedirect(t, w, tt.want)
		})
	}
}

func TestSignedInUserSkipsLoginForm(t *testing.T) {
	renderer, sm := testRenderer(t)
	h := NewAuthHandler(renderer, &fakeAuth{})

	w := serve(t, sm, http.MethodGet, "/login", "/login", nil, &model.User{ID: 1, Role: model.RoleAdmin}, h.LoginForm)

	assertRedirect(t, w, "/admin")
}

func TestForgotPasswordSameAnswerForAnyEmail(t *testing.T) {
	renderer, sm := testRenderer(t)
	fa := &fakeAuth{}
	h := NewAuthHandler(renderer, fa)

	w := serve(t, sm, http.MethodPost, "/forgot-password", "/forgot-password",
		url.Values{"email": {" Nobody@Example.com "}}, nil, h.ForgotPassword)
	assertRedirect(t, w, "/login")
	if len(fa.resetEmails) != 1 || fa.resetEmails[0] != "nobody@example.com" {
		t.Errorf("reset emails = %v, want [nobody@example.com]", fa.resetEmails)
	}

	w = serve(t, sm, http.MethodPost, "/forgot-password", "/forgot-password",
		url.Values{"email": {"nope"}}, nil, h.ForgotPassword)
	assertStatus(t, w, http.StatusUnprocessableEntity)
	if len(fa.resetEmails) != 1 {
		t.Errorf("invalid email reached the authenticator")
	}
}

func TestResetPassword(t *testing.T) {
	t.Run("mismatch is rejected before the token is used", func(t *testing.T) {
		renderer, sm := testRenderer(t)
		fa := &fakeAuth{}
		h := NewAuthHandler(renderer, fa)

		w := serve(t, sm, http.MethodPost, "/reset-password/{token}", "/reset-password/abc", url.Values{
			"password": {"newsecret1"}, "confirm_password": {"newsecret2"},
		}, nil, h.ResetPassword)

		assertStatus(t, w, http.StatusUnprocessableEntity)
		if len(fa.resetTokens) != 0 {
			t.Errorf("token used %d times, want 0", len(fa.resetTokens))
		}
	})

	t.Run("expired token", func(t *testing.T) {
		renderer, sm := testRenderer(t)
		h := NewAuthHandler(renderer, &fakeAuth{resetErr: auth.ErrResetTokenInvalid})

		w := serve(t, sm, http.MethodPost, "/reset-password/{token}", "/reset-password/abc", url.Values{
			"password": {"newsecret1"}, "confirm_password": {"newsecret1"},
		}, nil, h.ResetPassword)

		assertRedirect(t, w, "/forgot-password")
	})

	t.Run("success", func(t *testing.T) {
		renderer, sm := testRenderer(t)
		fa := &fakeAuth{}
		h := NewAuthHandler(renderer, fa)

		w := serve(t, sm, http.MethodPost, "/reset-password/{token}", "/reset-password/abc", url.Values{
			"password": {"newsecret1"}, "confirm_password": {"newsecret1"},
		}, nil, h.ResetPassword)

		assertRedirect(t, w, "/login")
		if len(fa.resetTokens) != 1 || fa.resetTokens[0] != "abc" {
			t.Errorf("reset tokens = %v, want [abc]", fa.resetTokens)
		}
	})
}

func TestLogout(t *testing.T) {
	renderer, sm := testRenderer(t)
	fa := &fakeAuth{}
	h := NewAuthHandler(renderer, fa)

	w := serve(t, sm, http.MethodPost, "/logout", "/logout", url.Values{}, &model.User{ID: 3}, h.Logout)

	assertRedirect(t, w, "/")
	if !fa.logoutCalled {
		t.Error("Logout was not called")
	}
}
