// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/auth"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/validate"
)

const (
	redirectLogin = "/login"
	redirectHome  = "/"

	msgResetInvalid = "This password reset link is invalid or has expired."
)

// AuthHandler handles sign in, sign up, password reset and logout.
type AuthHandler struct {
	renderer *render.Renderer
	auth     auth.Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(renderer *render.Renderer, authenticator auth.Authenticator) *AuthHandler {
	return &AuthHandler{renderer: renderer, auth: authenticator}
}

// AuthFormData is shared by the auth pages.
type AuthFormData struct {
	Name   string
	Email  string
	Token  string
	Next   string
	Error  string
	Errors map[string]string
}

func (h *AuthHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, name, title string, data AuthFormData) {
	err := h.renderer.RenderStatus(w, r, status, name, render.TemplateData{Title: title, Data: data})
	if err != nil {
		logAndInternalError(w, "render error", "template", name, "error", err)
	}
}

// redirectSignedIn sends an already signed-in user away from the auth pages.
func redirectSignedIn(w http.ResponseWriter, r *http.Request) bool {
	if user := middleware.GetUser(r); user != nil {
		http.Redirect(w, r, auth.RedirectAfterLogin(user), http.StatusSeeOther)
		return true
	}
	return false
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	h.renderForm(w, r, http.StatusOK, "auth/login", "Sign in", AuthFormData{Next: r.URL.Query().Get("next")})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	data := AuthFormData{
		Email: auth.NormalizeEmail(r.FormValue("email")),
		Next:  r.FormValue("next"),
	}
	password := r.FormValue("password")
	if data.Email == "" || password == "" {
		data.Error = "Email and password are required."
		h.renderForm(w, r, http.StatusUnprocessableEntity, "auth/login", "Sign in", data)
		return
	}

	user, err := h.auth.Login(r.Context(), data.Email, password)
	if err != nil {
		var locked *auth.LockedError
		var warning *auth.AttemptsWarningError
		status := http.StatusUnauthorized
		switch {
		case errors.As(err, &locked):
			status = http.StatusTooManyRequests
			data.Error = "Too many failed attempts. Try again in " + auth.FormatDuration(locked.Remaining) + "."
		case errors.As(err, &warning):
			data.Error = "Invalid email or password. " + pluralAttempts(warning.Remaining) + " remaining before your account is locked."
		case errors.Is(err, auth.ErrInvalidCredentials):
			data.Error = "Invalid email or password."
		default:
			slog.Error("login failed", "email", data.Email, "error", err)
			status = http.StatusInternalServerError
			data.Error = "Sign in is unavailable right now. Please try again."
		}
		h.renderForm(w, r, status, "auth/login", "Sign in", data)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	h.renderer.SetFlash(r, "Welcome back, "+user.Name+"!", render.FlashSuccess)
	dest := auth.RedirectAfterLogin(user)
	if isLocalPath(data.Next) {
		dest = data.Next
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func pluralAttempts(n int) string {
	if n == 1 {
		return "1 attempt"
	}
	return strconv.Itoa(n) + " attempts"
}

// SignupForm renders the registration page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	h.renderForm(w, r, http.StatusOK, "auth/signup", "Create account", AuthFormData{})
}

// Signup registers an account. The form is validated before the
// authenticator is called, so mismatched passwords never reach it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/signup") {
		return
	}

	in := auth.SignupInput{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	data := func(err error) AuthFormData {
		return AuthFormData{
			Name:   in.Name,
			Email:  in.Email,
			Error:  apperror.Message(err, "Could not create your account."),
			Errors: apperror.FieldErrors(err),
		}
	}

	if err := in.Validate(); err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, "auth/signup", "Create account", data(err))
		return
	}

	user, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		status := apperror.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("signup failed", "email", in.Email, "error", err)
		}
		if errors.Is(err, apperror.ErrConflict) {
			err = &apperror.AppError{Err: apperror.ErrConflict, Message: "An account with this email already exists.", Field: "email"}
		}
		h.renderForm(w, r, status, "auth/signup", "Create account", data(err))
		return
	}

	slog.Info("user signed up", "user_id", user.ID)
	flashSuccess(w, r, h.renderer, redirectHome, "Welcome to DiziStars, "+user.Name+"!")
}

// ForgotPasswordForm renders the reset request page.
func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "auth/forgot_password", "Reset password", AuthFormData{})
}

// ForgotPassword sends a reset link. The answer is the same whether or not
// the address is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/forgot-password") {
		return
	}
	email := auth.NormalizeEmail(r.FormValue("email"))
	if err := validate.Var(email, "required,email"); err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, "auth/forgot_password", "Reset password", AuthFormData{
			Email:  email,
			Errors: map[string]string{"email": "Enter a valid email address."},
		})
		return
	}
	if err := h.auth.ResetPassword(r.Context(), email); err != nil {
		slog.Error("password reset request failed", "email", email, "error", err)
	}
	flashAndRedirect(w, r, h.renderer, redirectLogin,
		"If an account exists for "+email+", a reset link is on its way.", render.FlashInfo)
}

// ResetPasswordForm renders /reset-password/{token}.
func (h *AuthHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		flashError(w, r, h.renderer, "/forgot-password", msgResetInvalid)
		return
	}
	h.renderForm(w, r, http.StatusOK, "auth/reset_password", "Choose a new password", AuthFormData{Token: token})
}

type resetForm struct {
	Password        string `form:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// ResetPassword sets the new password of a reset link.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/forgot-password") {
		return
	}
	token := chi.URLParam(r, "token")
	if token == "" {
		token = r.FormValue("token")
	}
	form := resetForm{Password: r.FormValue("password"), ConfirmPassword: r.FormValue("confirm_password")}
	if err := validate.Struct(&form); err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, "auth/reset_password", "Choose a new password", AuthFormData{
			Token:  token,
			Error:  apperror.Message(err, "Check the form and try again."),
			Errors: apperror.FieldErrors(err),
		})
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), token, form.Password); err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			flashError(w, r, h.renderer, "/forgot-password", msgResetInvalid)
			return
		}
		slog.Error("password reset failed", "error", err)
		flashError(w, r, h.renderer, "/forgot-password", "Could not reset your password. Please try again.")
		return
	}
	flashSuccess(w, r, h.renderer, redirectLogin, "Your password has been changed. You can sign in now.")
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := h.auth.Logout(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectHome, "You have been signed out.", render.FlashInfo)
}
