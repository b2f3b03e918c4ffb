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
	"github.com/dizistars/dizistars/internal/render"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndInternalError logs an error and writes a plain 500 response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// renderPage renders a page and falls back to a plain 500 when the template fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.TemplateData) {
	if err := renderer.Render(w, r, name, data); err != nil {
		logAndInternalError(w, "render error", "template", name, "error", err)
	}
}

// errorPageData is shown by pages/error.
type errorPageData struct {
	Status  int
	Heading string
	Message string
}

// renderError renders the error page with status.
func renderError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, heading, message string) {
	err := renderer.RenderStatus(w, r, status, "pages/error", render.TemplateData{
		Title: heading,
		Data:  errorPageData{Status: status, Heading: heading, Message: message},
	})
	if err != nil {
		slog.Error("render error page failed", "status", status, "error", err)
		http.Error(w, http.StatusText(status), status)
	}
}

// notFoundPage renders the 404 page.
func notFoundPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, what string) {
	renderError(w, r, renderer, http.StatusNotFound, what+" not found",
		"The page you are looking for does not exist or has been removed.")
}

// handleLoadError renders the page matching a data layer error: 404 for
// missing rows, 403 for denied access, 500 (logged) for everything else.
func handleLoadError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, what string, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		notFoundPage(w, r, renderer, what)
	case errors.Is(err, apperror.ErrForbidden):
		renderError(w, r, renderer, http.StatusForbidden, "Access denied", apperror.Message(err, "You cannot view this page."))
	default:
		slog.Error("loading "+what+" failed", "path", r.URL.Path, "error", err)
		renderError(w, r, renderer, http.StatusInternalServerError, "Something went wrong",
			"We could not load this page. Please try again in a moment.")
	}
}

// flashServiceError redirects to url with the user-facing message of err.
// Unexpected errors are logged and replaced by a generic message.
func flashServiceError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, action string, err error) {
	if apperror.HTTPStatus(err) == http.StatusInternalServerError {
		slog.Error(action+" failed", "path", r.URL.Path, "error", err)
		flashError(w, r, renderer, url, "Could not "+action+". Please try again.")
		return
	}
	flashError(w, r, renderer, url, apperror.Message(err, "Could not "+action+"."))
}

// int64Param parses a positive integer URL parameter.
func int64Param(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// backTo returns the form's next field when it is a local path, else fallback.
func backTo(r *http.Request, fallback string) string {
	if next := r.FormValue("next"); isLocalPath(next) {
		return next
	}
	return fallback
}

// isLocalPath reports whether p is a same-site absolute path.
func isLocalPath(p string) bool {
	return len(p) > 0 && p[0] == '/' && (len(p) == 1 || (p[1] != '/' && p[1] != '\\'))
}

// NotFound renders the 404 page for unmatched routes.
func NotFound(renderer *render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notFoundPage(w, r, renderer, "Page")
	}
}
