// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dizistars/dizistars/internal/i18n"
)

// ContextKeyLanguage holds the UI language code of the request.
const ContextKeyLanguage ContextKey = "language"

// LanguageCookieName is the cookie remembering an explicit ?lang= switch.
const LanguageCookieName = "dizi_lang"

// LanguagePreferences returns a signed-in user's saved UI language.
type LanguagePreferences interface {
	Language(ctx context.Context, userID int64) (string, error)
}

// Language picks the UI language of the request. Priority order:
//  1. ?lang=XX (explicit switch, also stored in a cookie)
//  2. the signed-in user's saved preference
//  3. the language cookie
//  4. Accept-Language
//  5. Turkish
//
// It must run after LoadUser.
func Language(prefs LanguagePreferences) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := detectLanguage(w, r, prefs)
			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLanguage(w http.ResponseWriter, r *http.Request, prefs LanguagePreferences) string {
	if q := strings.ToLower(r.URL.Query().Get("lang")); i18n.IsSupported(q) {
		http.SetCookie(w, &http.Cookie{
			Name:     LanguageCookieName,
			Value:    q,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return q
	}

	if user := GetUser(r); user != nil && prefs != nil {
		lang, err := prefs.Language(r.Context(), user.ID)
		if err != nil {
			slog.Warn("loading language preference failed", "user_id", user.ID, "error", err)
		} else if i18n.IsSupported(lang) {
			return lang
		}
	}

	if c, err := r.Cookie(LanguageCookieName); err == nil && i18n.IsSupported(c.Value) {
		return strings.ToLower(c.Value)
	}

	return i18n.MatchLanguage(r.Header.Get("Accept-Language"))
}

// GetLanguage returns the UI language of the request, Turkish when the
// Language middleware did not run.
func GetLanguage(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}
