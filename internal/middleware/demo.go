// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// DemoRestriction names an admin action that is disabled on public demo
// deployments (DIZI_DEMO_MODE=true).
type DemoRestriction string

// Demo mode restrictions.
const (
	RestrictionDeleteStar    DemoRestriction = "delete_star"
	RestrictionDeleteNews    DemoRestriction = "delete_news"
	RestrictionDeleteComment DemoRestriction = "delete_comment"
	RestrictionChangeRole    DemoRestriction = "change_role"
	RestrictionRunJobs       DemoRestriction = "run_jobs"
	RestrictionLargeUpload   DemoRestriction = "large_upload"
)

// DemoModeMessage is the message shown when an action is blocked.
const DemoModeMessage = "This action is disabled in demo mode"

// DemoUploadMaxSize is the upload limit in demo mode (2MB).
const DemoUploadMaxSize = 2 << 20

const demoCookie = "demo_blocked"

var demoMessages = map[DemoRestriction]string{
	RestrictionDeleteStar:    "Deleting stars is disabled in demo mode",
	RestrictionDeleteNews:    "Deleting news is disabled in demo mode",
	RestrictionDeleteComment: "Deleting comments is disabled in demo mode",
	RestrictionChangeRole:    "Changing user roles is disabled in demo mode",
	RestrictionRunJobs:       "Running scheduled jobs is disabled in demo mode",
	RestrictionLargeUpload:   "Large file uploads are disabled in demo mode (max 2MB)",
}

// DemoModeMessageDetailed returns the message for a restriction.
func DemoModeMessageDetailed(restriction DemoRestriction) string {
	if msg, ok := demoMessages[restriction]; ok {
		return msg
	}
	return DemoModeMessage
}

// Demo blocks restricted admin writes when enabled.
type Demo struct {
	Enabled bool
}

// Block rejects every non-GET request to the wrapped routes.
func (d Demo) Block(restriction DemoRestriction) func(http.Handler) http.Handler {
	return d.block(restriction, func(r *http.Request) bool {
		return r.Method != http.MethodGet && r.Method != http.MethodHead
	})
}

// BlockDelete rejects DELETE requests and POSTs to .../delete.
func (d Demo) BlockDelete(restriction DemoRestriction) func(http.Handler) http.Handler {
	return d.block(restriction, func(r *http.Request) bool {
		return r.Method == http.MethodDelete ||
			(r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/delete"))
	})
}

func (d Demo) block(restriction DemoRestriction, match func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !d.Enabled || !match(r) {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, DemoModeMessageDetailed(restriction), http.StatusForbidden)
				return
			}

			// The handler that renders the next page turns the cookie into a flash.
			http.SetCookie(w, &http.Cookie{
				Name:     demoCookie,
				Value:    string(restriction),
				Path:     "/",
				MaxAge:   5,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})

			referer := r.Header.Get("Referer")
			if referer == "" {
				referer = "/admin"
			}
			http.Redirect(w, r, referer, http.StatusSeeOther)
		})
	}
}

// UploadTooLarge reports whether r exceeds the demo upload limit.
func (d Demo) UploadTooLarge(r *http.Request) bool {
	return d.Enabled && r.ContentLength > DemoUploadMaxSize
}

// DemoBlockedMessage reads and clears the demo cookie, returning the
// restriction message if present.
func DemoBlockedMessage(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(demoCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     demoCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return DemoModeMessageDetailed(DemoRestriction(cookie.Value))
}
