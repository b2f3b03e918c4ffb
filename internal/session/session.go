// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Cookie names. The __Host- prefix requires Secure and Path=/, so it is
// only used in production.
const (
	CookieName    = "__Host-dizistars"
	DevCookieName = "dizistars_session"
)

// Lifetime and idle timeout of a session.
const (
	Lifetime    = 7 * 24 * time.Hour
	IdleTimeout = 24 * time.Hour
)

// New creates a session manager storing sessions in the sessions table of db.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, 30*time.Minute)

	sm.Lifetime = Lifetime
	sm.IdleTimeout = IdleTimeout
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = true

	if isDev {
		sm.Cookie.Name = DevCookieName
		sm.Cookie.Secure = false
	} else {
		sm.Cookie.Name = CookieName
		sm.Cookie.Secure = true
	}

	return sm
}
