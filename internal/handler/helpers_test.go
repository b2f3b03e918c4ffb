// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/features"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/testutil"
)

// testPages are the page templates the handlers render. Each one prints the
// page data as (HTML-escaped) JSON so tests can look for values in the body.
var testPages = []string{
	"pages/error", "pages/home", "pages/stars", "pages/star", "pages/star_news",
	"pages/news", "pages/news_detail", "pages/profile",
	"auth/login", "auth/signup", "auth/forgot_password", "auth/reset_password",
	"admin/dashboard", "admin/star_form", "admin/news_form", "admin/jobs", "admin/events",
}

// testRenderer returns a renderer over stub templates and the session
// manager its flashes go to.
func testRenderer(t *testing.T) (*render.Renderer, *scs.SessionManager) {
	t.Helper()
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{.Title}}</title><p class="flash-{{.FlashType}}">{{.Flash}}</p>{{block "main" .}}{{end}}{{end}}`)},
		"layouts/admin.html": {Data: []byte(`{{define "admin-nav"}}{{end}}`)},
		"partials/noop.html": {Data: []byte(`{{define "noop"}}{{end}}`)},
	}
	for _, name := range testPages {
		fsys[name+".html"] = &fstest.MapFile{Data: []byte(`{{define "main"}}` + name + `: {{toJSON .Data}}{{end}}`)}
	}

	sm := scs.New()
	sm.Store = memstore.New()
	r, err := render.New(render.Config{TemplatesFS: fsys, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r, sm
}

// newRequest builds a request, form-encoded when form is non-nil and
// signed in as user when user is non-nil.
func newRequest(method, target string, form url.Values, user *model.User) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

// serveRequest runs h for req behind the session middleware, mounted at
// the chi route pattern.
func serveRequest(sm *scs.SessionManager, pattern string, req *http.Request, h http.HandlerFunc) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(sm.LoadAndSave)
	router.MethodFunc(req.Method, pattern, h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// serve is newRequest followed by serveRequest.
func serve(t *testing.T, sm *scs.SessionManager, method, pattern, target string, form url.Values, user *model.User, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	return serveRequest(sm, pattern, newRequest(method, target, form, user), h)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	assertStatus(t, w, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func assertBodyContains(t *testing.T, w *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range want {
		if !strings.Contains(body, s) {
			t.Errorf("body does not contain %q; body: %s", s, body)
		}
	}
}

// services bundles the real services over a migrated test database.
type services struct {
	db       *sql.DB
	stars    *service.StarService
	news     *service.NewsService
	users    *service.UserService
	comments *service.CommentService
	events   *service.EventService
	notifier *service.NotificationService
	features *features.Service
}

func newServices(t *testing.T) *services {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	images := service.ImagePolicy{StorageBase: "http://localhost:8080"}
	notifier := service.NewNotificationService(db)
	s := &services{
		db:       db,
		stars:    service.NewStarService(db, c, images),
		news:     service.NewNewsService(db, c, images, notifier),
		users:    service.NewUserService(db),
		comments: service.NewCommentService(db, notifier),
		events:   service.NewEventService(db),
		notifier: notifier,
	}
	s.features = features.New(features.Backend{
		Favorites:     service.NewFavoriteService(db),
		Notifications: notifier,
		Preferences:   service.NewPreferenceService(db),
		Comments:      s.comments,
	}, c)
	notifier.OnCreate(s.features.Invalidate)
	return s
}

func (s *services) user(t *testing.T, email, role string) *model.User {
	t.Helper()
	return service.UserFromStore(testutil.CreateUser(t, s.db, email, role))
}

func (s *services) star(t *testing.T, name string, typ model.StarType) *model.Star {
	t.Helper()
	st, err := s.stars.CreateStar(context.Background(), service.StarInput{FullName: name, StarType: typ})
	if err != nil {
		t.Fatalf("CreateStar(%s): %v", name, err)
	}
	return st
}

func (s *services) article(t *testing.T, authorID int64, title string, status model.NewsStatus, starID *int64) *model.News {
	t.Helper()
	n, err := s.news.CreateNews(context.Background(), authorID, service.NewsInput{
		Title:   title,
		Content: "Set haberleri burada.",
		Status:  status,
		StarID:  starID,
	})
	if err != nil {
		t.Fatalf("CreateNews(%s): %v", title, err)
	}
	return n
}
