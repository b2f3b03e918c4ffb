// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/auth"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
)

func requestAs(user *model.User, method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if user != nil {
		req = req.WithContext(WithUser(req.Context(), user))
	}
	return req
}

func TestGetUser(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user := GetUser(req); user != nil {
			t.Errorf("GetUser() = %v, want nil", user)
		}
		if id := GetUserID(req); id != 0 {
			t.Errorf("GetUserID() = %d, want 0", id)
		}
		if p := GetUserIDPtr(req); p != nil {
			t.Errorf("GetUserIDPtr() = %v, want nil", p)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := requestAs(&model.User{ID: 123, Email: "test@example.com", Role: model.RoleAdmin}, http.MethodGet, "/")

		user := GetUser(req)
		if user == nil {
			t.Fatal("GetUser() = nil, want user")
		}
		if user.Email != "test@example.com" {
			t.Errorf("GetUser().Email = %q", user.Email)
		}
		if id := GetUserID(req); id != 123 {
			t.Errorf("GetUserID() = %d, want 123", id)
		}
		if p := GetUserIDPtr(req); p == nil || *p != 123 {
			t.Errorf("GetUserIDPtr() = %v, want 123", p)
		}
	})
}

func TestRoleLevel(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, 2},
		{model.RoleEditor, 1},
		{model.RoleUser, 0},
		{"Admin", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := roleLevel(tt.role); got != tt.want {
			t.Errorf("roleLevel(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(simpleOKHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestAs(nil, http.MethodGet, "/profile?tab=favorites"))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("anonymous status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login?next=%2Fprofile%3Ftab%3Dfavorites" {
		t.Errorf("Location = %q", loc)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, requestAs(&model.User{ID: 1, Role: model.RoleUser}, http.MethodGet, "/profile"))
	if rr.Code != http.StatusOK {
		t.Errorf("signed-in status = %d, want 200", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		minRole  string
		user     *model.User
		wantCode int
	}{
		{"admin passes admin", model.RoleAdmin, &model.User{ID: 1, Role: model.RoleAdmin}, http.StatusOK},
		{"editor blocked from admin", model.RoleAdmin, &model.User{ID: 2, Role: model.RoleEditor}, http.StatusForbidden},
		{"user blocked from admin", model.RoleAdmin, &model.User{ID: 3, Role: model.RoleUser}, http.StatusForbidden},
		{"admin passes editor", model.RoleEditor, &model.User{ID: 1, Role: model.RoleAdmin}, http.StatusOK},
		{"editor passes editor", model.RoleEditor, &model.User{ID: 2, Role: model.RoleEditor}, http.StatusOK},
		{"user blocked from editor", model.RoleEditor, &model.User{ID: 3, Role: model.RoleUser}, http.StatusForbidden},
		{"anonymous redirected", model.RoleEditor, nil, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireRole(tt.minRole, nil)(simpleOKHandler)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, requestAs(tt.user, http.MethodPost, "/admin/stars"))

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusForbidden && !strings.Contains(rr.Body.String(), "insufficient permissions") {
				t.Errorf("body = %q", rr.Body.String())
			}
		})
	}
}

func TestRequireAdminAndEditor(t *testing.T) {
	editor := &model.User{ID: 2, Role: model.RoleEditor}

	rr := httptest.NewRecorder()
	RequireEditor(nil)(simpleOKHandler).ServeHTTP(rr, requestAs(editor, http.MethodGet, "/admin"))
	if rr.Code != http.StatusOK {
		t.Errorf("RequireEditor status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	RequireAdmin(nil)(simpleOKHandler).ServeHTTP(rr, requestAs(editor, http.MethodGet, "/admin/users"))
	if rr.Code != http.StatusForbidden {
		t.Errorf("RequireAdmin status = %d, want 403", rr.Code)
	}
}

func TestRequestMeta(t *testing.T) {
	var got service.RequestMeta
	h := RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = service.RequestMetaFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.9:4444"
	req.Header.Set("User-Agent", "test-agent")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.IP != "203.0.113.9" || got.UserAgent != "test-agent" || got.URL != "/login" {
		t.Errorf("RequestMeta = %+v", got)
	}
}

type fakeUsers map[int64]*model.User

func (f fakeUsers) User(_ context.Context, id int64) (*model.User, error) {
	if id == 99 {
		return nil, errors.New("database is locked")
	}
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

// sessionCookie returns a session cookie holding userID.
func sessionCookie(t *testing.T, sm *scs.SessionManager, userID int64) *http.Cookie {
	t.Helper()
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), auth.SessionKeyUserID, userID)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestLoadUser(t *testing.T) {
	sm := scs.New()
	sm.Store = memstore.New()
	users := fakeUsers{1: {ID: 1, Name: "Admin", Role: model.RoleAdmin}}

	var seen *model.User
	h := sm.LoadAndSave(LoadUser(sm, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
	})))

	serve := func(c *http.Cookie) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c != nil {
			req.AddCookie(c)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	serve(nil)
	if seen != nil {
		t.Errorf("anonymous request loaded %v", seen)
	}

	serve(sessionCookie(t, sm, 1))
	if seen == nil || seen.ID != 1 {
		t.Errorf("loaded user = %v, want id 1", seen)
	}

	serve(sessionCookie(t, sm, 42))
	if seen != nil {
		t.Errorf("missing user loaded %v", seen)
	}

	serve(sessionCookie(t, sm, 99))
	if seen != nil {
		t.Errorf("failing lookup loaded %v", seen)
	}
}
