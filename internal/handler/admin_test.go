// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dizistars/dizistars/internal/imaging"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/scheduler"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/storage"
	"github.com/dizistars/dizistars/internal/upload"
)

const testStorageBase = "http://localhost:8080"

func testUploader(t *testing.T) *upload.Uploader {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), testStorageBase)
	if err != nil {
		t.Fatalf("storage.NewLocal: %v", err)
	}
	return upload.New(store, imaging.NewProcessor(85), service.ImagePolicy{StorageBase: testStorageBase}, 1)
}

func TestDashboardTabsByRole(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewAdminHandler(renderer, svc.stars, svc.news, svc.users, svc.comments, svc.events)
	admin := svc.user(t, "admin@example.com", model.RoleAdmin)
	editor := svc.user(t, "editor@example.com", model.RoleEditor)
	svc.star(t, "Hande Erçel", model.StarTypeActress)

	tests := []struct {
		name       string
		user       *model.User
		tab        string
		wantStatus int
		wantBody   string
	}{
		{"editor sees stars", editor, "stars", http.StatusOK, "Hande Erçel"},
		{"editor blocked from users", editor, "users", http.StatusForbidden, ""},
		{"admin sees users", admin, "users", http.StatusOK, "editor@example.com"},
		{"unknown tab falls back", editor, "bogus", http.StatusOK, "Tab&#34;:&#34;stars"},
		{"news tab", editor, "news", http.StatusOK, "NewsStatuses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, sm, http.MethodGet, "/admin", "/admin?tab="+tt.tab, nil, tt.user, h.Dashboard)
			assertStatus(t, w, tt.wantStatus)
			if tt.wantBody != "" {
				assertBodyContains(t, w, tt.wantBody)
			}
		})
	}
}

func TestVisibleTabs(t *testing.T) {
	editorTabs := visibleTabs(&model.User{Role: model.RoleEditor})
	for _, tab := range editorTabs {
		if tab == model.AdminTabUsers {
			t.Error("editor can see the users tab")
		}
	}
	if got := len(visibleTabs(&model.User{Role: model.RoleAdmin})); got != len(model.AdminTabs) {
		t.Errorf("admin tabs = %d, want %d", got, len(model.AdminTabs))
	}
}

func TestUpdateUserRole(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewAdminHandler(renderer, svc.stars, svc.news, svc.users, svc.comments, svc.events)
	admin := svc.user(t, "admin@example.com", model.RoleAdmin)
	fan := svc.user(t, "fan@example.com", model.RoleUser)
	ctx := context.Background()

	path := func(id int64) string { return "/admin/users/" + strconv.FormatInt(id, 10) + "/role" }

	w := serve(t, sm, http.MethodPost, "/admin/users/{id}/role", path(admin.ID), url.Values{"role": {"user"}}, admin, h.UpdateUserRole)
	assertRedirect(t, w, "/admin?tab=users")
	if u, err := svc.users.GetUserByID(ctx, admin.ID); err != nil || u.Role != model.RoleAdmin {
		t.Errorf("admin changed own role: %+v, %v", u, err)
	}

	w = serve(t, sm, http.MethodPost, "/admin/users/{id}/role", path(fan.ID), url.Values{"role": {"editor"}}, admin, h.UpdateUserRole)
	assertRedirect(t, w, "/admin?tab=users")
	u, err := svc.users.GetUserByID(ctx, fan.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Role != model.RoleEditor {
		t.Errorf("role = %q, want editor", u.Role)
	}

	events, err := svc.events.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) == 0 || events[0].Message != "User role changed" {
		t.Errorf("role change not logged: %+v", events)
	}

	w = serve(t, sm, http.MethodPost, "/admin/users/{id}/role", path(fan.ID), url.Values{"role": {"owner"}}, admin, h.UpdateUserRole)
	assertRedirect(t, w, "/admin?tab=users")
	if u, _ := svc.users.GetUserByID(ctx, fan.ID); u.Role != model.RoleEditor {
		t.Errorf("invalid role applied: %q", u.Role)
	}
}

func TestModerateComment(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewAdminHandler(renderer, svc.stars, svc.news, svc.users, svc.comments, svc.events)
	editor := svc.user(t, "editor@example.com", model.RoleEditor)
	fan := svc.user(t, "fan@example.com", model.RoleUser)
	st := svc.star(t, "Can Yaman", model.StarTypeActor)
	ref := model.CommentRef{Type: model.CommentTargetStar, ID: st.ID}
	ctx := context.Background()

	c, err := svc.comments.AddComment(ctx, fan, ref, "Çok iyi bir oyuncu")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.Status != model.CommentStatusPending {
		t.Fatalf("status = %q, want pending", c.Status)
	}

	target := "/admin/comments/" + strconv.FormatInt(c.ID, 10) + "/approve"
	w := serve(t, sm, http.MethodPost, "/admin/comments/{id}/approve", target, url.Values{}, editor, h.ApproveComment)
	assertRedirect(t, w, "/admin?tab=comments")

	approved, err := svc.comments.ListApprovedComments(ctx, ref)
	if err != nil {
		t.Fatalf("ListApprovedComments: %v", err)
	}
	if len(approved) != 1 {
		t.Fatalf("approved = %d, want 1", len(approved))
	}

	target = "/admin/comments/" + strconv.FormatInt(c.ID, 10) + "/delete"
	w = serve(t, sm, http.MethodPost, "/admin/comments/{id}/delete", target, url.Values{}, editor, h.DeleteComment)
	assertRedirect(t, w, "/admin?tab=comments")
	if _, err := svc.comments.GetComment(ctx, c.ID); err == nil {
		t.Error("comment still exists after delete")
	}
}

func TestAdminStarsCreate(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewAdminStarsHandler(renderer, svc.stars, svc.events, testUploader(t), middleware.Demo{})
	editor := svc.user(t, "editor@example.com", model.RoleEditor)

	w := serve(t, sm, http.MethodPost, "/admin/stars", "/admin/stars", url.Values{
		"full_name":   {"Kerem Bürsin"},
		"star_type":   {"actor"},
		"is_trending": {"on"},
	}, editor, h.Create)
	assertStatus(t, w, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); !strings.HasSuffix(loc, "/edit?tab=details") {
		t.Errorf("Location = %q, want the details tab", loc)
	}

	st, err := svc.stars.GetStarBySlug(context.Background(), "kerem-bursin")
	if err != nil {
		t.Fatalf("GetStarBySlug: %v", err)
	}
	if !st.IsTrending || st.IsFeatured {
		t.Errorf("flags = %+v", st)
	}

	w = serve(t, sm, http.MethodPost, "/admin/stars", "/admin/stars", url.Values{
		"full_name": {""},
		"star_type": {"director"},
	}, editor, h.Create)
	assertStatus(t, w, http.StatusUnprocessableEntity)
	assertBodyContains(t, w, "full_name")
}

func TestParseFilmography(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    []model.FilmographyEntry
		wantErr bool
	}{
		{
			name: "rows without title dropped",
			form: url.Values{
				"film_title":     {"Sen Çal Kapımı", " ", "Erkenci Kuş"},
				"film_role":      {"Eda Yıldız", "", "Sanem"},
				"film_year":      {"2020", "", ""},
				"film_streaming": {"Netflix"},
			},
			want: []model.FilmographyEntry{
				{Title: "Sen Çal Kapımı", Role: "Eda Yıldız", Year: 2020, StreamingOn: "Netflix"},
				{Title: "Erkenci Kuş", Role: "Sanem"},
			},
		},
		{
			name:    "year out of range",
			form:    url.Values{"film_title": {"Eski Film"}, "film_year": {"1850"}},
			wantErr: true,
		},
		{
			name:    "year not a number",
			form:    url.Values{"film_title": {"Film"}, "film_year": {"iki bin"}},
			wantErr: true,
		},
		{
			name: "empty",
			form: url.Values{},
			want: []model.FilmographyEntry{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			got, err := parseFilmography(r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseFilmography = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFilmography: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseFilmographyRowLimit(t *testing.T) {
	form := url.Values{}
	for i := 0; i <= maxFilmographyRows; i++ {
		form.Add("film_title", "Dizi "+strconv.Itoa(i))
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := r.ParseForm(); err != nil {
		t.Fatal(err)
	}
	if _, err := parseFilmography(r); err == nil {
		t.Error("expected an error above the row limit")
	}
}

func TestAdminNewsCreate(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewAdminNewsHandler(renderer, svc.news, svc.stars, svc.events, testUploader(t), middleware.Demo{}, time.UTC)
	editor := svc.user(t, "editor@example.com", model.RoleEditor)
	st := svc.star(t, "Hande Erçel", model.StarTypeActress)

	w := serve(t, sm, http.MethodPost, "/admin/news", "/admin/news", url.Values{
		"title":   {"Hande Erçel yeni projesini açıkladı"},
		"content": {"Ünlü oyuncu yeni dizisi için anlaşma imzaladı."},
		"status":  {"published"},
		"star_id": {strconv.FormatInt(st.ID, 10)},
	}, editor, h.Create)
	assertStatus(t, w, http.StatusSeeOther)

	paged, err := svc.news.GetStarNews(context.Background(), st.ID, service.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatalf("GetStarNews: %v", err)
	}
	if paged.Total != 1 || paged.Items[0].AuthorID != editor.ID {
		t.Errorf("star news = %+v", paged)
	}

	w = serve(t, sm, http.MethodPost, "/admin/news", "/admin/news", url.Values{
		"title":        {"Zamanlanmış"},
		"content":      {"İçerik"},
		"status":       {"draft"},
		"scheduled_at": {"yarın"},
	}, editor, h.Create)
	assertStatus(t, w, http.StatusUnprocessableEntity)
	assertBodyContains(t, w, "scheduled_at")
}

func TestAdminNewsPublish(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewAdminNewsHandler(renderer, svc.news, svc.stars, svc.events, testUploader(t), middleware.Demo{}, nil)
	editor := svc.user(t, "editor@example.com", model.RoleEditor)
	draft := svc.article(t, editor.ID, "Taslak", model.NewsStatusDraft, nil)

	target := "/admin/news/" + strconv.FormatInt(draft.ID, 10) + "/publish"
	w := serve(t, sm, http.MethodPost, "/admin/news/{id}/publish", target, url.Values{}, editor, h.Publish)
	assertRedirect(t, w, "/admin?tab=news")

	n, err := svc.news.GetNewsByID(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("GetNewsByID: %v", err)
	}
	if !n.IsPublished() || n.PublishedAt == nil {
		t.Errorf("article not published: %+v", n)
	}
}

// pngBody returns a multipart body with a small PNG in field.
func pngBody(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "portre.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(pngData.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestReceiveUpload(t *testing.T) {
	up := testUploader(t)

	t.Run("stores the image", func(t *testing.T) {
		body, ct := pngBody(t, "image")
		r := httptest.NewRequest(http.MethodPost, "/", body)
		r.Header.Set("Content-Type", ct)
		res, msg := receiveUpload(httptest.NewRecorder(), r, up, middleware.Demo{}, "image", storage.BucketStarImages, "")
		if res == nil {
			t.Fatalf("upload failed: %s", msg)
		}
		wantPrefix := testStorageBase + service.PublicObjectPath + storage.BucketStarImages + "/"
		if !strings.HasPrefix(res.URL, wantPrefix) {
			t.Errorf("URL = %q, want prefix %q", res.URL, wantPrefix)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		body, ct := pngBody(t, "other")
		r := httptest.NewRequest(http.MethodPost, "/", body)
		r.Header.Set("Content-Type", ct)
		res, msg := receiveUpload(httptest.NewRecorder(), r, up, middleware.Demo{}, "image", storage.BucketStarImages, "")
		if res != nil || msg != "Choose an image to upload." {
			t.Errorf("got %v, %q", res, msg)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, _ := mw.CreateFormFile("image", "notes.txt")
		_, _ = fw.Write([]byte("just some text"))
		_ = mw.Close()
		r := httptest.NewRequest(http.MethodPost, "/", &body)
		r.Header.Set("Content-Type", mw.FormDataContentType())
		res, msg := receiveUpload(httptest.NewRecorder(), r, up, middleware.Demo{}, "image", storage.BucketStarImages, "")
		if res != nil || !strings.Contains(msg, "JPEG, PNG, GIF and WebP") {
			t.Errorf("got %v, %q", res, msg)
		}
	})

	t.Run("demo size limit", func(t *testing.T) {
		body, ct := pngBody(t, "image")
		r := httptest.NewRequest(http.MethodPost, "/", body)
		r.Header.Set("Content-Type", ct)
		r.ContentLength = middleware.DemoUploadMaxSize + 1
		res, msg := receiveUpload(httptest.NewRecorder(), r, up, middleware.Demo{Enabled: true}, "image", storage.BucketStarImages, "")
		if res != nil || msg != middleware.DemoModeMessageDetailed(middleware.RestrictionLargeUpload) {
			t.Errorf("got %v, %q", res, msg)
		}
	})
}

// fakeJobs is a JobRunner with canned answers.
type fakeJobs struct {
	jobs      []scheduler.JobInfo
	err       error
	triggered []string
}

func (f *fakeJobs) List() []scheduler.JobInfo { return f.jobs }

func (f *fakeJobs) Trigger(_ context.Context, name string) error {
	f.triggered = append(f.triggered, name)
	return f.err
}

func TestSchedulerList(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	jobs := &fakeJobs{jobs: []scheduler.JobInfo{
		{Name: "publish_scheduled_news", Schedule: "* * * * *", LastRun: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Name: "prune_sessions", Schedule: "@hourly"},
	}}
	h := NewSchedulerHandler(renderer, jobs, svc.events)

	w := serve(t, sm, http.MethodGet, "/admin/jobs", "/admin/jobs", nil, &model.User{ID: 1, Role: model.RoleAdmin}, h.List)
	assertStatus(t, w, http.StatusOK)
	assertBodyContains(t, w, "publish_scheduled_news", "2026-01-02 03:04:05", "prune_sessions", "LastRun&#34;:&#34;-")
}

func TestSchedulerTrigger(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"unknown", scheduler.ErrJobNotFound},
		{"limited", scheduler.ErrTriggerLimited},
		{"failed", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newServices(t)
			renderer, sm := testRenderer(t)
			jobs := &fakeJobs{err: tt.err}
			h := NewSchedulerHandler(renderer, jobs, svc.events)

			w := serve(t, sm, http.MethodPost, "/admin/jobs/{name}/run", "/admin/jobs/prune_sessions/run", url.Values{},
				&model.User{ID: 1, Role: model.RoleAdmin}, h.TriggerNow)
			assertRedirect(t, w, "/admin/jobs")
			if len(jobs.triggered) != 1 || jobs.triggered[0] != "prune_sessions" {
				t.Errorf("triggered = %v", jobs.triggered)
			}

			events, err := svc.events.RecentEvents(context.Background(), 5)
			if err != nil {
				t.Fatalf("RecentEvents: %v", err)
			}
			logged := len(events) > 0 && strings.HasPrefix(events[0].Message, "Job manually triggered")
			if logged != (tt.err == nil) {
				t.Errorf("logged = %v for err %v", logged, tt.err)
			}
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"empty object", "{}", ""},
		{"sorted keys", `{"path":"/admin","error":"not found"}`, "error: not found, path: /admin"},
		{"numbers and bools", `{"star_id":12,"ok":true}`, "ok: true, star_id: 12"},
		{"nested", `{"tags":["a","b"]}`, `tags: ["a","b"]`},
		{"invalid json kept", "not json", "not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetadata(tt.in); got != tt.want {
				t.Errorf("formatMetadata(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterEvents(t *testing.T) {
	uid := int64(5)
	events := []model.Event{
		{ID: 1, Level: model.EventLevelInfo, Category: model.EventCategoryStar, Message: "Star created", UserID: &uid},
		{ID: 2, Level: model.EventLevelError, Category: model.EventCategorySystem, Message: "Job failed",
			Metadata: `{"error":"` + strings.Repeat("x", detailsLengthThreshold) + `"}`},
		{ID: 3, Level: model.EventLevelInfo, Category: model.EventCategorySystem, Message: "Job done"},
	}

	if got := filterEvents(events, "", ""); len(got) != 3 {
		t.Errorf("no filter = %d events, want 3", len(got))
	}
	got := filterEvents(events, model.EventLevelInfo, model.EventCategorySystem)
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("info+system = %+v", got)
	}
	got = filterEvents(events, model.EventLevelError, "")
	if len(got) != 1 || !got[0].DetailsLong {
		t.Errorf("error events = %+v, want one with long details", got)
	}
	got = filterEvents(events, "", model.EventCategoryStar)
	if len(got) != 1 || got[0].UserID != uid {
		t.Errorf("star events = %+v", got)
	}
}

func TestEventsList(t *testing.T) {
	svc := newServices(t)
	renderer, sm := testRenderer(t)
	h := NewEventsHandler(renderer, svc.events)
	ctx := context.Background()
	if err := svc.events.LogSystemEvent(ctx, model.EventLevelWarning, "Disk almost full", nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.events.LogStarEvent(ctx, "Star created", nil, map[string]any{"star_id": 1}); err != nil {
		t.Fatal(err)
	}

	w := serve(t, sm, http.MethodGet, "/admin/events", "/admin/events?level=warning", nil, &model.User{ID: 1, Role: model.RoleAdmin}, h.List)
	assertStatus(t, w, http.StatusOK)
	assertBodyContains(t, w, "Disk almost full")
	if strings.Contains(w.Body.String(), "Star created") {
		t.Error("info event shown under the warning filter")
	}
}
