// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/storage"
	"github.com/dizistars/dizistars/internal/uikit"
	"github.com/dizistars/dizistars/internal/upload"
)

// scheduleLayout is the value format of datetime-local inputs.
const scheduleLayout = "2006-01-02T15:04"

// AdminNewsHandler manages news articles.
type AdminNewsHandler struct {
	renderer *render.Renderer
	news     *service.NewsService
	stars    *service.StarService
	events   *service.EventService
	uploader *upload.Uploader
	demo     middleware.Demo
	loc      *time.Location
}

// NewAdminNewsHandler creates an AdminNewsHandler. Schedule times typed into
// the form are read in loc; nil means time.Local.
func NewAdminNewsHandler(renderer *render.Renderer, news *service.NewsService, stars *service.StarService, events *service.EventService, up *upload.Uploader, demo middleware.Demo, loc *time.Location) *AdminNewsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AdminNewsHandler{renderer: renderer, news: news, stars: stars, events: events, uploader: up, demo: demo, loc: loc}
}

// NewsFormData is the add/edit article form.
type NewsFormData struct {
	Article  *model.News
	Input    service.NewsInput
	IsNew    bool
	Stars    []*model.Star
	Statuses []model.NewsStatus
	Errors   map[string]string
	MaxMB    int64
}

// StarSelected reports whether the article is linked to star id.
func (d NewsFormData) StarSelected(id int64) bool {
	return d.Input.StarID != nil && *d.Input.StarID == id
}

func (h *AdminNewsHandler) formData(r *http.Request, article *model.News) NewsFormData {
	data := NewsFormData{
		Article:  article,
		IsNew:    article == nil,
		Statuses: []model.NewsStatus{model.NewsStatusDraft, model.NewsStatusPublished, model.NewsStatusArchived},
		MaxMB:    h.uploader.MaxBytes() >> 20,
		Input:    service.NewsInput{Status: model.NewsStatusDraft},
	}
	if article != nil {
		data.Input = newsInputFrom(article)
	}
	stars, err := h.stars.ListAllStars(r.Context())
	if err != nil {
		slog.Error("loading stars for news form failed", "error", err)
	}
	data.Stars = stars
	return data
}

func (h *AdminNewsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data NewsFormData) {
	title, crumb := "Add news", "New"
	if !data.IsNew {
		title, crumb = "Edit "+data.Article.Title, data.Article.Title
	}
	err := h.renderer.RenderStatus(w, r, status, "admin/news_form", render.TemplateData{
		Title:       title,
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Dashboard", redirectAdmin, "News", redirectAdmin+"?tab=news", crumb, ""),
	})
	if err != nil {
		logAndInternalError(w, "render error", "template", "admin/news_form", "error", err)
	}
}

func newsInputFrom(n *model.News) service.NewsInput {
	return service.NewsInput{
		Title:       n.Title,
		Slug:        n.Slug,
		Content:     n.Content,
		Excerpt:     n.Excerpt,
		CoverImage:  n.CoverImage,
		StarID:      n.StarID,
		Status:      n.Status,
		ScheduledAt: n.ScheduledAt,
	}
}

// parseNewsForm reads the posted article fields.
func (h *AdminNewsHandler) parseNewsForm(r *http.Request) (service.NewsInput, error) {
	in := service.NewsInput{
		Title:      trimmedForm(r, "title"),
		Slug:       trimmedForm(r, "slug"),
		Content:    strings.TrimSpace(r.FormValue("content")),
		Excerpt:    trimmedForm(r, "excerpt"),
		CoverImage: trimmedForm(r, "cover_image"),
		Status:     model.NewsStatus(r.FormValue("status")),
	}
	if v := r.FormValue("star_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return in, apperror.ValidationFailed("star_id", "Choose a star from the list.")
		}
		in.StarID = &id
	}
	if v := r.FormValue("scheduled_at"); v != "" {
		at, err := time.ParseInLocation(scheduleLayout, v, h.loc)
		if err != nil {
			return in, apperror.ValidationFailed("scheduled_at", "Enter a valid date and time.")
		}
		in.ScheduledAt = &at
	}
	return in, nil
}

// New renders the empty form.
func (h *AdminNewsHandler) New(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r, nil)
	if v := r.URL.Query().Get("star_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			data.Input.StarID = &id
		}
	}
	h.renderForm(w, r, http.StatusOK, data)
}

// Create handles POST /admin/news.
func (h *AdminNewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/news/new") {
		return
	}
	data := h.formData(r, nil)
	in, err := h.parseNewsForm(r)
	data.Input = in
	var article *model.News
	if err == nil {
		article, err = h.news.CreateNews(r.Context(), middleware.GetUserID(r), in)
	}
	if err != nil {
		h.formError(w, r, "/admin/news/new", data, err)
		return
	}

	_ = h.events.LogNewsEvent(r.Context(), "News created", middleware.GetUserIDPtr(r), map[string]any{
		"news_id": article.ID,
		"status":  string(article.Status),
	})
	flashSuccess(w, r, h.renderer, editNewsURL(article.ID), "Article saved.")
}

// Edit renders /admin/news/{id}/edit.
func (h *AdminNewsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadArticle(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, h.formData(r, article))
}

// Update handles POST /admin/news/{id}.
func (h *AdminNewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadArticle(w, r)
	if !ok {
		return
	}
	back := editNewsURL(article.ID)
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	data := h.formData(r, article)
	in, err := h.parseNewsForm(r)
	data.Input = in
	if err == nil {
		_, err = h.news.UpdateNews(r.Context(), article.ID, in)
	}
	if err != nil {
		h.formError(w, r, back, data, err)
		return
	}
	if in.CoverImage != article.CoverImage {
		h.uploader.DeleteURL(r.Context(), article.CoverImage)
	}

	_ = h.events.LogNewsEvent(r.Context(), "News updated", middleware.GetUserIDPtr(r), map[string]any{
		"news_id": article.ID,
		"status":  string(in.Status),
	})
	flashSuccess(w, r, h.renderer, back, "Article saved.")
}

func (h *AdminNewsHandler) formError(w http.ResponseWriter, r *http.Request, back string, data NewsFormData, err error) {
	if !errors.Is(err, apperror.ErrValidation) {
		flashServiceError(w, r, h.renderer, back, "save the article", err)
		return
	}
	data.Errors = apperror.FieldErrors(err)
	h.renderForm(w, r, http.StatusUnprocessableEntity, data)
}

// UploadCover handles POST /admin/news/{id}/cover.
func (h *AdminNewsHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	article, ok := h.loadArticle(w, r)
	if !ok {
		return
	}
	back := editNewsURL(article.ID)

	res, msg := receiveUpload(w, r, h.uploader, h.demo, "cover", storage.BucketNewsImages, "")
	if res == nil {
		flashError(w, r, h.renderer, back, msg)
		return
	}
	in := newsInputFrom(article)
	in.CoverImage = res.URL
	if _, err := h.news.UpdateNews(r.Context(), article.ID, in); err != nil {
		h.uploader.DeleteURL(r.Context(), res.URL)
		flashServiceError(w, r, h.renderer, back, "save the cover image", err)
		return
	}
	h.uploader.DeleteURL(r.Context(), article.CoverImage)
	flashSuccess(w, r, h.renderer, back, "Cover image updated.")
}

// Publish handles POST /admin/news/{id}/publish.
func (h *AdminNewsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "publish", func(id int64) (*model.News, error) {
		return h.news.PublishNews(r.Context(), id)
	}, "Article published.")
}

// Archive handles POST /admin/news/{id}/archive.
func (h *AdminNewsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "archive", func(id int64) (*model.News, error) {
		return h.news.ArchiveNews(r.Context(), id)
	}, "Article archived.")
}

// Schedule handles POST /admin/news/{id}/schedule.
func (h *AdminNewsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "schedule", func(id int64) (*model.News, error) {
		at, err := time.ParseInLocation(scheduleLayout, r.FormValue("scheduled_at"), h.loc)
		if err != nil {
			return nil, apperror.ValidationFailed("scheduled_at", "Enter a valid date and time.")
		}
		return h.news.ScheduleNews(r.Context(), id, at)
	}, "Article scheduled.")
}

func (h *AdminNewsHandler) changeStatus(w http.ResponseWriter, r *http.Request, action string, fn func(int64) (*model.News, error), msg string) {
	back := backTo(r, redirectAdmin+"?tab=news")
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid article.")
		return
	}
	n, err := fn(id)
	if err != nil {
		flashServiceError(w, r, h.renderer, back, action+" the article", err)
		return
	}
	_ = h.events.LogNewsEvent(r.Context(), "News status changed", middleware.GetUserIDPtr(r), map[string]any{
		"news_id": n.ID,
		"action":  action,
		"status":  string(n.Status),
	})
	flashSuccess(w, r, h.renderer, back, msg)
}

// Delete handles POST /admin/news/{id}/delete.
func (h *AdminNewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	back := redirectAdmin + "?tab=news"
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid article.")
		return
	}
	n, err := h.news.DeleteNews(r.Context(), id)
	if err != nil {
		flashServiceError(w, r, h.renderer, back, "delete the article", err)
		return
	}
	h.uploader.DeleteURL(r.Context(), n.CoverImage)
	_ = h.events.LogNewsEvent(r.Context(), "News deleted", middleware.GetUserIDPtr(r), map[string]any{
		"news_id": n.ID,
		"title":   n.Title,
	})
	flashSuccess(w, r, h.renderer, back, "Article deleted.")
}

func (h *AdminNewsHandler) loadArticle(w http.ResponseWriter, r *http.Request) (*model.News, bool) {
	id, ok := int64Param(r, "id")
	if !ok {
		notFoundPage(w, r, h.renderer, "Article")
		return nil, false
	}
	n, err := h.news.GetNewsByID(r.Context(), id)
	if err != nil {
		handleLoadError(w, r, h.renderer, "Article", err)
		return nil, false
	}
	return n, true
}

func editNewsURL(id int64) string {
	return fmt.Sprintf("/admin/news/%d/edit", id)
}
