// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
)

// NewsHandler serves the public news pages.
type NewsHandler struct {
	renderer *render.Renderer
	news     *service.NewsService
	comments *service.CommentService
}

// NewNewsHandler creates a NewsHandler.
func NewNewsHandler(renderer *render.Renderer, news *service.NewsService, comments *service.CommentService) *NewsHandler {
	return &NewsHandler{renderer: renderer, news: news, comments: comments}
}

// NewsListData is the news index.
type NewsListData struct {
	News       []*model.News
	Pagination uikit.Pagination
}

// List renders /news with published articles, newest first.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	paged, err := h.news.ListNews(r.Context(), model.NewsStatusPublished, pageFromRequest(r, newsPerPage))
	if err != nil {
		handleLoadError(w, r, h.renderer, "News", err)
		return
	}
	renderPage(w, r, h.renderer, "pages/news", render.TemplateData{
		Title:       "News",
		Data:        NewsListData{News: paged.Items, Pagination: paginationFor(r, paged)},
		Breadcrumbs: uikit.Crumbs("Home", "/", "News", "/news"),
	})
}

// NewsDetailData is one article page.
type NewsDetailData struct {
	Article     *model.News
	Comments    []model.Comment
	CommentsErr bool
	// Preview is set when staff view an unpublished article.
	Preview bool
}

// Detail renders /news/{slug}. Drafts and archived articles are only
// visible to editors and admins.
func (h *NewsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	article, err := h.news.GetNewsBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		handleLoadError(w, r, h.renderer, "Article", err)
		return
	}

	user := middleware.GetUser(r)
	data := NewsDetailData{Article: article}
	if !article.IsPublished() {
		if user == nil || !user.CanModerate() {
			notFoundPage(w, r, h.renderer, "Article")
			return
		}
		data.Preview = true
	}

	data.Comments, err = h.comments.ListApprovedComments(ctx, model.CommentRef{Type: model.CommentTargetNews, ID: article.ID})
	if err != nil {
		slog.Error("loading comments failed", "news_id", article.ID, "error", err)
		data.CommentsErr = true
	}

	renderPage(w, r, h.renderer, "pages/news_detail", render.TemplateData{
		Title:       article.Title,
		Description: article.Excerpt,
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Home", "/", "News", "/news", article.Title, "/news/"+article.Slug),
	})
}
