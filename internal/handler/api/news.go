// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/model"
)

// ListNews handles GET /api/v1/news. Only published articles are listed,
// newest first.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	paged, err := h.news.ListNews(r.Context(), model.NewsStatusPublished, pageParams(r))
	if err != nil {
		writeServiceError(w, "news", err)
		return
	}
	WriteSuccess(w, nonNil(paged.Items), metaFor(paged))
}

// GetNews handles GET /api/v1/news/{slug}. Drafts and archived articles
// are reported as not found.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	n, err := h.news.GetNewsBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, "Article", err)
		return
	}
	if !n.IsPublished() {
		WriteNotFound(w, "Article not found")
		return
	}
	WriteSuccess(w, n, nil)
}
