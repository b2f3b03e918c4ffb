// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
)

// ListStars handles GET /api/v1/stars?q=&type=&sort=&page=&per_page=
func (h *Handler) ListStars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.StarFilter{
		Search: q.Get("q"),
		Sort:   service.ParseStarSort(q.Get("sort")),
	}
	if t := q.Get("type"); t != "" {
		filter.Type = model.StarType(t)
		if !filter.Type.IsValid() {
			WriteBadRequest(w, "Invalid star type", map[string]string{"type": "must be actor or actress"})
			return
		}
	}

	all, err := h.stars.ListAllStars(r.Context())
	if err != nil {
		writeServiceError(w, "stars", err)
		return
	}
	paged := service.Paginate(service.FilterStars(all, filter), pageParams(r))
	WriteSuccess(w, nonNil(paged.Items), metaFor(paged))
}

// GetStar handles GET /api/v1/stars/{id}. The parameter may also be a slug.
func (h *Handler) GetStar(w http.ResponseWriter, r *http.Request) {
	st, err := h.stars.GetStar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Star", err)
		return
	}
	WriteSuccess(w, st, nil)
}

// ListStarNews handles GET /api/v1/stars/{id}/news. Only published
// articles are listed.
func (h *Handler) ListStarNews(w http.ResponseWriter, r *http.Request) {
	st, err := h.stars.GetStar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Star", err)
		return
	}
	paged, err := h.news.GetStarNews(r.Context(), st.ID, pageParams(r))
	if err != nil {
		writeServiceError(w, "news", err)
		return
	}
	WriteSuccess(w, nonNil(paged.Items), metaFor(paged))
}

// nonNil makes empty listings encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
