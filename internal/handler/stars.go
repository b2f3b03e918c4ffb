// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/features"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
	"github.com/dizistars/dizistars/internal/upload"
)

// relatedNewsLimit is the number of articles on the overview tab.
const relatedNewsLimit = 3

// StarsHandler serves the star directory and profiles.
type StarsHandler struct {
	renderer *render.Renderer
	stars    *service.StarService
	news     *service.NewsService
	comments *service.CommentService
	features *features.Service
}

// NewStarsHandler creates a StarsHandler.
func NewStarsHandler(renderer *render.Renderer, stars *service.StarService, news *service.NewsService, comments *service.CommentService, fs *features.Service) *StarsHandler {
	return &StarsHandler{renderer: renderer, stars: stars, news: news, comments: comments, features: fs}
}

// StarListData is the directory page.
type StarListData struct {
	Stars      []*model.Star
	Total      int64
	Filter     service.StarFilter
	Sorts      []service.StarSort
	Types      []model.StarType
	Pagination uikit.Pagination
	Failed     bool
}

// List renders /stars with search, type filter, sort and pagination.
func (h *StarsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.StarFilter{
		Search: q.Get("q"),
		Sort:   service.ParseStarSort(q.Get("sort")),
	}
	if t := model.StarType(q.Get("type")); t.IsValid() {
		filter.Type = t
	}

	data := StarListData{
		Filter: filter,
		Sorts:  service.StarSorts,
		Types:  []model.StarType{model.StarTypeActor, model.StarTypeActress},
	}

	all, err := h.stars.ListAllStars(r.Context())
	if err != nil {
		slog.Error("loading star directory failed", "error", err)
		data.Failed = true
	} else {
		paged := service.Paginate(service.FilterStars(all, filter), pageFromRequest(r, starsPerPage))
		data.Stars = paged.Items
		data.Total = paged.Total
		data.Pagination = paginationFor(r, paged)
	}

	renderPage(w, r, h.renderer, "pages/stars", render.TemplateData{
		Title:       "Stars",
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Home", "/", "Stars", "/stars"),
	})
}

// GalleryPhoto is one image of the photos tab.
type GalleryPhoto struct {
	Index int
	URL   string
	Thumb string
}

// StarProfileData is the tabbed profile page.
type StarProfileData struct {
	Star        *model.Star
	Tab         model.StarTab
	Tabs        []model.StarTab
	Photos      []GalleryPhoto
	News        []*model.News
	Comments    []model.Comment
	IsFavorite  bool
	VideoEmbed  string
	CommentsErr bool
}

// Profile renders /stars/{id}; id may be the numeric id or the slug.
func (h *StarsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	star, err := h.stars.GetStar(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleLoadError(w, r, h.renderer, "Star", err)
		return
	}

	data := StarProfileData{
		Star: star,
		Tab:  model.ParseStarTab(r.URL.Query().Get("tab")),
		Tabs: model.StarTabs,
	}

	switch data.Tab {
	case model.StarTabOverview:
		news, err := h.news.GetStarNews(ctx, star.ID, service.Page{Number: 1, Size: relatedNewsLimit})
		if err != nil {
			slog.Error("loading star news failed", "star_id", star.ID, "error", err)
		}
		data.News = news.Items
	case model.StarTabPhotos:
		for i, img := range star.GalleryImages {
			data.Photos = append(data.Photos, GalleryPhoto{Index: i + 1, URL: img, Thumb: upload.ThumbURL(img)})
		}
	case model.StarTabVideos:
		data.VideoEmbed = videoEmbedURL(star.FullName)
	}

	data.Comments, err = h.comments.ListApprovedComments(ctx, model.CommentRef{Type: model.CommentTargetStar, ID: star.ID})
	if err != nil {
		slog.Error("loading comments failed", "star_id", star.ID, "error", err)
		data.CommentsErr = true
	}

	if user := middleware.GetUser(r); user != nil {
		st, err := h.features.Load(ctx, user.ID)
		if err != nil {
			slog.Warn("loading user state failed", "user_id", user.ID, "error", err)
		}
		data.IsFavorite = st.IsFavorite(star.ID)
	}

	renderPage(w, r, h.renderer, "pages/star", render.TemplateData{
		Title:       star.FullName,
		Description: uikit.Truncate(star.Biography, 160),
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Home", "/", "Stars", "/stars", star.FullName, starPath(star)),
	})
}

// StarNewsData is the news archive of one star.
type StarNewsData struct {
	Star       *model.Star
	News       []*model.News
	Pagination uikit.Pagination
}

// News renders /stars/{id}/news.
func (h *StarsHandler) News(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	star, err := h.stars.GetStar(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleLoadError(w, r, h.renderer, "Star", err)
		return
	}
	paged, err := h.news.GetStarNews(ctx, star.ID, pageFromRequest(r, newsPerPage))
	if err != nil {
		handleLoadError(w, r, h.renderer, "News", err)
		return
	}

	renderPage(w, r, h.renderer, "pages/star_news", render.TemplateData{
		Title: star.FullName + " News",
		Data: StarNewsData{
			Star:       star,
			News:       paged.Items,
			Pagination: paginationFor(r, paged),
		},
		Breadcrumbs: uikit.Crumbs("Home", "/", "Stars", "/stars", star.FullName, starPath(star), "News", ""),
	})
}

// starPath is the canonical profile URL.
func starPath(s *model.Star) string {
	if s.Slug != "" {
		return "/stars/" + s.Slug
	}
	return "/stars/" + strconv.FormatInt(s.ID, 10)
}

// videoEmbedURL is a privacy-enhanced YouTube search playlist for the star.
func videoEmbedURL(name string) string {
	return "https://www.youtube-nocookie.com/embed?listType=search&list=" + url.QueryEscape(name+" röportaj")
}
