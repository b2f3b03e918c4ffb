// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
)

// Number of items per home page row.
const (
	homeStarsLimit = 8
	homeNewsLimit  = 6
)

// HomeStars is the part of the star service the home page reads.
type HomeStars interface {
	GetFeaturedStars(ctx context.Context, limit int) ([]*model.Star, error)
	GetTrendingStars(ctx context.Context, limit int) ([]*model.Star, error)
	GetRisingStars(ctx context.Context, limit int) ([]*model.Star, error)
	GetInfluentialStars(ctx context.Context, limit int) ([]*model.Star, error)
}

// HomeNews is the part of the news service the home page reads.
type HomeNews interface {
	GetLatestNews(ctx context.Context, limit int) ([]*model.News, error)
}

// StarRow is one titled row of star cards.
type StarRow struct {
	Title string
	Stars []*model.Star
	// Failed is set when the row could not be loaded.
	Failed bool
}

// HomeSections is everything the home page shows.
type HomeSections struct {
	Featured    StarRow
	Trending    StarRow
	Rising      StarRow
	Influential StarRow
	News        []*model.News
	NewsFailed  bool
}

func (s HomeSections) complete() bool {
	return !s.Featured.Failed && !s.Trending.Failed && !s.Rising.Failed && !s.Influential.Failed && !s.NewsFailed
}

// HomeHandler serves the landing page.
type HomeHandler struct {
	renderer *render.Renderer
	stars    HomeStars
	news     HomeNews
	sections *cache.TypedCache[HomeSections]
}

// NewHomeHandler creates a HomeHandler. c may be nil to disable caching.
func NewHomeHandler(renderer *render.Renderer, stars HomeStars, news HomeNews, c cache.Cache, ttl time.Duration) *HomeHandler {
	h := &HomeHandler{renderer: renderer, stars: stars, news: news}
	if c != nil {
		h.sections = cache.NewTypedCache[HomeSections](c, ttl)
	}
	return h
}

// Home renders the landing page.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "pages/home", render.TemplateData{
		Title:       "DiziStars",
		Description: "Türk dizilerinin yıldızları: profiller, haberler ve hayran topluluğu.",
		Data:        h.loadSections(r.Context()),
	})
}

// loadSections returns the cached sections, or loads all widgets
// concurrently. Partial results are shown but not cached.
func (h *HomeHandler) loadSections(ctx context.Context) HomeSections {
	if h.sections != nil {
		if s, ok := h.sections.Get(ctx, cache.KeyHomeSections); ok {
			return s
		}
	}

	s := HomeSections{
		Featured:    StarRow{Title: "Featured Stars"},
		Trending:    StarRow{Title: "Trending Now"},
		Rising:      StarRow{Title: "Rising Stars"},
		Influential: StarRow{Title: "Most Influential"},
	}

	var g errgroup.Group
	loadRow := func(row *StarRow, fn func(context.Context, int) ([]*model.Star, error)) {
		g.Go(func() error {
			stars, err := fn(ctx, homeStarsLimit)
			if err != nil {
				slog.Error("loading home row failed", "row", row.Title, "error", err)
				row.Failed = true
				return nil
			}
			row.Stars = stars
			return nil
		})
	}
	loadRow(&s.Featured, h.stars.GetFeaturedStars)
	loadRow(&s.Trending, h.stars.GetTrendingStars)
	loadRow(&s.Rising, h.stars.GetRisingStars)
	loadRow(&s.Influential, h.stars.GetInfluentialStars)
	g.Go(func() error {
		news, err := h.news.GetLatestNews(ctx, homeNewsLimit)
		if err != nil {
			slog.Error("loading latest news failed", "error", err)
			s.NewsFailed = true
			return nil
		}
		s.News = news
		return nil
	})
	_ = g.Wait()

	if h.sections != nil && s.complete() {
		if err := h.sections.Set(ctx, cache.KeyHomeSections, s); err != nil {
			slog.Warn("caching home sections failed", "error", err)
		}
	}
	return s
}
