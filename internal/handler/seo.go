// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/seo"
	"github.com/dizistars/dizistars/internal/service"
)

// sitemapNewsLimit caps the articles listed in sitemap.xml.
const sitemapNewsLimit = 1000

// SitemapStars lists every star for the sitemap.
type SitemapStars interface {
	ListAllStars(ctx context.Context) ([]*model.Star, error)
}

// SitemapNews lists published articles for the sitemap.
type SitemapNews interface {
	ListNews(ctx context.Context, status model.NewsStatus, page service.Page) (service.Paged[*model.News], error)
}

// SEOHandler serves robots.txt and sitemap.xml.
type SEOHandler struct {
	siteURL     string
	disallowAll bool
	stars       SitemapStars
	news        SitemapNews
	sitemaps    *cache.TypedCache[[]byte]
}

// NewSEOHandler creates an SEOHandler. disallowAll hides the site from
// crawlers. c may be nil.
func NewSEOHandler(siteURL string, disallowAll bool, stars SitemapStars, news SitemapNews, c cache.Cache, ttl time.Duration) *SEOHandler {
	h := &SEOHandler{siteURL: siteURL, disallowAll: disallowAll, stars: stars, news: news}
	if c != nil {
		h.sitemaps = cache.NewTypedCache[[]byte](c, ttl)
	}
	return h
}

// Robots serves /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.siteURL, h.disallowAll)))
}

// Sitemap serves /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	var (
		body []byte
		err  error
	)
	if h.sitemaps != nil {
		body, err = h.sitemaps.GetOrSet(r.Context(), cache.KeySitemap, h.buildSitemap)
	} else {
		body, err = h.buildSitemap(r.Context())
	}
	if err != nil {
		slog.Error("failed to build sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set(HeaderContentType, "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

func (h *SEOHandler) buildSitemap(ctx context.Context) ([]byte, error) {
	stars, err := h.stars.ListAllStars(ctx)
	if err != nil {
		return nil, err
	}
	news, err := h.news.ListNews(ctx, model.NewsStatusPublished, service.Page{Number: 1, Size: sitemapNewsLimit})
	if err != nil {
		return nil, err
	}

	starEntries := make([]seo.Entry, 0, len(stars))
	for _, s := range stars {
		if s.Slug == "" {
			continue
		}
		starEntries = append(starEntries, seo.Entry{Slug: s.Slug, UpdatedAt: s.UpdatedAt})
	}
	newsEntries := make([]seo.Entry, 0, len(news.Items))
	for _, n := range news.Items {
		newsEntries = append(newsEntries, seo.Entry{Slug: n.Slug, UpdatedAt: n.UpdatedAt})
	}
	return seo.GenerateSitemap(h.siteURL, starEntries, newsEntries)
}
