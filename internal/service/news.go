// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/content"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
	"github.com/dizistars/dizistars/internal/util"
	"github.com/dizistars/dizistars/internal/validate"
)

const (
	newsCacheTTL   = 10 * time.Minute
	excerptLength  = 220
	latestNewsSize = 6
)

// NewsInput is the editable part of an article, as posted by the admin form.
type NewsInput struct {
	Title       string           `form:"title" validate:"required,max=200"`
	Slug        string           `form:"slug" validate:"max=80"`
	Content     string           `form:"content" validate:"required,max=100000"`
	Excerpt     string           `form:"excerpt" validate:"max=500"`
	CoverImage  string           `form:"cover_image" validate:"max=2048"`
	StarID      *int64           `form:"star_id"`
	Status      model.NewsStatus `form:"status" validate:"required,newsstatus"`
	ScheduledAt *time.Time       `form:"scheduled_at"`
}

// NewsService manages news articles.
type NewsService struct {
	db       *sql.DB
	queries  *store.Queries
	cache    cache.Cache
	articles *cache.TypedCache[model.News]
	images   ImagePolicy
	notifier *NotificationService
	now      func() time.Time
}

// NewNewsService creates a NewsService. c may be nil to disable caching and
// notifier may be nil to skip follower notifications.
func NewNewsService(db *sql.DB, c cache.Cache, images ImagePolicy, notifier *NotificationService) *NewsService {
	s := &NewsService{
		db:       db,
		queries:  store.New(db),
		cache:    c,
		images:   images,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if c != nil {
		s.articles = cache.NewTypedCache[model.News](c, newsCacheTTL)
	}
	return s
}

func newsFromStore(r store.News) *model.News {
	return &model.News{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		CoverImage:  r.CoverImage,
		AuthorID:    r.AuthorID,
		AuthorName:  r.AuthorName.String,
		StarID:      util.Int64Ptr(r.StarID),
		StarName:    r.StarName.String,
		StarSlug:    r.StarSlug.String,
		Status:      model.NewsStatus(r.Status),
		PublishedAt: util.TimePtr(r.PublishedAt),
		ScheduledAt: util.TimePtr(r.ScheduledAt),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newsListFromStore(rows []store.News) []*model.News {
	out := make([]*model.News, 0, len(rows))
	for _, r := range rows {
		out = append(out, newsFromStore(r))
	}
	return out
}

// GetLatestNews returns the newest published articles.
func (s *NewsService) GetLatestNews(ctx context.Context, limit int) ([]*model.News, error) {
	if limit < 1 {
		limit = latestNewsSize
	}
	rows, err := s.queries.GetLatestNews(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("loading latest news: %w", err)
	}
	return newsListFromStore(rows), nil
}

// GetNewsBySlug returns an article of any status with its rendered body,
// author and star names. Callers hide unpublished articles from the public.
func (s *NewsService) GetNewsBySlug(ctx context.Context, slug string) (*model.News, error) {
	load := func(ctx context.Context) (model.News, error) {
		row, err := s.queries.GetNewsBySlug(ctx, slug)
		if err != nil {
			return model.News{}, notFound(err, "news", slug)
		}
		n := newsFromStore(row)
		html, err := content.RenderMarkdown(n.Content)
		if err != nil {
			return model.News{}, err
		}
		n.ContentHTML = html
		return *n, nil
	}
	if s.articles == nil {
		n, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return &n, nil
	}
	n, err := s.articles.GetOrSet(ctx, cache.NewsKey(slug), load)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetNewsByID returns an article of any status.
func (s *NewsService) GetNewsByID(ctx context.Context, id int64) (*model.News, error) {
	row, err := s.queries.GetNewsByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "news", id)
	}
	return newsFromStore(row), nil
}

// GetStarNews returns one page of published articles about a star.
func (s *NewsService) GetStarNews(ctx context.Context, starID int64, page Page) (Paged[*model.News], error) {
	id := sql.NullInt64{Int64: starID, Valid: true}
	rows, err := s.queries.GetStarNews(ctx, store.GetStarNewsParams{StarID: id, Limit: page.Limit(), Offset: page.Offset()})
	if err != nil {
		return Paged[*model.News]{}, fmt.Errorf("loading news of star %d: %w", starID, err)
	}
	total, err := s.queries.CountStarNews(ctx, id)
	if err != nil {
		return Paged[*model.News]{}, fmt.Errorf("counting news of star %d: %w", starID, err)
	}
	return Paged[*model.News]{Items: newsListFromStore(rows), Total: total, Page: page.normalize()}, nil
}

// ListNews returns one page of articles. An empty status lists every article
// by last update; "published" lists by publication date.
func (s *NewsService) ListNews(ctx context.Context, status model.NewsStatus, page Page) (Paged[*model.News], error) {
	var (
		rows  []store.News
		total int64
		err   error
	)
	switch {
	case status == "":
		rows, err = s.queries.ListNews(ctx, store.ListNewsParams{Limit: page.Limit(), Offset: page.Offset()})
		if err == nil {
			total, err = s.queries.CountNews(ctx)
		}
	case status == model.NewsStatusPublished:
		rows, err = s.queries.ListPublishedNews(ctx, store.ListPublishedNewsParams{Limit: page.Limit(), Offset: page.Offset()})
		if err == nil {
			total, err = s.queries.CountPublishedNews(ctx)
		}
	case status.IsValid():
		rows, err = s.queries.ListNewsByStatus(ctx, store.ListNewsByStatusParams{Status: string(status), Limit: page.Limit(), Offset: page.Offset()})
		if err == nil {
			total, err = s.queries.CountNewsByStatus(ctx, string(status))
		}
	default:
		return Paged[*model.News]{}, apperror.ValidationFailed("status", "Status has an invalid value.")
	}
	if err != nil {
		return Paged[*model.News]{}, fmt.Errorf("listing %s news: %w", status, err)
	}
	return Paged[*model.News]{Items: newsListFromStore(rows), Total: total, Page: page.normalize()}, nil
}

func (s *NewsService) checkInput(ctx context.Context, in *NewsInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if err := s.images.Check("cover_image", in.CoverImage); err != nil {
		return err
	}
	if in.StarID != nil {
		if _, err := s.queries.GetStarByID(ctx, *in.StarID); err != nil {
			if IsNotFound(notFound(err, "star", *in.StarID)) {
				return apperror.ValidationFailed("star_id", "Selected star does not exist.")
			}
			return fmt.Errorf("checking star %d: %w", *in.StarID, err)
		}
	}
	if in.ScheduledAt != nil && in.Status == model.NewsStatusDraft && !in.ScheduledAt.After(s.now()) {
		return apperror.ValidationFailed("scheduled_at", "Scheduled time must be in the future.")
	}
	return nil
}

func (s *NewsService) slugFor(ctx context.Context, in NewsInput, id int64) (string, error) {
	base := in.Slug
	if base == "" {
		base = in.Title
	}
	base = util.Slugify(base)
	if base == "" {
		return "", apperror.ValidationFailed("slug", "Slug could not be derived from the title.")
	}
	return util.UniqueSlug(ctx, base, func(ctx context.Context, slug string) (bool, error) {
		return s.queries.NewsSlugExists(ctx, store.NewsSlugExistsParams{Slug: slug, ID: id})
	})
}

// timestamps derives published_at and scheduled_at for a status change.
// Only drafts keep a schedule; a published article keeps its first publication time.
func (s *NewsService) timestamps(status model.NewsStatus, prevPublished *time.Time, scheduled *time.Time) (sql.NullTime, sql.NullTime) {
	var published, sched sql.NullTime
	switch status {
	case model.NewsStatusPublished:
		if prevPublished != nil {
			published = sql.NullTime{Time: *prevPublished, Valid: true}
		} else {
			published = sql.NullTime{Time: s.now(), Valid: true}
		}
	case model.NewsStatusArchived:
		published = util.NullTimeFromPtr(prevPublished)
	case model.NewsStatusDraft:
		if scheduled != nil {
			sched = sql.NullTime{Time: scheduled.UTC(), Valid: true}
		}
	}
	return published, sched
}

// CreateNews validates in and inserts an article written by authorID.
func (s *NewsService) CreateNews(ctx context.Context, authorID int64, in NewsInput) (*model.News, error) {
	if err := s.checkInput(ctx, &in); err != nil {
		return nil, err
	}
	slug, err := s.slugFor(ctx, in, 0)
	if err != nil {
		return nil, err
	}
	if in.Excerpt == "" {
		in.Excerpt = content.Excerpt(in.Content, excerptLength)
	}
	published, scheduled := s.timestamps(in.Status, nil, in.ScheduledAt)
	now := s.now()
	row, err := s.queries.CreateNews(ctx, store.CreateNewsParams{
		Title:       in.Title,
		Slug:        slug,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		CoverImage:  in.CoverImage,
		AuthorID:    authorID,
		StarID:      util.NullInt64FromPtr(in.StarID),
		Status:      string(in.Status),
		PublishedAt: published,
		ScheduledAt: scheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating news: %w", err)
	}
	n, err := s.GetNewsByID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, n.Slug)
	if n.IsPublished() {
		s.notifyFollowers(ctx, n)
	}
	return n, nil
}

// UpdateNews replaces the editable fields of an article. Moving it to
// published notifies the followers of its star.
func (s *NewsService) UpdateNews(ctx context.Context, id int64, in NewsInput) (*model.News, error) {
	if err := s.checkInput(ctx, &in); err != nil {
		return nil, err
	}
	old, err := s.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slug, err := s.slugFor(ctx, in, id)
	if err != nil {
		return nil, err
	}
	if in.Excerpt == "" {
		in.Excerpt = content.Excerpt(in.Content, excerptLength)
	}
	published, scheduled := s.timestamps(in.Status, old.PublishedAt, in.ScheduledAt)
	if _, err := s.queries.UpdateNews(ctx, store.UpdateNewsParams{
		Title:       in.Title,
		Slug:        slug,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		CoverImage:  in.CoverImage,
		StarID:      util.NullInt64FromPtr(in.StarID),
		Status:      string(in.Status),
		PublishedAt: published,
		ScheduledAt: scheduled,
		UpdatedAt:   s.now(),
		ID:          id,
	}); err != nil {
		return nil, notFound(err, "news", id)
	}
	n, err := s.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, old.Slug, n.Slug)
	if n.IsPublished() && !old.IsPublished() {
		s.notifyFollowers(ctx, n)
	}
	return n, nil
}

// DeleteNews removes an article and its comments and returns it so callers
// can clean up its cover image.
func (s *NewsService) DeleteNews(ctx context.Context, id int64) (*model.News, error) {
	n, err := s.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	if err := qtx.DeleteCommentsForTarget(ctx, store.DeleteCommentsForTargetParams{
		TargetType: string(model.CommentTargetNews),
		TargetID:   id,
	}); err != nil {
		return nil, fmt.Errorf("deleting comments of news %d: %w", id, err)
	}
	if err := qtx.DeleteNews(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting news %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing news delete: %w", err)
	}
	s.invalidate(ctx, n.Slug)
	return n, nil
}

func (s *NewsService) setStatus(ctx context.Context, n *model.News, status model.NewsStatus, scheduled *time.Time) (*model.News, error) {
	published, sched := s.timestamps(status, n.PublishedAt, scheduled)
	if _, err := s.queries.SetNewsStatus(ctx, store.SetNewsStatusParams{
		Status:      string(status),
		PublishedAt: published,
		ScheduledAt: sched,
		UpdatedAt:   s.now(),
		ID:          n.ID,
	}); err != nil {
		return nil, notFound(err, "news", n.ID)
	}
	updated, err := s.GetNewsByID(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.Slug)
	return updated, nil
}

// PublishNews makes an article public immediately and notifies followers of
// its star the first time it is published.
func (s *NewsService) PublishNews(ctx context.Context, id int64) (*model.News, error) {
	n, err := s.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.IsPublished() {
		return n, nil
	}
	updated, err := s.setStatus(ctx, n, model.NewsStatusPublished, nil)
	if err != nil {
		return nil, err
	}
	s.notifyFollowers(ctx, updated)
	return updated, nil
}

// ArchiveNews hides an article from the public while keeping it.
func (s *NewsService) ArchiveNews(ctx context.Context, id int64) (*model.News, error) {
	n, err := s.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, n, model.NewsStatusArchived, nil)
}

// ScheduleNews turns an article into a draft that PublishDueNews publishes at.
func (s *NewsService) ScheduleNews(ctx context.Context, id int64, at time.Time) (*model.News, error) {
	if !at.After(s.now()) {
		return nil, apperror.ValidationFailed("scheduled_at", "Scheduled time must be in the future.")
	}
	n, err := s.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, n, model.NewsStatusDraft, &at)
}

// PublishDueNews publishes every draft whose scheduled time has passed and
// returns how many were published.
func (s *NewsService) PublishDueNews(ctx context.Context) (int, error) {
	due, err := s.queries.ListDueScheduledNews(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("listing scheduled news: %w", err)
	}
	published := 0
	for _, row := range due {
		n, err := s.setStatus(ctx, newsFromStore(row), model.NewsStatusPublished, nil)
		if err != nil {
			return published, fmt.Errorf("publishing scheduled news %d: %w", row.ID, err)
		}
		s.notifyFollowers(ctx, n)
		published++
	}
	return published, nil
}

// notifyFollowers fans out a notification for a published article. Failures
// are logged; the article stays published.
func (s *NewsService) notifyFollowers(ctx context.Context, n *model.News) {
	if s.notifier == nil || n.StarID == nil {
		return
	}
	sent, err := s.notifier.NotifyStarFollowers(ctx, *n.StarID, n)
	if err != nil {
		slog.Warn("notifying star followers failed", "news_id", n.ID, "sent", sent, "error", err)
		return
	}
	if sent > 0 {
		slog.Debug("notified star followers", "news_id", n.ID, "count", sent)
	}
}

func (s *NewsService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.PrefixHome); err != nil {
		slog.Warn("cache invalidation failed", "prefix", cache.PrefixHome, "error", err)
	}
	for _, slug := range slugs {
		if err := s.cache.Delete(ctx, cache.NewsKey(slug)); err != nil {
			slog.Warn("cache invalidation failed", "key", cache.NewsKey(slug), "error", err)
		}
	}
}
