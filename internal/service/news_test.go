// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/testutil"
)

type newsFixture struct {
	db       *sql.DB
	news     *NewsService
	notifier *NotificationService
	favs     *FavoriteService
	editor   *model.User
	star     *model.Star
}

func newNewsFixture(t *testing.T) *newsFixture {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	notifier := NewNotificationService(db)
	stars := NewStarService(db, c, testImages())
	st, err := stars.CreateStar(context.Background(), StarInput{FullName: "Hande Erçel", StarType: model.StarTypeActress})
	require.NoError(t, err)

	return &newsFixture{
		db:       db,
		news:     NewNewsService(db, c, testImages(), notifier),
		notifier: notifier,
		favs:     NewFavoriteService(db),
		editor:   UserFromStore(testutil.CreateUser(t, db, "editor@example.com", model.RoleEditor)),
		star:     st,
	}
}

func TestCreateNewsDefaults(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	body := "**Hande Erçel** yeni dizisi için setlere döndü. " + strings.Repeat("Çekimler İstanbul'da sürüyor. ", 20)
	n, err := f.news.CreateNews(ctx, f.editor.ID, NewsInput{
		Title:   "Hande Erçel setlere döndü",
		Content: body,
		StarID:  &f.star.ID,
		Status:  model.NewsStatusPublished,
	})
	require.NoError(t, err)

	assert.Equal(t, "hande-ercel-setlere-dondu", n.Slug)
	assert.NotNil(t, n.PublishedAt)
	assert.Equal(t, "Hande Erçel", n.StarName)
	assert.NotContains(t, n.Excerpt, "**")
	assert.True(t, strings.HasSuffix(n.Excerpt, "…"))

	got, err := f.news.GetNewsBySlug(ctx, n.Slug)
	require.NoError(t, err)
	assert.Contains(t, string(got.ContentHTML), "<strong>Hande Erçel</strong>")
}

func TestCreateNewsValidation(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()
	missing := int64(999)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		in    NewsInput
		field string
	}{
		{"missing title", NewsInput{Content: "x", Status: model.NewsStatusDraft}, "title"},
		{"bad status", NewsInput{Title: "t", Content: "x", Status: "hidden"}, "status"},
		{"unknown star", NewsInput{Title: "t", Content: "x", Status: model.NewsStatusDraft, StarID: &missing}, "star_id"},
		{"schedule in the past", NewsInput{Title: "t", Content: "x", Status: model.NewsStatusDraft, ScheduledAt: &past}, "scheduled_at"},
		{"foreign cover", NewsInput{Title: "t", Content: "x", Status: model.NewsStatusDraft, CoverImage: "ftp://images.example.com/a.jpg"}, "cover_image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.news.CreateNews(ctx, f.editor.ID, tt.in)
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.field, apperror.Field(err))
		})
	}
}

func TestScheduledNewsPublishesAndNotifies(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	fan := UserFromStore(testutil.CreateUser(t, f.db, "fan@example.com", model.RoleUser))
	_, err := f.favs.AddFavorite(ctx, fan.ID, f.star.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	at := now.Add(time.Hour)
	n, err := f.news.CreateNews(ctx, f.editor.ID, NewsInput{
		Title:       "Yeni dizi duyuruldu",
		Content:     "Detaylar yakında.",
		StarID:      &f.star.ID,
		Status:      model.NewsStatusDraft,
		ScheduledAt: &at,
	})
	require.NoError(t, err)
	require.NotNil(t, n.ScheduledAt)
	assert.Nil(t, n.PublishedAt)

	published, err := f.news.PublishDueNews(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)

	f.news.now = func() time.Time { return now.Add(2 * time.Hour) }
	published, err = f.news.PublishDueNews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, published)

	got, err := f.news.GetNewsByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NewsStatusPublished, got.Status)
	assert.Nil(t, got.ScheduledAt)
	require.NotNil(t, got.PublishedAt)

	notes, err := f.notifier.ListNotifications(ctx, fan.ID, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationNews, notes[0].Type)
	assert.Equal(t, "New story about Hande Erçel", notes[0].Title)
	assert.Equal(t, "/news/"+n.Slug, notes[0].Link)

	// A second run finds nothing due.
	published, err = f.news.PublishDueNews(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestNewsStatusTransitions(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	n, err := f.news.CreateNews(ctx, f.editor.ID, NewsInput{Title: "Taslak", Content: "x", Status: model.NewsStatusDraft})
	require.NoError(t, err)

	n, err = f.news.PublishNews(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, n.PublishedAt)
	first := *n.PublishedAt

	n, err = f.news.ArchiveNews(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NewsStatusArchived, n.Status)
	require.NotNil(t, n.PublishedAt)

	f.news.now = func() time.Time { return first.Add(24 * time.Hour) }
	n, err = f.news.PublishNews(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(*n.PublishedAt), "republishing keeps the first publication time")

	_, err = f.news.ScheduleNews(ctx, n.ID, first)
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListNews(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	for i, st := range []model.NewsStatus{model.NewsStatusPublished, model.NewsStatusPublished, model.NewsStatusDraft, model.NewsStatusArchived} {
		_, err := f.news.CreateNews(ctx, f.editor.ID, NewsInput{
			Title:   "Haber " + string(rune('A'+i)),
			Content: "x",
			StarID:  &f.star.ID,
			Status:  st,
		})
		require.NoError(t, err)
	}

	all, err := f.news.ListNews(ctx, "", Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	pub, err := f.news.ListNews(ctx, model.NewsStatusPublished, Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pub.Total)
	assert.Len(t, pub.Items, 1)
	assert.Equal(t, 2, pub.TotalPages())

	drafts, err := f.news.ListNews(ctx, model.NewsStatusDraft, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), drafts.Total)

	latest, err := f.news.GetLatestNews(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, latest, 2)

	starNews, err := f.news.GetStarNews(ctx, f.star.ID, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), starNews.Total)
}

func TestDeleteNews(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	n, err := f.news.CreateNews(ctx, f.editor.ID, NewsInput{Title: "Silinecek", Content: "x", Status: model.NewsStatusPublished})
	require.NoError(t, err)
	comments := NewCommentService(f.db, nil)
	_, err = comments.AddComment(ctx, f.editor, model.CommentRef{Type: model.CommentTargetNews, ID: n.ID}, "ilk yorum")
	require.NoError(t, err)

	_, err = f.news.DeleteNews(ctx, n.ID)
	require.NoError(t, err)

	_, err = f.news.GetNewsBySlug(ctx, n.Slug)
	assert.True(t, IsNotFound(err))
	approved, err := comments.CountByStatus(ctx, model.CommentStatusApproved)
	require.NoError(t, err)
	assert.Zero(t, approved)
}
