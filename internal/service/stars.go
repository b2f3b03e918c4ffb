// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
	"github.com/dizistars/dizistars/internal/util"
	"github.com/dizistars/dizistars/internal/validate"
)

// starCacheTTL bounds how long a profile may lag behind an edit made on
// another instance sharing the Redis cache.
const starCacheTTL = 10 * time.Minute

// StarInput is the editable part of a star profile, as posted by the admin form.
type StarInput struct {
	FullName        string                   `form:"full_name" validate:"required,max=120"`
	Slug            string                   `form:"slug" validate:"max=80"`
	ProfileImageURL string                   `form:"profile_image_url" validate:"max=2048"`
	StarType        model.StarType           `form:"star_type" validate:"required,startype"`
	CurrentProject  string                   `form:"current_project" validate:"max=200"`
	BirthDate       string                   `form:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	BirthPlace      string                   `form:"birth_place" validate:"max=120"`
	Biography       string                   `form:"biography" validate:"max=20000"`
	Education       string                   `form:"education" validate:"max=500"`
	Filmography     []model.FilmographyEntry `form:"filmography" validate:"dive"`
	Flags           model.StarFlags          `form:"-"`
}

// StarService manages star profiles.
type StarService struct {
	db      *sql.DB
	queries *store.Queries
	cache   cache.Cache
	profile *cache.TypedCache[model.Star]
	images  ImagePolicy
}

// NewStarService creates a StarService. c may be nil to disable caching.
func NewStarService(db *sql.DB, c cache.Cache, images ImagePolicy) *StarService {
	s := &StarService{
		db:      db,
		queries: store.New(db),
		cache:   c,
		images:  images,
	}
	if c != nil {
		s.profile = cache.NewTypedCache[model.Star](c, starCacheTTL)
	}
	return s
}

// starFromStore converts a row, decoding the JSON columns.
func starFromStore(r store.Star) (*model.Star, error) {
	st := &model.Star{
		ID:              r.ID,
		FullName:        r.FullName,
		Slug:            r.Slug,
		ProfileImageURL: r.ProfileImageUrl,
		StarType:        model.StarType(r.StarType),
		CurrentProject:  r.CurrentProject,
		BirthDate:       r.BirthDate,
		BirthPlace:      r.BirthPlace,
		Biography:       r.Biography,
		Education:       r.Education,
		IsFeatured:      r.IsFeatured,
		IsTrending:      r.IsTrending,
		IsRising:        r.IsRising,
		IsInfluential:   r.IsInfluential,
		Filmography:     []model.FilmographyEntry{},
		GalleryImages:   []string{},
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Filmography != "" {
		if err := json.Unmarshal([]byte(r.Filmography), &st.Filmography); err != nil {
			return nil, fmt.Errorf("decoding filmography of star %d: %w", r.ID, err)
		}
	}
	if r.GalleryImages != "" {
		if err := json.Unmarshal([]byte(r.GalleryImages), &st.GalleryImages); err != nil {
			return nil, fmt.Errorf("decoding gallery of star %d: %w", r.ID, err)
		}
	}
	return st, nil
}

func starsFromStore(rows []store.Star) ([]*model.Star, error) {
	stars := make([]*model.Star, 0, len(rows))
	for _, r := range rows {
		st, err := starFromStore(r)
		if err != nil {
			return nil, err
		}
		stars = append(stars, st)
	}
	return stars, nil
}

func socialLinksFromStore(rows []store.StarSocialLink) []model.SocialLink {
	links := make([]model.SocialLink, 0, len(rows))
	for _, r := range rows {
		links = append(links, model.SocialLink{
			ID:       r.ID,
			StarID:   r.StarID,
			Platform: model.Platform(r.Platform),
			URL:      r.Url,
		})
	}
	return links
}

func (s *StarService) listBy(ctx context.Context, what string, fn func(context.Context, int64) ([]store.Star, error), limit int) ([]*model.Star, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	rows, err := fn(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("loading %s stars: %w", what, err)
	}
	return starsFromStore(rows)
}

// GetFeaturedStars returns stars flagged as featured.
func (s *StarService) GetFeaturedStars(ctx context.Context, limit int) ([]*model.Star, error) {
	return s.listBy(ctx, "featured", s.queries.GetFeaturedStars, limit)
}

// GetTrendingStars returns stars flagged as trending.
func (s *StarService) GetTrendingStars(ctx context.Context, limit int) ([]*model.Star, error) {
	return s.listBy(ctx, "trending", s.queries.GetTrendingStars, limit)
}

// GetRisingStars returns stars flagged as rising.
func (s *StarService) GetRisingStars(ctx context.Context, limit int) ([]*model.Star, error) {
	return s.listBy(ctx, "rising", s.queries.GetRisingStars, limit)
}

// GetInfluentialStars returns stars flagged as influential.
func (s *StarService) GetInfluentialStars(ctx context.Context, limit int) ([]*model.Star, error) {
	return s.listBy(ctx, "influential", s.queries.GetInfluentialStars, limit)
}

// GetStarByID returns a star with its social links.
func (s *StarService) GetStarByID(ctx context.Context, id int64) (*model.Star, error) {
	row, err := s.queries.GetStarByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "star", id)
	}
	return s.withLinks(ctx, row)
}

// GetStarBySlug returns a star with its social links, read through the cache.
func (s *StarService) GetStarBySlug(ctx context.Context, slug string) (*model.Star, error) {
	load := func(ctx context.Context) (model.Star, error) {
		row, err := s.queries.GetStarBySlug(ctx, slug)
		if err != nil {
			return model.Star{}, notFound(err, "star", slug)
		}
		st, err := s.withLinks(ctx, row)
		if err != nil {
			return model.Star{}, err
		}
		return *st, nil
	}
	if s.profile == nil {
		st, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return &st, nil
	}
	st, err := s.profile.GetOrSet(ctx, cache.StarKey(slug), load)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetStar resolves a route parameter that is either a numeric id or a slug.
func (s *StarService) GetStar(ctx context.Context, idOrSlug string) (*model.Star, error) {
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		return s.GetStarByID(ctx, id)
	}
	return s.GetStarBySlug(ctx, idOrSlug)
}

func (s *StarService) withLinks(ctx context.Context, row store.Star) (*model.Star, error) {
	st, err := starFromStore(row)
	if err != nil {
		return nil, err
	}
	links, err := s.queries.ListStarSocialLinks(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("loading social links of star %d: %w", row.ID, err)
	}
	st.SocialLinks = socialLinksFromStore(links)
	return st, nil
}

// ListStars returns one page of stars ordered by name.
func (s *StarService) ListStars(ctx context.Context, page Page) (Paged[*model.Star], error) {
	rows, err := s.queries.ListStars(ctx, store.ListStarsParams{Limit: page.Limit(), Offset: page.Offset()})
	if err != nil {
		return Paged[*model.Star]{}, fmt.Errorf("listing stars: %w", err)
	}
	stars, err := starsFromStore(rows)
	if err != nil {
		return Paged[*model.Star]{}, err
	}
	total, err := s.CountStars(ctx)
	if err != nil {
		return Paged[*model.Star]{}, err
	}
	return Paged[*model.Star]{Items: stars, Total: total, Page: page.normalize()}, nil
}

// ListAllStars returns every star. The directory page filters this list in memory.
func (s *StarService) ListAllStars(ctx context.Context) ([]*model.Star, error) {
	rows, err := s.queries.ListAllStars(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stars: %w", err)
	}
	return starsFromStore(rows)
}

// CountStars returns the number of stars.
func (s *StarService) CountStars(ctx context.Context) (int64, error) {
	n, err := s.queries.CountStars(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting stars: %w", err)
	}
	return n, nil
}

func (s *StarService) checkInput(in *StarInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Slug = strings.TrimSpace(in.Slug)
	in.ProfileImageURL = strings.TrimSpace(in.ProfileImageURL)
	if err := validate.Struct(in); err != nil {
		return err
	}
	return s.images.Check("profile_image_url", in.ProfileImageURL)
}

func (s *StarService) slugFor(ctx context.Context, in StarInput, id int64) (string, error) {
	base := in.Slug
	if base == "" {
		base = in.FullName
	}
	base = util.Slugify(base)
	if base == "" {
		return "", apperror.ValidationFailed("slug", "Slug could not be derived from the name.")
	}
	return util.UniqueSlug(ctx, base, func(ctx context.Context, slug string) (bool, error) {
		return s.queries.StarSlugExists(ctx, store.StarSlugExistsParams{Slug: slug, ID: id})
	})
}

// CreateStar validates in and inserts a new star. The slug is derived from
// the name when empty and made unique with a numeric suffix.
func (s *StarService) CreateStar(ctx context.Context, in StarInput) (*model.Star, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}
	slug, err := s.slugFor(ctx, in, 0)
	if err != nil {
		return nil, err
	}
	filmography, err := json.Marshal(nonNil(in.Filmography))
	if err != nil {
		return nil, fmt.Errorf("encoding filmography: %w", err)
	}
	now := time.Now().UTC()
	row, err := s.queries.CreateStar(ctx, store.CreateStarParams{
		FullName:        in.FullName,
		Slug:            slug,
		ProfileImageUrl: in.ProfileImageURL,
		StarType:        string(in.StarType),
		CurrentProject:  in.CurrentProject,
		BirthDate:       in.BirthDate,
		BirthPlace:      in.BirthPlace,
		Biography:       in.Biography,
		Education:       in.Education,
		IsFeatured:      in.Flags.IsFeatured,
		IsTrending:      in.Flags.IsTrending,
		IsRising:        in.Flags.IsRising,
		IsInfluential:   in.Flags.IsInfluential,
		Filmography:     string(filmography),
		GalleryImages:   "[]",
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating star: %w", err)
	}
	s.invalidate(ctx)
	return starFromStore(row)
}

// UpdateStar replaces the editable fields of a star. Flags and gallery are
// changed through SetStarFlags and the gallery operations.
func (s *StarService) UpdateStar(ctx context.Context, id int64, in StarInput) (*model.Star, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}
	old, err := s.queries.GetStarByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "star", id)
	}
	slug, err := s.slugFor(ctx, in, id)
	if err != nil {
		return nil, err
	}
	filmography, err := json.Marshal(nonNil(in.Filmography))
	if err != nil {
		return nil, fmt.Errorf("encoding filmography: %w", err)
	}
	row, err := s.queries.UpdateStar(ctx, store.UpdateStarParams{
		FullName:        in.FullName,
		Slug:            slug,
		ProfileImageUrl: in.ProfileImageURL,
		StarType:        string(in.StarType),
		CurrentProject:  in.CurrentProject,
		BirthDate:       in.BirthDate,
		BirthPlace:      in.BirthPlace,
		Biography:       in.Biography,
		Education:       in.Education,
		Filmography:     string(filmography),
		UpdatedAt:       time.Now().UTC(),
		ID:              id,
	})
	if err != nil {
		return nil, notFound(err, "star", id)
	}
	s.invalidate(ctx, old.Slug, row.Slug)
	if old.FullName != row.FullName || old.Slug != row.Slug || old.ProfileImageUrl != row.ProfileImageUrl {
		s.invalidateUserStates(ctx)
	}
	return starFromStore(row)
}

// DeleteStar removes a star with its social links, favorites and comments,
// and returns the deleted profile so callers can clean up its images.
func (s *StarService) DeleteStar(ctx context.Context, id int64) (*model.Star, error) {
	row, err := s.queries.GetStarByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "star", id)
	}
	st, err := starFromStore(row)
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
		TargetType: string(model.CommentTargetStar),
		TargetID:   id,
	}); err != nil {
		return nil, fmt.Errorf("deleting comments of star %d: %w", id, err)
	}
	if err := qtx.DeleteStar(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting star %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing star delete: %w", err)
	}
	s.invalidate(ctx, row.Slug)
	s.invalidateUserStates(ctx)
	return st, nil
}

// SetStarFlags updates the home page placement flags.
func (s *StarService) SetStarFlags(ctx context.Context, id int64, flags model.StarFlags) (*model.Star, error) {
	row, err := s.queries.SetStarFlags(ctx, store.SetStarFlagsParams{
		IsFeatured:    flags.IsFeatured,
		IsTrending:    flags.IsTrending,
		IsRising:      flags.IsRising,
		IsInfluential: flags.IsInfluential,
		UpdatedAt:     time.Now().UTC(),
		ID:            id,
	})
	if err != nil {
		return nil, notFound(err, "star", id)
	}
	s.invalidate(ctx, row.Slug)
	return starFromStore(row)
}

// SetStarProfileImage stores a new profile image URL and returns the previous one.
func (s *StarService) SetStarProfileImage(ctx context.Context, id int64, imageURL string) (string, error) {
	if err := s.images.Check("profile_image_url", imageURL); err != nil {
		return "", err
	}
	row, err := s.queries.GetStarByID(ctx, id)
	if err != nil {
		return "", notFound(err, "star", id)
	}
	if err := s.queries.SetStarProfileImage(ctx, store.SetStarProfileImageParams{
		ProfileImageUrl: imageURL,
		UpdatedAt:       time.Now().UTC(),
		ID:              id,
	}); err != nil {
		return "", fmt.Errorf("setting profile image of star %d: %w", id, err)
	}
	s.invalidate(ctx, row.Slug)
	s.invalidateUserStates(ctx)
	return row.ProfileImageUrl, nil
}

// GetStarSocialMedia returns the star's social links in platform order.
func (s *StarService) GetStarSocialMedia(ctx context.Context, starID int64) ([]model.SocialLink, error) {
	rows, err := s.queries.ListStarSocialLinks(ctx, starID)
	if err != nil {
		return nil, fmt.Errorf("loading social links of star %d: %w", starID, err)
	}
	links := socialLinksFromStore(rows)
	slices.SortFunc(links, func(a, b model.SocialLink) int {
		return slices.Index(model.Platforms, a.Platform) - slices.Index(model.Platforms, b.Platform)
	})
	return links, nil
}

// SetStarSocialMedia replaces the star's links. values maps each platform to
// a profile URL or bare handle; empty values remove the platform. Every
// invalid value is reported and nothing is written.
func (s *StarService) SetStarSocialMedia(ctx context.Context, starID int64, values map[model.Platform]string) ([]model.SocialLink, error) {
	row, err := s.queries.GetStarByID(ctx, starID)
	if err != nil {
		return nil, notFound(err, "star", starID)
	}

	normalized := make(map[model.Platform]string, len(values))
	fields := make(map[string]string)
	for p, v := range values {
		if !p.IsValid() {
			fields[string(p)] = "Unsupported platform."
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		url, ok := model.NormalizeSocialURL(p, v)
		if !ok {
			fields[string(p)] = fmt.Sprintf("Enter a valid %s profile URL or handle.", p)
			continue
		}
		normalized[p] = url
	}
	if len(fields) > 0 {
		appErr := &apperror.AppError{Err: apperror.ErrValidation, Fields: fields}
		for _, p := range model.Platforms {
			if msg, ok := fields[string(p)]; ok {
				appErr.Field, appErr.Message = string(p), msg
				break
			}
		}
		if appErr.Message == "" {
			appErr.Message = "Unsupported platform."
		}
		return nil, appErr
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	for _, p := range model.Platforms {
		if url, ok := normalized[p]; ok {
			err = qtx.UpsertStarSocialLink(ctx, store.UpsertStarSocialLinkParams{StarID: starID, Platform: string(p), Url: url})
		} else {
			err = qtx.DeleteStarSocialLink(ctx, store.DeleteStarSocialLinkParams{StarID: starID, Platform: string(p)})
		}
		if err != nil {
			return nil, fmt.Errorf("saving %s link of star %d: %w", p, starID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing social links: %w", err)
	}
	s.invalidate(ctx, row.Slug)
	return s.GetStarSocialMedia(ctx, starID)
}

// StarWithLinks pairs a star with its links for the admin social view.
type StarWithLinks struct {
	Star  *model.Star
	Links map[model.Platform]string
}

// ListSocialOverview returns every star with its links keyed by platform.
func (s *StarService) ListSocialOverview(ctx context.Context) ([]StarWithLinks, error) {
	stars, err := s.ListAllStars(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListAllSocialLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing social links: %w", err)
	}
	byStar := make(map[int64]map[model.Platform]string)
	for _, r := range rows {
		if byStar[r.StarID] == nil {
			byStar[r.StarID] = make(map[model.Platform]string)
		}
		byStar[r.StarID][model.Platform(r.Platform)] = r.Url
	}
	out := make([]StarWithLinks, 0, len(stars))
	for _, st := range stars {
		links := byStar[st.ID]
		if links == nil {
			links = map[model.Platform]string{}
		}
		out = append(out, StarWithLinks{Star: st, Links: links})
	}
	return out, nil
}

// AddGalleryImage appends imageURL to the star's gallery. Adding an image
// that is already present is a no-op.
func (s *StarService) AddGalleryImage(ctx context.Context, starID int64, imageURL string) (*model.Star, error) {
	if err := s.images.Check("gallery_image", imageURL); err != nil {
		return nil, err
	}
	if imageURL == "" {
		return nil, apperror.ValidationFailed("gallery_image", "Image URL is required.")
	}
	return s.updateGallery(ctx, starID, func(images []string) []string {
		if slices.Contains(images, imageURL) {
			return images
		}
		return append(images, imageURL)
	})
}

// RemoveGalleryImage drops imageURL from the star's gallery.
func (s *StarService) RemoveGalleryImage(ctx context.Context, starID int64, imageURL string) (*model.Star, error) {
	return s.updateGallery(ctx, starID, func(images []string) []string {
		return slices.DeleteFunc(images, func(u string) bool { return u == imageURL })
	})
}

func (s *StarService) updateGallery(ctx context.Context, starID int64, change func([]string) []string) (*model.Star, error) {
	row, err := s.queries.GetStarByID(ctx, starID)
	if err != nil {
		return nil, notFound(err, "star", starID)
	}
	st, err := starFromStore(row)
	if err != nil {
		return nil, err
	}
	st.GalleryImages = nonNil(change(st.GalleryImages))
	encoded, err := json.Marshal(st.GalleryImages)
	if err != nil {
		return nil, fmt.Errorf("encoding gallery: %w", err)
	}
	now := time.Now().UTC()
	if err := s.queries.SetStarGallery(ctx, store.SetStarGalleryParams{
		GalleryImages: string(encoded),
		UpdatedAt:     now,
		ID:            starID,
	}); err != nil {
		return nil, fmt.Errorf("saving gallery of star %d: %w", starID, err)
	}
	st.UpdatedAt = now
	s.invalidate(ctx, row.Slug)
	return st, nil
}

// invalidate drops the home sections and the given profiles from the cache.
func (s *StarService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.PrefixHome); err != nil {
		slog.Warn("cache invalidation failed", "prefix", cache.PrefixHome, "error", err)
	}
	for _, slug := range slugs {
		if err := s.cache.Delete(ctx, cache.StarKey(slug)); err != nil {
			slog.Warn("cache invalidation failed", "key", cache.StarKey(slug), "error", err)
		}
	}
}

// invalidateUserStates drops every cached user state. Favorites carry the
// star's name, slug and image.
func (s *StarService) invalidateUserStates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.PrefixUser); err != nil {
		slog.Warn("cache invalidation failed", "prefix", cache.PrefixUser, "error", err)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
