// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/storage"
	"github.com/dizistars/dizistars/internal/uikit"
	"github.com/dizistars/dizistars/internal/upload"
)

// maxFilmographyRows bounds the filmography rows accepted from one form.
const maxFilmographyRows = 100

// AdminStarsHandler manages star profiles.
type AdminStarsHandler struct {
	renderer *render.Renderer
	stars    *service.StarService
	events   *service.EventService
	uploader *upload.Uploader
	demo     middleware.Demo
}

// NewAdminStarsHandler creates an AdminStarsHandler.
func NewAdminStarsHandler(renderer *render.Renderer, stars *service.StarService, events *service.EventService, up *upload.Uploader, demo middleware.Demo) *AdminStarsHandler {
	return &AdminStarsHandler{renderer: renderer, stars: stars, events: events, uploader: up, demo: demo}
}

// StarFormData is the add/edit star form.
type StarFormData struct {
	Star      *model.Star
	Input     service.StarInput
	IsNew     bool
	Tab       model.StarFormTab
	Tabs      []model.StarFormTab
	Types     []model.StarType
	Platforms []model.Platform
	Social    map[model.Platform]string
	Photos    []GalleryPhoto
	Errors    map[string]string
	MaxMB     int64
}

func (h *AdminStarsHandler) formData(star *model.Star, tab model.StarFormTab) StarFormData {
	data := StarFormData{
		Star:      star,
		IsNew:     star == nil,
		Tab:       tab,
		Tabs:      model.StarFormTabs,
		Types:     []model.StarType{model.StarTypeActor, model.StarTypeActress},
		Platforms: model.Platforms,
		Social:    map[model.Platform]string{},
		MaxMB:     h.uploader.MaxBytes() >> 20,
	}
	if star == nil {
		data.Tabs = []model.StarFormTab{model.StarFormBasic}
		data.Tab = model.StarFormBasic
		data.Input.StarType = model.StarTypeActor
		return data
	}
	data.Input = starInputFrom(star)
	for _, l := range star.SocialLinks {
		data.Social[l.Platform] = l.URL
	}
	for i, img := range star.GalleryImages {
		data.Photos = append(data.Photos, GalleryPhoto{Index: i + 1, URL: img, Thumb: upload.ThumbURL(img)})
	}
	return data
}

func (h *AdminStarsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data StarFormData) {
	title, crumb := "Add star", "New"
	if !data.IsNew {
		title, crumb = "Edit "+data.Star.FullName, data.Star.FullName
	}
	err := h.renderer.RenderStatus(w, r, status, "admin/star_form", render.TemplateData{
		Title:       title,
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Dashboard", redirectAdmin, "Stars", redirectAdmin+"?tab=stars", crumb, ""),
	})
	if err != nil {
		logAndInternalError(w, "render error", "template", "admin/star_form", "error", err)
	}
}

// starInputFrom copies the editable fields of s.
func starInputFrom(s *model.Star) service.StarInput {
	return service.StarInput{
		FullName:        s.FullName,
		Slug:            s.Slug,
		ProfileImageURL: s.ProfileImageURL,
		StarType:        s.StarType,
		CurrentProject:  s.CurrentProject,
		BirthDate:       s.BirthDate,
		BirthPlace:      s.BirthPlace,
		Biography:       s.Biography,
		Education:       s.Education,
		Filmography:     s.Filmography,
		Flags: model.StarFlags{
			IsFeatured:    s.IsFeatured,
			IsTrending:    s.IsTrending,
			IsRising:      s.IsRising,
			IsInfluential: s.IsInfluential,
		},
	}
}

// applyBasic reads the basic tab into in.
func applyBasic(r *http.Request, in *service.StarInput) {
	in.FullName = trimmedForm(r, "full_name")
	in.Slug = trimmedForm(r, "slug")
	in.StarType = model.StarType(r.FormValue("star_type"))
	in.CurrentProject = trimmedForm(r, "current_project")
	in.ProfileImageURL = trimmedForm(r, "profile_image_url")
	in.Flags = model.StarFlags{
		IsFeatured:    r.FormValue("is_featured") != "",
		IsTrending:    r.FormValue("is_trending") != "",
		IsRising:      r.FormValue("is_rising") != "",
		IsInfluential: r.FormValue("is_influential") != "",
	}
}

// applyDetails reads the details tab into in.
func applyDetails(r *http.Request, in *service.StarInput) {
	in.BirthDate = trimmedForm(r, "birth_date")
	in.BirthPlace = trimmedForm(r, "birth_place")
	in.Biography = strings.TrimSpace(r.FormValue("biography"))
	in.Education = trimmedForm(r, "education")
}

// parseFilmography reads the repeated film_* fields. Rows without a title
// are dropped.
func parseFilmography(r *http.Request) ([]model.FilmographyEntry, error) {
	titles := r.Form["film_title"]
	roles := r.Form["film_role"]
	years := r.Form["film_year"]
	streaming := r.Form["film_streaming"]
	if len(titles) > maxFilmographyRows {
		return nil, apperror.ValidationFailed("filmography", fmt.Sprintf("At most %d productions can be listed.", maxFilmographyRows))
	}

	at := func(s []string, i int) string {
		if i < len(s) {
			return strings.TrimSpace(s[i])
		}
		return ""
	}
	entries := make([]model.FilmographyEntry, 0, len(titles))
	for i := range titles {
		e := model.FilmographyEntry{
			Title:       at(titles, i),
			Role:        at(roles, i),
			StreamingOn: at(streaming, i),
		}
		if e.Title == "" {
			continue
		}
		if y := at(years, i); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil || year < 1900 || year > 2100 {
				return nil, apperror.ValidationFailed("filmography", fmt.Sprintf("Year of %q must be between 1900 and 2100.", e.Title))
			}
			e.Year = year
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// New renders the empty form.
func (h *AdminStarsHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, h.formData(nil, model.StarFormBasic))
}

// Create handles POST /admin/stars.
func (h *AdminStarsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/admin/stars/new") {
		return
	}
	data := h.formData(nil, model.StarFormBasic)
	applyBasic(r, &data.Input)

	star, err := h.stars.CreateStar(r.Context(), data.Input)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			flashServiceError(w, r, h.renderer, "/admin/stars/new", "create the star", err)
			return
		}
		data.Errors = apperror.FieldErrors(err)
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	_ = h.events.LogStarEvent(r.Context(), "Star created", middleware.GetUserIDPtr(r), map[string]any{
		"star_id": star.ID,
		"name":    star.FullName,
	})
	flashSuccess(w, r, h.renderer, editStarURL(star.ID, model.StarFormDetails),
		star.FullName+" was created. Add the details next.")
}

// Edit renders /admin/stars/{id}/edit?tab=...
func (h *AdminStarsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	star, ok := h.loadStar(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, h.formData(star, model.ParseStarFormTab(r.URL.Query().Get("tab"))))
}

// Update handles POST /admin/stars/{id}. Only the fields of the posted tab
// change; the rest of the profile is kept.
func (h *AdminStarsHandler) Update(w http.ResponseWriter, r *http.Request) {
	star, ok := h.loadStar(w, r)
	if !ok {
		return
	}
	tab := model.ParseStarFormTab(r.FormValue("tab"))
	back := editStarURL(star.ID, tab)
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	ctx := r.Context()
	data := h.formData(star, tab)
	var err error
	switch tab {
	case model.StarFormBasic:
		applyBasic(r, &data.Input)
		if _, err = h.stars.UpdateStar(ctx, star.ID, data.Input); err == nil {
			_, err = h.stars.SetStarFlags(ctx, star.ID, data.Input.Flags)
		}
	case model.StarFormDetails:
		applyDetails(r, &data.Input)
		_, err = h.stars.UpdateStar(ctx, star.ID, data.Input)
	case model.StarFormFilmography:
		if data.Input.Filmography, err = parseFilmography(r); err == nil {
			_, err = h.stars.UpdateStar(ctx, star.ID, data.Input)
		}
	case model.StarFormSocial:
		values := make(map[model.Platform]string, len(model.Platforms))
		for _, p := range model.Platforms {
			values[p] = r.FormValue(string(p))
			data.Social[p] = values[p]
		}
		_, err = h.stars.SetStarSocialMedia(ctx, star.ID, values)
	case model.StarFormGallery:
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			flashServiceError(w, r, h.renderer, back, "save the star", err)
			return
		}
		data.Errors = apperror.FieldErrors(err)
		h.renderForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	_ = h.events.LogStarEvent(ctx, "Star updated", middleware.GetUserIDPtr(r), map[string]any{
		"star_id": star.ID,
		"tab":     string(tab),
	})
	flashSuccess(w, r, h.renderer, back, tab.Label()+" saved.")
}

// UploadProfileImage handles POST /admin/stars/{id}/image.
func (h *AdminStarsHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	star, ok := h.loadStar(w, r)
	if !ok {
		return
	}
	back := editStarURL(star.ID, model.StarFormBasic)

	res, msg := receiveUpload(w, r, h.uploader, h.demo, "image", storage.BucketStarImages, "")
	if res == nil {
		flashError(w, r, h.renderer, back, msg)
		return
	}
	previous, err := h.stars.SetStarProfileImage(r.Context(), star.ID, res.URL)
	if err != nil {
		h.uploader.DeleteURL(r.Context(), res.URL)
		flashServiceError(w, r, h.renderer, back, "save the image", err)
		return
	}
	h.uploader.DeleteURL(r.Context(), previous)
	flashSuccess(w, r, h.renderer, back, "Profile image updated.")
}

// UploadGalleryImage handles POST /admin/stars/{id}/gallery.
func (h *AdminStarsHandler) UploadGalleryImage(w http.ResponseWriter, r *http.Request) {
	star, ok := h.loadStar(w, r)
	if !ok {
		return
	}
	back := editStarURL(star.ID, model.StarFormGallery)

	res, msg := receiveUpload(w, r, h.uploader, h.demo, "image", storage.BucketGalleryImages, "")
	if res == nil {
		flashError(w, r, h.renderer, back, msg)
		return
	}
	if _, err := h.stars.AddGalleryImage(r.Context(), star.ID, res.URL); err != nil {
		h.uploader.DeleteURL(r.Context(), res.URL)
		flashServiceError(w, r, h.renderer, back, "add the photo", err)
		return
	}
	flashSuccess(w, r, h.renderer, back, "Photo added to the gallery.")
}

// RemoveGalleryImage handles POST /admin/stars/{id}/gallery/delete.
func (h *AdminStarsHandler) RemoveGalleryImage(w http.ResponseWriter, r *http.Request) {
	star, ok := h.loadStar(w, r)
	if !ok {
		return
	}
	back := editStarURL(star.ID, model.StarFormGallery)
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	image := r.FormValue("image")
	if _, err := h.stars.RemoveGalleryImage(r.Context(), star.ID, image); err != nil {
		flashServiceError(w, r, h.renderer, back, "remove the photo", err)
		return
	}
	h.uploader.DeleteURL(r.Context(), image)
	flashSuccess(w, r, h.renderer, back, "Photo removed.")
}

// Delete handles POST /admin/stars/{id}/delete.
func (h *AdminStarsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	back := redirectAdmin + "?tab=stars"
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid star.")
		return
	}
	star, err := h.stars.DeleteStar(r.Context(), id)
	if err != nil {
		flashServiceError(w, r, h.renderer, back, "delete the star", err)
		return
	}
	h.uploader.DeleteURL(r.Context(), star.ProfileImageURL)
	for _, img := range star.GalleryImages {
		h.uploader.DeleteURL(r.Context(), img)
	}

	_ = h.events.LogStarEvent(r.Context(), "Star deleted", middleware.GetUserIDPtr(r), map[string]any{
		"star_id": star.ID,
		"name":    star.FullName,
	})
	flashSuccess(w, r, h.renderer, back, star.FullName+" was deleted.")
}

func (h *AdminStarsHandler) loadStar(w http.ResponseWriter, r *http.Request) (*model.Star, bool) {
	id, ok := int64Param(r, "id")
	if !ok {
		notFoundPage(w, r, h.renderer, "Star")
		return nil, false
	}
	star, err := h.stars.GetStarByID(r.Context(), id)
	if err != nil {
		handleLoadError(w, r, h.renderer, "Star", err)
		return nil, false
	}
	return star, true
}

func editStarURL(id int64, tab model.StarFormTab) string {
	return fmt.Sprintf("/admin/stars/%d/edit?tab=%s", id, tab)
}
