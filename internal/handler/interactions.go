// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/features"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
)

// StarLookup resolves the star behind a favorite.
type StarLookup interface {
	GetStarByID(ctx context.Context, id int64) (*model.Star, error)
}

// InteractionsHandler handles comments and favorites posted by signed-in users.
type InteractionsHandler struct {
	renderer *render.Renderer
	features *features.Service
	stars    StarLookup
}

// NewInteractionsHandler creates an InteractionsHandler.
func NewInteractionsHandler(renderer *render.Renderer, fs *features.Service, stars StarLookup) *InteractionsHandler {
	return &InteractionsHandler{renderer: renderer, features: fs, stars: stars}
}

// AddComment handles POST /comments.
func (h *InteractionsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectHome) {
		return
	}
	user := middleware.GetUser(r)
	back := backTo(r, redirectHome)

	targetID, err := strconv.ParseInt(r.FormValue("target_id"), 10, 64)
	ref := model.CommentRef{Type: model.CommentTarget(r.FormValue("target_type")), ID: targetID}
	if err != nil || !ref.Type.IsValid() {
		flashError(w, r, h.renderer, back, "Invalid comment target.")
		return
	}

	c, err := h.features.AddComment(r.Context(), user, ref, r.FormValue("content"))
	if err != nil {
		flashServiceError(w, r, h.renderer, back+"#comments", "post your comment", err)
		return
	}

	slog.Info("comment posted", "comment_id", c.ID, "user_id", user.ID, "target", ref.Type, "target_id", ref.ID)
	msg := "Your comment has been posted."
	if c.Status == model.CommentStatusPending {
		msg = "Thanks! Your comment will appear once a moderator approves it."
	}
	flashSuccess(w, r, h.renderer, back+"#comments", msg)
}

// DeleteComment handles POST /comments/{id}/delete. Authors may delete
// their own comments; staff may delete any.
func (h *InteractionsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, redirectHome)
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid comment.")
		return
	}
	if err := h.features.DeleteComment(r.Context(), middleware.GetUser(r), id); err != nil {
		flashServiceError(w, r, h.renderer, back, "delete the comment", err)
		return
	}
	flashSuccess(w, r, h.renderer, back, "Comment deleted.")
}

// AddFavorite handles POST /favorites.
func (h *InteractionsHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectHome) {
		return
	}
	userID := middleware.GetUserID(r)
	back := backTo(r, "/profile?tab=favorites")

	starID, err := strconv.ParseInt(r.FormValue("star_id"), 10, 64)
	if err != nil || starID <= 0 {
		h.favoriteError(w, r, back, apperror.ValidationFailed("star_id", "Invalid star."))
		return
	}
	star, err := h.stars.GetStarByID(r.Context(), starID)
	if err != nil {
		h.favoriteError(w, r, back, err)
		return
	}

	st, err := h.features.AddToFavorites(r.Context(), userID, features.FavoriteInput{
		StarID: star.ID,
		Title:  star.FullName,
		Image:  star.ProfileImageURL,
	})
	if err != nil {
		h.favoriteError(w, r, back, err)
		return
	}

	if wantsJSON(r) {
		writeJSONSuccess(w, map[string]any{"favorite": true, "count": len(st.Favorites)})
		return
	}
	flashSuccess(w, r, h.renderer, back, star.FullName+" was added to your favorites.")
}

// RemoveFavorite handles POST /favorites/{starID}/delete.
func (h *InteractionsHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/profile?tab=favorites")
	starID, ok := int64Param(r, "starID")
	if !ok {
		h.favoriteError(w, r, back, apperror.ValidationFailed("star_id", "Invalid star."))
		return
	}

	st, err := h.features.RemoveFromFavorites(r.Context(), middleware.GetUserID(r), starID)
	if err != nil {
		h.favoriteError(w, r, back, err)
		return
	}

	if wantsJSON(r) {
		writeJSONSuccess(w, map[string]any{"favorite": false, "count": len(st.Favorites)})
		return
	}
	flashSuccess(w, r, h.renderer, back, "Removed from your favorites.")
}

func (h *InteractionsHandler) favoriteError(w http.ResponseWriter, r *http.Request, back string, err error) {
	if wantsJSON(r) {
		status := apperror.HTTPStatus(err)
		msg := apperror.Message(err, "Could not update favorites.")
		if status == http.StatusInternalServerError {
			slog.Error("updating favorites failed", "error", err)
			msg = "Could not update favorites."
		}
		writeJSONError(w, status, msg)
		return
	}
	if errors.Is(err, apperror.ErrNotFound) {
		flashError(w, r, h.renderer, back, "That star no longer exists.")
		return
	}
	flashServiceError(w, r, h.renderer, back, "update favorites", err)
}

// trimmedForm returns the trimmed form value of key.
func trimmedForm(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
