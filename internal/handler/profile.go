// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dizistars/dizistars/internal/features"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/storage"
	"github.com/dizistars/dizistars/internal/uikit"
	"github.com/dizistars/dizistars/internal/upload"
	"github.com/dizistars/dizistars/internal/validate"
)

const redirectProfile = "/profile"

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	renderer *render.Renderer
	users    ProfileUsers
	features *features.Service
	uploader *upload.Uploader
	demo     middleware.Demo
}

// ProfileUsers saves the signed-in user's own account fields.
type ProfileUsers interface {
	UpdateUserProfile(ctx context.Context, id int64, name string) (*model.User, error)
	UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) (*model.User, error)
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(renderer *render.Renderer, users ProfileUsers, fs *features.Service, up *upload.Uploader, demo middleware.Demo) *ProfileHandler {
	return &ProfileHandler{renderer: renderer, users: users, features: fs, uploader: up, demo: demo}
}

// ProfileData is the profile page.
type ProfileData struct {
	Tab       model.ProfileTab
	Tabs      []model.ProfileTab
	State     features.State
	Unread    int
	Languages []string
	StateErr  bool
}

// Show renders /profile.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	data := ProfileData{
		Tab:       model.ParseProfileTab(r.URL.Query().Get("tab")),
		Tabs:      model.ProfileTabs,
		Languages: []string{model.LanguageTR, model.LanguageEN},
	}

	st, err := h.features.Load(r.Context(), user.ID)
	if err != nil {
		slog.Error("loading profile state failed", "user_id", user.ID, "error", err)
		data.StateErr = true
	}
	data.State = st
	data.Unread = st.UnreadCount()

	renderPage(w, r, h.renderer, "pages/profile", render.TemplateData{
		Title:       "My profile",
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Home", "/", "Profile", redirectProfile),
	})
}

type profileForm struct {
	Name string `form:"name" validate:"required,max=100"`
}

// Update saves the display name.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	back := redirectProfile + "?tab=settings"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	form := profileForm{Name: trimmedForm(r, "name")}
	if err := validate.Struct(&form); err != nil {
		flashServiceError(w, r, h.renderer, back, "update your profile", err)
		return
	}
	if _, err := h.users.UpdateUserProfile(r.Context(), middleware.GetUserID(r), form.Name); err != nil {
		flashServiceError(w, r, h.renderer, back, "update your profile", err)
		return
	}
	flashSuccess(w, r, h.renderer, back, "Profile updated.")
}

// UploadAvatar replaces the profile picture. The previous picture is
// removed only once the user row points at the new one.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	back := redirectProfile + "?tab=settings"
	user := middleware.GetUser(r)

	res, msg := receiveUpload(w, r, h.uploader, h.demo, "avatar", storage.BucketUserAvatars, "")
	if res == nil {
		flashError(w, r, h.renderer, back, msg)
		return
	}
	if _, err := h.users.UpdateUserAvatar(r.Context(), user.ID, res.URL); err != nil {
		h.uploader.DeleteURL(r.Context(), res.URL)
		flashServiceError(w, r, h.renderer, back, "save your avatar", err)
		return
	}
	if user.AvatarURL != res.URL {
		h.uploader.DeleteURL(r.Context(), user.AvatarURL)
	}
	flashSuccess(w, r, h.renderer, back, "Avatar updated.")
}

// UpdatePreferences saves notification and language settings.
func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	back := redirectProfile + "?tab=settings"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	userID := middleware.GetUserID(r)
	prefs := model.Preferences{
		EmailNotifications: r.FormValue("email_notifications") != "",
		NewsAlerts:         r.FormValue("news_alerts") != "",
		Language:           r.FormValue("language"),
	}
	if prefs.Language != model.LanguageEN {
		prefs.Language = model.LanguageTR
	}
	if _, err := h.features.UpdatePreferences(r.Context(), userID, prefs); err != nil {
		flashServiceError(w, r, h.renderer, back, "save your preferences", err)
		return
	}
	flashSuccess(w, r, h.renderer, back, "Preferences saved.")
}

// MarkNotificationRead handles POST /profile/notifications/{id}/read.
func (h *ProfileHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		h.notificationError(w, r, "Invalid notification.")
		return
	}
	st, err := h.features.MarkNotificationAsRead(r.Context(), middleware.GetUserID(r), id)
	h.notificationDone(w, r, st, err, "")
}

// MarkAllNotificationsRead handles POST /profile/notifications/read-all.
func (h *ProfileHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	st, err := h.features.MarkAllNotificationsAsRead(r.Context(), middleware.GetUserID(r))
	h.notificationDone(w, r, st, err, "All notifications marked as read.")
}

// DeleteNotification handles POST /profile/notifications/{id}/delete.
func (h *ProfileHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		h.notificationError(w, r, "Invalid notification.")
		return
	}
	st, err := h.features.ClearNotification(r.Context(), middleware.GetUserID(r), id)
	h.notificationDone(w, r, st, err, "Notification removed.")
}

func (h *ProfileHandler) notificationDone(w http.ResponseWriter, r *http.Request, st features.State, err error, msg string) {
	back := backTo(r, redirectProfile+"?tab=notifications")
	if err != nil {
		if wantsJSON(r) {
			slog.Error("updating notifications failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Could not update notifications.")
			return
		}
		flashServiceError(w, r, h.renderer, back, "update notifications", err)
		return
	}
	if wantsJSON(r) {
		writeJSONSuccess(w, map[string]any{"unread": st.UnreadCount()})
		return
	}
	if msg == "" {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	flashSuccess(w, r, h.renderer, back, msg)
}

func (h *ProfileHandler) notificationError(w http.ResponseWriter, r *http.Request, msg string) {
	if wantsJSON(r) {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}
	flashError(w, r, h.renderer, redirectProfile+"?tab=notifications", msg)
}
