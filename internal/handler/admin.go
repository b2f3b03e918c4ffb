// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers of the public site, the
// signed-in user's pages and the admin back-office.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
)

const redirectAdmin = "/admin"

// DashboardStats holds the counters shown above the tabs.
type DashboardStats struct {
	TotalStars      int64
	TotalUsers      int64
	PendingComments int64
}

// DashboardData is the tabbed admin dashboard. Only the rows of the
// selected tab are loaded.
type DashboardData struct {
	Tab   model.AdminTab
	Tabs  []model.AdminTab
	Stats DashboardStats

	Stars    []*model.Star
	News     []*model.News
	Users    []*model.User
	Comments []model.Comment
	Social   []service.StarWithLinks

	NewsStatus    model.NewsStatus
	NewsStatuses  []model.NewsStatus
	CommentStatus model.CommentStatus
	CommentStates []model.CommentStatus
	Roles         []string
	Platforms     []model.Platform

	Pagination uikit.Pagination
	LoadFailed bool
}

// AdminHandler serves the dashboard, user roles and comment moderation.
type AdminHandler struct {
	renderer *render.Renderer
	stars    *service.StarService
	news     *service.NewsService
	users    *service.UserService
	comments *service.CommentService
	events   *service.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, stars *service.StarService, news *service.NewsService, users *service.UserService, comments *service.CommentService, events *service.EventService) *AdminHandler {
	return &AdminHandler{
		renderer: renderer,
		stars:    stars,
		news:     news,
		users:    users,
		comments: comments,
		events:   events,
	}
}

// visibleTabs returns the tabs user may open.
func visibleTabs(user *model.User) []model.AdminTab {
	var tabs []model.AdminTab
	for _, t := range model.AdminTabs {
		if t.AdminOnly() && !user.IsAdmin() {
			continue
		}
		tabs = append(tabs, t)
	}
	return tabs
}

// Dashboard renders /admin?tab=...
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	ctx := r.Context()

	data := DashboardData{
		Tab:  model.ParseAdminTab(r.URL.Query().Get("tab")),
		Tabs: visibleTabs(user),
	}
	if data.Tab.AdminOnly() && !user.IsAdmin() {
		renderError(w, r, h.renderer, http.StatusForbidden, "Access denied", "Only admins can manage users.")
		return
	}

	if n, err := h.stars.CountStars(ctx); err != nil {
		slog.Error("failed to count stars", "error", err)
	} else {
		data.Stats.TotalStars = n
	}
	if n, err := h.users.CountUsers(ctx); err != nil {
		slog.Error("failed to count users", "error", err)
	} else {
		data.Stats.TotalUsers = n
	}
	if n, err := h.comments.CountByStatus(ctx, model.CommentStatusPending); err != nil {
		slog.Error("failed to count pending comments", "error", err)
	} else {
		data.Stats.PendingComments = n
	}

	page := pageFromRequest(r, adminPerPage)
	var err error
	switch data.Tab {
	case model.AdminTabStars:
		var paged service.Paged[*model.Star]
		if paged, err = h.stars.ListStars(ctx, page); err == nil {
			data.Stars = paged.Items
			data.Pagination = paginationFor(r, paged)
		}
	case model.AdminTabNews:
		data.NewsStatuses = []model.NewsStatus{model.NewsStatusDraft, model.NewsStatusPublished, model.NewsStatusArchived}
		if s := model.NewsStatus(r.URL.Query().Get("status")); s.IsValid() {
			data.NewsStatus = s
		}
		var paged service.Paged[*model.News]
		if paged, err = h.news.ListNews(ctx, data.NewsStatus, page); err == nil {
			data.News = paged.Items
			data.Pagination = paginationFor(r, paged)
		}
	case model.AdminTabUsers:
		data.Roles = []string{model.RoleUser, model.RoleEditor, model.RoleAdmin}
		var paged service.Paged[*model.User]
		if paged, err = h.users.ListUsers(ctx, page); err == nil {
			data.Users = paged.Items
			data.Pagination = paginationFor(r, paged)
		}
	case model.AdminTabComments:
		data.CommentStates = []model.CommentStatus{model.CommentStatusPending, model.CommentStatusApproved, model.CommentStatusRejected}
		data.CommentStatus = model.CommentStatusPending
		if s := model.CommentStatus(r.URL.Query().Get("status")); s.IsValid() {
			data.CommentStatus = s
		}
		var paged service.Paged[model.Comment]
		if paged, err = h.comments.ListCommentsByStatus(ctx, data.CommentStatus, page); err == nil {
			data.Comments = paged.Items
			data.Pagination = paginationFor(r, paged)
		}
	case model.AdminTabSocial:
		data.Platforms = model.Platforms
		data.Social, err = h.stars.ListSocialOverview(ctx)
	}
	if err != nil {
		slog.Error("loading dashboard tab failed", "tab", data.Tab, "error", err)
		data.LoadFailed = true
	}

	renderPage(w, r, h.renderer, "admin/dashboard", render.TemplateData{
		Title:       "Dashboard",
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Dashboard", redirectAdmin, data.Tab.Label(), ""),
	})
}

// UpdateUserRole handles POST /admin/users/{id}/role.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, redirectAdmin+"?tab=users")
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid user.")
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	actor := middleware.GetUser(r)
	if actor.ID == id {
		flashError(w, r, h.renderer, back, "You cannot change your own role.")
		return
	}

	role := r.FormValue("role")
	u, err := h.users.UpdateUserRole(r.Context(), id, role)
	if err != nil {
		flashServiceError(w, r, h.renderer, back, "change the role", err)
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo, "User role changed", &actor.ID, map[string]any{
		"target_user_id": u.ID,
		"email":          u.Email,
		"role":           u.Role,
	})
	flashSuccess(w, r, h.renderer, back, u.Name+" is now "+u.Role+".")
}

// ApproveComment handles POST /admin/comments/{id}/approve.
func (h *AdminHandler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, model.CommentStatusApproved, "Comment approved.")
}

// RejectComment handles POST /admin/comments/{id}/reject.
func (h *AdminHandler) RejectComment(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, model.CommentStatusRejected, "Comment rejected.")
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, status model.CommentStatus, msg string) {
	back := backTo(r, redirectAdmin+"?tab=comments")
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid comment.")
		return
	}
	c, err := h.comments.ModerateComment(r.Context(), id, status)
	if err != nil {
		flashServiceError(w, r, h.renderer, back, "moderate the comment", err)
		return
	}
	_ = h.events.LogCommentEvent(r.Context(), "Comment "+string(status), middleware.GetUserIDPtr(r), map[string]any{
		"comment_id":  c.ID,
		"target_type": c.TargetType,
		"target_id":   c.TargetID,
	})
	flashSuccess(w, r, h.renderer, back, msg)
}

// DeleteComment handles POST /admin/comments/{id}/delete.
func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, redirectAdmin+"?tab=comments")
	id, ok := int64Param(r, "id")
	if !ok {
		flashError(w, r, h.renderer, back, "Invalid comment.")
		return
	}
	if err := h.comments.DeleteComment(r.Context(), middleware.GetUser(r), id); err != nil {
		flashServiceError(w, r, h.renderer, back, "delete the comment", err)
		return
	}
	_ = h.events.LogCommentEvent(r.Context(), "Comment deleted", middleware.GetUserIDPtr(r), map[string]any{"comment_id": id})
	flashSuccess(w, r, h.renderer, back, "Comment deleted.")
}
