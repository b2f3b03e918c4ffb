// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/scheduler"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
)

const redirectAdminJobs = "/admin/jobs"

// JobRunner is the part of the scheduler the admin pages use.
type JobRunner interface {
	List() []scheduler.JobInfo
	Trigger(ctx context.Context, name string) error
}

// SchedulerJobView represents a job for the template.
type SchedulerJobView struct {
	Name        string
	Description string
	Schedule    string
	LastRun     string
	NextRun     string
	LastError   string
}

// SchedulerHandler lists background jobs and runs them on demand.
type SchedulerHandler struct {
	renderer *render.Renderer
	jobs     JobRunner
	events   *service.EventService
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(renderer *render.Renderer, jobs JobRunner, events *service.EventService) *SchedulerHandler {
	return &SchedulerHandler{renderer: renderer, jobs: jobs, events: events}
}

// List handles GET /admin/jobs.
func (h *SchedulerHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()
	views := make([]SchedulerJobView, 0, len(jobs))
	for _, job := range jobs {
		lastRun := "-"
		if !job.LastRun.IsZero() {
			lastRun = job.LastRun.Format("2006-01-02 15:04:05")
		}
		nextRun := "-"
		if !job.NextRun.IsZero() {
			nextRun = job.NextRun.Format("2006-01-02 15:04:05")
		}
		views = append(views, SchedulerJobView{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
			LastRun:     lastRun,
			NextRun:     nextRun,
			LastError:   job.LastError,
		})
	}

	renderPage(w, r, h.renderer, "admin/jobs", render.TemplateData{
		Title:       "Scheduled jobs",
		Data:        views,
		Breadcrumbs: uikit.Crumbs("Dashboard", redirectAdmin, "Jobs", redirectAdminJobs),
	})
}

// TriggerNow handles POST /admin/jobs/{name}/run.
func (h *SchedulerHandler) TriggerNow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.jobs.Trigger(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		flashError(w, r, h.renderer, redirectAdminJobs, "Unknown job "+name+".")
		return
	case errors.Is(err, scheduler.ErrTriggerLimited):
		flashError(w, r, h.renderer, redirectAdminJobs, "This job ran moments ago. Wait a minute before running it again.")
		return
	case err != nil:
		slog.Error("failed to trigger job", "error", err, "name", name)
		flashError(w, r, h.renderer, redirectAdminJobs, "Job "+name+" failed: "+err.Error())
		return
	}

	_ = h.events.LogSystemEvent(r.Context(), model.EventLevelInfo, "Job manually triggered: "+name, map[string]any{
		"name":    name,
		"user_id": middleware.GetUserID(r),
	})
	slog.Info("scheduler job triggered", "name", name, "triggered_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectAdminJobs, "Job "+name+" finished.")
}
