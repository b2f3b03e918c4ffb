// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
)

// eventsLimit is how many of the newest events the activity log shows.
const eventsLimit = 200

// EventsHandler shows the audit log.
type EventsHandler struct {
	renderer *render.Renderer
	events   *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(renderer *render.Renderer, events *service.EventService) *EventsHandler {
	return &EventsHandler{renderer: renderer, events: events}
}

// EventView is one row of the log.
type EventView struct {
	ID          int64
	Level       string
	Category    string
	Message     string
	IPAddress   string
	UserID      int64
	Details     string // Formatted metadata as readable text
	DetailsLong bool   // True if details exceed display threshold
	CreatedAt   string
}

// detailsLengthThreshold is the max chars before details are collapsible
const detailsLengthThreshold = 80

// formatMetadata converts JSON metadata to readable text format.
// Example: {"path":"/admin","error":"not found"} -> "error: not found, path: /admin"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata
	}
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}
	return strings.Join(parts, ", ")
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events     []EventView
	Level      string
	Category   string
	Levels     []string
	Categories []string
	Failed     bool
}

// List handles GET /admin/events?level=&category=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	data := EventsListData{
		Level:    r.URL.Query().Get("level"),
		Category: r.URL.Query().Get("category"),
		Levels:   []string{model.EventLevelInfo, model.EventLevelWarning, model.EventLevelError},
		Categories: []string{
			model.EventCategoryAuth, model.EventCategoryStar, model.EventCategoryNews,
			model.EventCategoryComment, model.EventCategoryUser, model.EventCategoryUpload,
			model.EventCategorySystem, model.EventCategoryCache,
		},
	}

	events, err := h.events.RecentEvents(r.Context(), eventsLimit)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}
	data.Events = filterEvents(events, data.Level, data.Category)

	renderPage(w, r, h.renderer, "admin/events", render.TemplateData{
		Title:       "Activity log",
		Data:        data,
		Breadcrumbs: uikit.Crumbs("Dashboard", redirectAdmin, "Activity log", "/admin/events"),
	})
}

// filterEvents keeps the events matching level and category; empty
// filters match everything.
func filterEvents(events []model.Event, level, category string) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		if level != "" && e.Level != level {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		details := formatMetadata(e.Metadata)
		v := EventView{
			ID:          e.ID,
			Level:       e.Level,
			Category:    e.Category,
			Message:     e.Message,
			IPAddress:   e.IPAddress,
			Details:     details,
			DetailsLong: len(details) > detailsLengthThreshold,
			CreatedAt:   uikit.FormatDateTime(e.CreatedAt),
		}
		if e.UserID != nil {
			v.UserID = *e.UserID
		}
		out = append(out, v)
	}
	return out
}
