// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the read-only JSON API under /api/v1.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
)

// Page size limits of list endpoints.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	stars *service.StarService
	news  *service.NewsService
}

// NewHandler creates a new API handler.
func NewHandler(stars *service.StarService, news *service.NewsService) *Handler {
	return &Handler{stars: stars, news: news}
}

// Routes mounts the API endpoints on r. Key checking and rate limiting
// are applied by the caller.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Status)
	r.Get("/stars", h.ListStars)
	r.Get("/stars/{id}", h.GetStar)
	r.Get("/stars/{id}/news", h.ListStarNews)
	r.Get("/news", h.ListNews)
	r.Get("/news/{slug}", h.GetNews)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError maps a service error onto the error envelope.
func writeServiceError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		WriteNotFound(w, what+" not found")
	case errors.Is(err, apperror.ErrValidation):
		WriteBadRequest(w, apperror.Message(err, "Invalid request"), apperror.FieldErrors(err))
	default:
		slog.Error("api request failed", "resource", what, "error", err)
		WriteInternalError(w, "Failed to load "+what)
	}
}

// pageParams reads ?page= and ?per_page=, clamping per_page to maxPerPage.
func pageParams(r *http.Request) service.Page {
	return service.Page{
		Number: uikit.ParsePageParam(r),
		Size:   uikit.ParseIntParam(r, "per_page", defaultPerPage, 1, maxPerPage),
	}
}

// metaFor builds the pagination block of a paged listing.
func metaFor[T any](p service.Paged[T]) *Meta {
	return &Meta{
		Total:   p.Total,
		Page:    p.Page.Number,
		PerPage: p.Page.Size,
		Pages:   p.TotalPages(),
	}
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status handles GET /api/v1/.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"}, nil)
}
