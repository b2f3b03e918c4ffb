// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the data access layer of DiziStars on top of
// the store queries: typed results, a single error policy and audit events.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
)

// RequestMeta describes the HTTP request an operation runs on behalf of.
type RequestMeta struct {
	IP        string
	UserAgent string
	URL       string
}

type requestMetaKey struct{}

// WithRequestMeta returns a context carrying m.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the request metadata stored in ctx, if any.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

// CountryLookup resolves an IP address to an ISO country code.
type CountryLookup interface {
	LookupCountry(ip string) string
}

// EventService writes audit events.
type EventService struct {
	queries *store.Queries
	geo     CountryLookup
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// SetCountryLookup enables country metadata on events.
func (s *EventService) SetCountryLookup(geo CountryLookup) {
	s.geo = geo
}

// LogEvent records an event. When ipAddress is empty the request IP from ctx
// is used; browser, OS and country are added from the request metadata.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	meta := RequestMetaFrom(ctx)
	if ipAddress == "" {
		ipAddress = meta.IP
	}
	metadata = s.enrich(metadata, meta, ipAddress)

	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		IpAddress: ipAddress,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Info level: a Warn here would be mirrored back into the events table.
		slog.Info("failed to record event", "message", message, "error", err)
		return err
	}
	return nil
}

func (s *EventService) enrich(metadata map[string]any, meta RequestMeta, ip string) map[string]any {
	if meta.UserAgent == "" && meta.URL == "" && (s.geo == nil || ip == "") {
		return metadata
	}
	out := make(map[string]any, len(metadata)+4)
	for k, v := range metadata {
		out[k] = v
	}
	if meta.URL != "" {
		out["url"] = meta.URL
	}
	if meta.UserAgent != "" {
		ua := useragent.Parse(meta.UserAgent)
		out["browser"] = orUnknown(ua.Name)
		out["os"] = orUnknown(ua.OS)
		switch {
		case ua.Mobile:
			out["device"] = "mobile"
		case ua.Tablet:
			out["device"] = "tablet"
		case ua.Bot:
			out["device"] = "bot"
		default:
			out["device"] = "desktop"
		}
	}
	if s.geo != nil && ip != "" {
		if country := s.geo.LookupCountry(ip); country != "" {
			out["country"] = country
		}
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, metadata)
}

// LogUserEvent logs a user-related event.
func (s *EventService) LogUserEvent(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryUser, message, userID, "", metadata)
}

// LogStarEvent logs a change to a star profile.
func (s *EventService) LogStarEvent(ctx context.Context, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryStar, message, userID, "", metadata)
}

// LogNewsEvent logs a change to a news article.
func (s *EventService) LogNewsEvent(ctx context.Context, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryNews, message, userID, "", metadata)
}

// LogCommentEvent logs a moderation action.
func (s *EventService) LogCommentEvent(ctx context.Context, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryComment, message, userID, "", metadata)
}

// LogSystemEvent logs a system-related event.
func (s *EventService) LogSystemEvent(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySystem, message, nil, "", metadata)
}

// RecentEvents returns the newest events for the admin activity feed.
func (s *EventService) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := s.queries.ListEvents(ctx, store.ListEventsParams{Limit: int64(limit)})
	if err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		e := model.Event{
			ID:        r.ID,
			Level:     r.Level,
			Category:  r.Category,
			Message:   r.Message,
			IPAddress: r.IpAddress,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt,
		}
		if r.UserID.Valid {
			id := r.UserID.Int64
			e.UserID = &id
		}
		events = append(events, e)
	}
	return events, nil
}

// DeleteOldEvents removes events older than olderThan and returns how many were removed.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.queries.DeleteOldEvents(ctx, cutoff)
}
