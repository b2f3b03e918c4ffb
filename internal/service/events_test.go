// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/testutil"
)

type fakeGeo map[string]string

func (f fakeGeo) LookupCountry(ip string) string { return f[ip] }

func TestLogEventWithRequestMeta(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	svc.SetCountryLookup(fakeGeo{"85.105.1.1": "TR"})

	ctx := WithRequestMeta(context.Background(), RequestMeta{
		IP:        "85.105.1.1",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		URL:       "/login",
	})
	user := testutil.CreateUser(t, db, "fan@example.com", model.RoleUser)
	require.NoError(t, svc.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", &user.ID, "", map[string]any{"email": "fan@example.com"}))

	events, err := svc.RecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, model.EventCategoryAuth, e.Category)
	assert.Equal(t, "85.105.1.1", e.IPAddress)
	require.NotNil(t, e.UserID)
	assert.Equal(t, user.ID, *e.UserID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.Metadata), &meta))
	assert.Equal(t, "fan@example.com", meta["email"])
	assert.Equal(t, "Chrome", meta["browser"])
	assert.Equal(t, "Windows", meta["os"])
	assert.Equal(t, "desktop", meta["device"])
	assert.Equal(t, "TR", meta["country"])
	assert.Equal(t, "/login", meta["url"])
}

func TestLogEventWithoutMeta(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	require.NoError(t, svc.LogSystemEvent(context.Background(), model.EventLevelWarning, "Scheduler started", nil))

	events, err := svc.RecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "{}", events[0].Metadata)
	assert.Nil(t, events[0].UserID)
}

func TestDeleteOldEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	svc := NewEventService(db)
	ctx := context.Background()
	require.NoError(t, svc.LogSystemEvent(ctx, model.EventLevelInfo, "recent", nil))
	_, err := db.Exec(`INSERT INTO events (level, category, message, metadata, ip_address, created_at)
		VALUES ('info', 'system', 'old', '{}', '', ?)`, time.Now().UTC().Add(-100*24*time.Hour))
	require.NoError(t, err)

	n, err := svc.DeleteOldEvents(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err := svc.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "recent", events[0].Message)
}
