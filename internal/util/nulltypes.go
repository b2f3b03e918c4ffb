// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small helpers shared by the store-facing services:
// NULL column conversion, slugs, object paths and URL checks.
package util

import (
	"database/sql"
	"time"
)

// NullInt64FromPtr maps nil to NULL.
func NullInt64FromPtr(p *int64) sql.NullInt64 {
	v, ok := deref(p)
	return sql.NullInt64{Int64: v, Valid: ok}
}

// NullTimeFromPtr maps nil to NULL.
func NullTimeFromPtr(p *time.Time) sql.NullTime {
	v, ok := deref(p)
	return sql.NullTime{Time: v, Valid: ok}
}

// Int64Ptr maps NULL to nil.
func Int64Ptr(n sql.NullInt64) *int64 { return ptrIf(n.Int64, n.Valid) }

// TimePtr maps NULL to nil.
func TimePtr(n sql.NullTime) *time.Time { return ptrIf(n.Time, n.Valid) }

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func ptrIf[T any](v T, valid bool) *T {
	if !valid {
		return nil
	}
	return &v
}
