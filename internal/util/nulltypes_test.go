// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullInt64RoundTrip(t *testing.T) {
	if n := NullInt64FromPtr(nil); n.Valid {
		t.Errorf("NullInt64FromPtr(nil) = %+v, want NULL", n)
	}
	if p := Int64Ptr(sql.NullInt64{Int64: 5}); p != nil {
		t.Errorf("Int64Ptr(NULL) = %v, want nil", *p)
	}

	starID := int64(42)
	n := NullInt64FromPtr(&starID)
	if !n.Valid || n.Int64 != 42 {
		t.Fatalf("NullInt64FromPtr(&42) = %+v", n)
	}
	p := Int64Ptr(n)
	if p == nil || *p != 42 {
		t.Fatalf("Int64Ptr = %v, want 42", p)
	}
	*p = 7
	if n.Int64 != 42 {
		t.Error("Int64Ptr aliases the NullInt64")
	}
}

func TestNullTimeRoundTrip(t *testing.T) {
	if n := NullTimeFromPtr(nil); n.Valid {
		t.Errorf("NullTimeFromPtr(nil) = %+v, want NULL", n)
	}
	if p := TimePtr(sql.NullTime{}); p != nil {
		t.Errorf("TimePtr(NULL) = %v, want nil", *p)
	}

	published := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	n := NullTimeFromPtr(&published)
	if !n.Valid || !n.Time.Equal(published) {
		t.Fatalf("NullTimeFromPtr = %+v", n)
	}
	if p := TimePtr(n); p == nil || !p.Equal(published) {
		t.Errorf("TimePtr = %v, want %v", p, published)
	}
}
