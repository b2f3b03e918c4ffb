// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir(), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return s
}

func TestPutDeleteRoundTrip(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	if err := s.Put(ctx, BucketStarImages, "1700000000000-can-yaman.jpg", strings.NewReader("jpeg")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !s.Exists(BucketStarImages, "1700000000000-can-yaman.jpg") {
		t.Fatal("object missing after Put")
	}

	want := "http://localhost:8080/storage/v1/object/public/star_images/1700000000000-can-yaman.jpg"
	if got := s.PublicURL(BucketStarImages, "1700000000000-can-yaman.jpg"); got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}

	if err := s.Delete(ctx, BucketStarImages, "1700000000000-can-yaman.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, BucketStarImages, "1700000000000-can-yaman.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("second Delete err = %v, want ErrObjectNotFound", err)
	}
}

func TestResolveRejectsBadPaths(t *testing.T) {
	s := newLocal(t)
	tests := []struct {
		bucket, object string
		want           error
	}{
		{"secrets", "a.jpg", ErrUnknownBucket},
		{BucketNewsImages, "../star_images/a.jpg", ErrInvalidPath},
		{BucketNewsImages, "", ErrInvalidPath},
		{BucketNewsImages, "a/../../b.jpg", ErrInvalidPath},
		{BucketNewsImages, "a\\b.jpg", ErrInvalidPath},
	}
	for _, tt := range tests {
		if _, err := s.resolve(tt.bucket, tt.object); !errors.Is(err, tt.want) {
			t.Errorf("resolve(%q, %q) err = %v, want %v", tt.bucket, tt.object, err, tt.want)
		}
	}
	if _, err := s.resolve(BucketGalleryImages, "thumb/a.jpg"); err != nil {
		t.Errorf("nested object rejected: %v", err)
	}
}

func TestHandler(t *testing.T) {
	s := newLocal(t)
	if err := s.Put(context.Background(), BucketUserAvatars, "1-fan.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	r := chi.NewRouter()
	r.Handle("/storage/v1/object/public/{bucket}/*", s.Handler())
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/storage/v1/object/public/user_avatars/1-fan.png")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "png-bytes" {
		t.Errorf("GET = %d %q", resp.StatusCode, body)
	}

	for _, p := range []string{
		"/storage/v1/object/public/user_avatars/missing.png",
		"/storage/v1/object/public/nope/1-fan.png",
	} {
		resp, err := http.Get(srv.URL + p)
		if err != nil {
			t.Fatalf("GET %s: %v", p, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", p, resp.StatusCode)
		}
	}
}
