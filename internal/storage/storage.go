// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage keeps uploaded objects in named buckets on local disk and
// serves them under the public object URL scheme.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/util"
)

// Buckets.
const (
	BucketStarImages    = "star_images"
	BucketNewsImages    = "news_images"
	BucketUserAvatars   = "user_avatars"
	BucketGalleryImages = "gallery_images"
)

// Buckets lists every bucket the application writes to.
var Buckets = []string{BucketStarImages, BucketNewsImages, BucketUserAvatars, BucketGalleryImages}

var (
	// ErrUnknownBucket is returned for bucket names not in Buckets.
	ErrUnknownBucket = errors.New("unknown bucket")
	// ErrInvalidPath is returned for object paths escaping their bucket.
	ErrInvalidPath = errors.New("invalid object path")
	// ErrObjectNotFound is returned when deleting a missing object.
	ErrObjectNotFound = errors.New("object not found")
)

// Local stores bucket objects under a directory.
type Local struct {
	root       string
	publicBase string
}

// NewLocal creates the bucket directories under root. publicBase is the
// scheme and host public URLs start with.
func NewLocal(root, publicBase string) (*Local, error) {
	for _, b := range Buckets {
		if err := os.MkdirAll(filepath.Join(root, b), 0o755); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", b, err)
		}
	}
	return &Local{root: root, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Root returns the storage directory.
func (s *Local) Root() string { return s.root }

// resolve returns the file path of an object, refusing traversal outside the bucket.
func (s *Local) resolve(bucket, object string) (string, error) {
	if !slices.Contains(Buckets, bucket) {
		return "", ErrUnknownBucket
	}
	if err := util.ValidateObjectPath(object); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	target, err := util.SafeJoinPath(filepath.Join(s.root, bucket), filepath.FromSlash(object))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return target, nil
}

// Put writes an object. Existing objects are replaced.
func (s *Local) Put(ctx context.Context, bucket, object string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(bucket, object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s/%s: %w", bucket, object, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s/%s: %w", bucket, object, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s/%s: %w", bucket, object, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("storing %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Exists reports whether an object is stored.
func (s *Local) Exists(bucket, object string) bool {
	target, err := s.resolve(bucket, object)
	if err != nil {
		return false
	}
	fi, err := os.Stat(target)
	return err == nil && fi.Mode().IsRegular()
}

// Delete removes an object.
func (s *Local) Delete(ctx context.Context, bucket, object string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(bucket, object)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("deleting %s/%s: %w", bucket, object, err)
	}
	return nil
}

// PublicURL returns the URL an object is served under.
func (s *Local) PublicURL(bucket, object string) string {
	return s.publicBase + service.PublicObjectPath + bucket + "/" + object
}

// Handler serves GET /storage/v1/object/public/{bucket}/*.
func (s *Local) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, err := s.resolve(chi.URLParam(r, "bucket"), chi.URLParam(r, "*"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		fi, err := os.Stat(target)
		if err != nil || !fi.Mode().IsRegular() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeFile(w, r, target)
	})
}
