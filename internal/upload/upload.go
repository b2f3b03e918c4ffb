// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload validates image uploads and stores them in buckets.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/imaging"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/storage"
	"github.com/dizistars/dizistars/internal/util"
)

// DefaultMaxMB is the upload limit when none is configured.
const DefaultMaxMB = 5

var (
	// ErrTooLarge is returned when a file exceeds the size limit.
	ErrTooLarge = fmt.Errorf("%w: file too large", apperror.ErrValidation)
	// ErrUnsupportedType is returned for files that are not JPEG, PNG, GIF or WebP.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported file type", apperror.ErrValidation)
	// ErrNoFile is returned by FormFile when the field is empty.
	ErrNoFile = errors.New("no file uploaded")
)

// Store is where uploaded objects go.
type Store interface {
	Put(ctx context.Context, bucket, object string, r io.Reader) error
	Delete(ctx context.Context, bucket, object string) error
	Exists(bucket, object string) bool
	PublicURL(bucket, object string) string
}

// Request is one file to upload.
type Request struct {
	Bucket   string
	Filename string
	Size     int64
	Body     io.Reader
	// PreviousURL is the image being replaced. It is deleted after a
	// successful upload when it lives in our storage.
	PreviousURL string
}

// Result describes a stored upload.
type Result struct {
	URL      string
	Object   string
	ThumbURL string
	Width    int
	Height   int
}

// Uploader runs the upload pipeline.
type Uploader struct {
	store     Store
	processor *imaging.Processor
	images    service.ImagePolicy
	maxBytes  int64
	now       func() time.Time
}

// New creates an Uploader accepting files up to maxMB megabytes.
func New(store Store, processor *imaging.Processor, images service.ImagePolicy, maxMB int) *Uploader {
	if maxMB < 1 {
		maxMB = DefaultMaxMB
	}
	return &Uploader{
		store:     store,
		processor: processor,
		images:    images,
		maxBytes:  int64(maxMB) << 20,
		now:       time.Now,
	}
}

// MaxBytes returns the size limit.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

func (u *Uploader) tooLargeMessage() string {
	return fmt.Sprintf("File is too large. Maximum size is %d MB.", u.maxBytes>>20)
}

// Upload validates, normalizes and stores req. Failures the user can fix are
// reported through onError as well as returned; onError may be nil.
func (u *Uploader) Upload(ctx context.Context, req Request, onError func(string)) (*Result, error) {
	fail := func(msg string, err error) (*Result, error) {
		if onError != nil {
			onError(msg)
		}
		return nil, err
	}

	if req.Size > u.maxBytes {
		return fail(u.tooLargeMessage(), ErrTooLarge)
	}

	// The declared size can lie; never read past the limit.
	data, err := io.ReadAll(io.LimitReader(req.Body, u.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return fail(u.tooLargeMessage(), ErrTooLarge)
	}

	if !model.IsSupportedImageType(imaging.DetectMimeType(data)) {
		return fail("Only JPEG, PNG, GIF and WebP images are allowed.", ErrUnsupportedType)
	}
	img, err := u.processor.Process(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return fail("Only JPEG, PNG, GIF and WebP images are allowed.", ErrUnsupportedType)
		}
		return fail("The image could not be read.", fmt.Errorf("%w: %v", apperror.ErrValidation, err))
	}

	object := u.objectName(req.Bucket, req.Filename, img.Ext)
	if err := u.store.Put(ctx, req.Bucket, object, bytes.NewReader(img.Data)); err != nil {
		return fail("Upload failed. Please try again.", fmt.Errorf("storing upload: %w", err))
	}

	res := &Result{
		URL:    u.store.PublicURL(req.Bucket, object),
		Object: object,
		Width:  img.Width,
		Height: img.Height,
	}

	if req.Bucket == storage.BucketGalleryImages {
		res.ThumbURL = u.storeThumb(ctx, req.Bucket, object, img)
	}

	u.deletePrevious(ctx, req.PreviousURL)

	slog.Info("image uploaded", "bucket", req.Bucket, "object", object, "bytes", len(img.Data))
	return res, nil
}

// objectName builds "{unix-millis}-{slug}.{ext}", adding a short random
// suffix if that name is already taken.
func (u *Uploader) objectName(bucket, filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	slug := util.Slugify(base)
	if slug == "" {
		slug = "image"
	}
	name := fmt.Sprintf("%d-%s.%s", u.now().UnixMilli(), slug, ext)
	if u.store.Exists(bucket, name) {
		name = fmt.Sprintf("%d-%s-%s.%s", u.now().UnixMilli(), slug, uuid.NewString()[:8], ext)
	}
	return name
}

func thumbObject(object string) string {
	return model.VariantThumbnail + "/" + object
}

// storeThumb creates the gallery thumbnail. Failures are logged; the
// original is still usable.
func (u *Uploader) storeThumb(ctx context.Context, bucket, object string, img *imaging.Image) string {
	thumb, err := u.processor.Variant(img, model.ImageVariants[model.VariantThumbnail])
	if err != nil {
		slog.Warn("thumbnail failed", "object", object, "error", err)
		return ""
	}
	if thumb == nil {
		return ""
	}
	if err := u.store.Put(ctx, bucket, thumbObject(object), bytes.NewReader(thumb.Data)); err != nil {
		slog.Warn("storing thumbnail failed", "object", object, "error", err)
		return ""
	}
	return u.store.PublicURL(bucket, thumbObject(object))
}

// deletePrevious removes a replaced image. It never fails the upload.
func (u *Uploader) deletePrevious(ctx context.Context, previousURL string) {
	bucket, object, ok := u.images.ObjectFromURL(previousURL)
	if !ok {
		return
	}
	u.Delete(ctx, bucket, object)
}

// Delete removes a stored object and its thumbnail, logging failures.
func (u *Uploader) Delete(ctx context.Context, bucket, object string) {
	if err := u.store.Delete(ctx, bucket, object); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		slog.Warn("deleting previous image failed", "bucket", bucket, "object", object, "error", err)
	}
	if bucket == storage.BucketGalleryImages {
		if err := u.store.Delete(ctx, bucket, thumbObject(object)); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			slog.Warn("deleting previous thumbnail failed", "bucket", bucket, "object", object, "error", err)
		}
	}
}

// DeleteURL removes the object behind a public URL, if it is one of ours.
func (u *Uploader) DeleteURL(ctx context.Context, rawURL string) {
	u.deletePrevious(ctx, rawURL)
}

// FormFile turns a multipart form field into a Request. The returned close
// function must be called once the upload is done. ErrNoFile means the
// field was left empty.
func FormFile(r *http.Request, field, bucket string) (Request, func(), error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return Request{}, func() {}, ErrNoFile
		}
		return Request{}, func() {}, fmt.Errorf("reading form file %s: %w", field, err)
	}
	return requestFromHeader(f, hdr, bucket), func() { _ = f.Close() }, nil
}

func requestFromHeader(f multipart.File, hdr *multipart.FileHeader, bucket string) Request {
	return Request{
		Bucket:   bucket,
		Filename: hdr.Filename,
		Size:     hdr.Size,
		Body:     f,
	}
}

// ThumbURL returns the thumbnail URL of a stored gallery image, or the
// image itself for any other URL.
func ThumbURL(imageURL string) string {
	marker := "/" + storage.BucketGalleryImages + "/"
	i := strings.LastIndex(imageURL, marker)
	if i < 0 || strings.HasPrefix(imageURL[i+len(marker):], model.VariantThumbnail+"/") {
		return imageURL
	}
	return imageURL[:i+len(marker)] + thumbObject(imageURL[i+len(marker):])
}
