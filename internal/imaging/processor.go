// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded pictures before they reach a bucket.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/dizistars/dizistars/internal/model"
)

// DefaultQuality is the JPEG quality of re-encoded originals.
const DefaultQuality = 90

// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF and WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image is an encoded picture ready to be stored.
type Image struct {
	Data     []byte
	MimeType string
	Ext      string // without the dot
	Width    int
	Height   int

	img image.Image
}

// Processor decodes, orients and re-encodes images. EXIF metadata is not
// carried over, so GPS tags from phone photos never reach the public bucket.
type Processor struct {
	quality int
}

// NewProcessor creates a Processor. A quality outside 1..100 uses DefaultQuality.
func NewProcessor(quality int) *Processor {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Processor{quality: quality}
}

// Process normalizes raw upload bytes.
func (p *Processor) Process(data []byte) (*Image, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", format, err)
	}
	img = applyOrientation(img, readExifOrientation(data))
	return p.encode(img, format, p.quality)
}

// Variant resizes src per cfg. It returns nil when src already fits and cfg
// does not crop.
func (p *Processor) Variant(src *Image, cfg model.ImageVariantConfig) (*Image, error) {
	if src.Width <= cfg.Width && src.Height <= cfg.Height && !cfg.Crop {
		return nil, nil
	}

	var resized image.Image
	if cfg.Crop {
		resized = imaging.Fill(src.img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
	} else {
		resized = imaging.Fit(src.img, cfg.Width, cfg.Height, imaging.Lanczos)
	}
	return p.encode(resized, formatFromMimeType(src.MimeType), cfg.Quality)
}

// DetectMimeType sniffs the content type of data.
func DetectMimeType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i != -1 {
		ct = ct[:i]
	}
	return ct
}

func (p *Processor) encode(img image.Image, format string, quality int) (*Image, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		// No pure Go WebP encoder; WebP uploads are stored as JPEG.
		format = "jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s image: %w", format, err)
	}
	b := img.Bounds()
	return &Image{
		Data:     buf.Bytes(),
		MimeType: formatToMimeType(format),
		Ext:      formatToExt(format),
		Width:    b.Dx(),
		Height:   b.Dy(),
		img:      img,
	}, nil
}

// readExifOrientation returns the EXIF orientation tag, or 1 when absent.
func readExifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// applyOrientation turns an image the way its EXIF orientation says.
// 2 and 4 are mirrors, 3 is upside down, 5-8 are rotated by a quarter turn.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func detectFormat(data []byte) string {
	switch DetectMimeType(data) {
	case model.MimeTypeJPEG:
		return "jpeg"
	case model.MimeTypePNG:
		return "png"
	case model.MimeTypeGIF:
		return "gif"
	case model.MimeTypeWebP:
		return "webp"
	default:
		// TIFF is rejected here too (CVE-2023-36308 in disintegration/imaging).
		return ""
	}
}

func formatFromMimeType(mimeType string) string {
	switch mimeType {
	case model.MimeTypePNG:
		return "png"
	case model.MimeTypeGIF:
		return "gif"
	default:
		return "jpeg"
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	default:
		return model.MimeTypeJPEG
	}
}

func formatToExt(format string) string {
	switch format {
	case "png":
		return "png"
	case "gif":
		return "gif"
	default:
		return "jpg"
	}
}
