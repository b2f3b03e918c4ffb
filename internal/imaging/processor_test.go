// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/dizistars/dizistars/internal/model"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessPNG(t *testing.T) {
	p := NewProcessor(0)
	out, err := p.Process(encodePNG(t, createTestImage(40, 20)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.MimeType != model.MimeTypePNG || out.Ext != "png" {
		t.Errorf("type = %s/%s, want image/png png", out.MimeType, out.Ext)
	}
	if out.Width != 40 || out.Height != 20 {
		t.Errorf("size = %dx%d, want 40x20", out.Width, out.Height)
	}
	if _, err := png.Decode(bytes.NewReader(out.Data)); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}
}

func TestProcessJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(30, 30), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	out, err := NewProcessor(80).Process(buf.Bytes())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.MimeType != model.MimeTypeJPEG || out.Ext != "jpg" {
		t.Errorf("type = %s/%s, want image/jpeg jpg", out.MimeType, out.Ext)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	p := NewProcessor(0)
	for name, data := range map[string][]byte{
		"text": []byte("hello, this is not an image"),
		"tiff": {0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00},
		"pdf":  []byte("%PDF-1.4\n"),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Process(data); !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("err = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestVariant(t *testing.T) {
	p := NewProcessor(0)
	src, err := p.Process(encodePNG(t, createTestImage(640, 480)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	thumb, err := p.Variant(src, model.ImageVariants[model.VariantThumbnail])
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if thumb.Width != 320 || thumb.Height != 320 {
		t.Errorf("thumb = %dx%d, want 320x320", thumb.Width, thumb.Height)
	}
	if thumb.MimeType != model.MimeTypePNG {
		t.Errorf("thumb type = %s, want image/png", thumb.MimeType)
	}

	small, err := p.Process(encodePNG(t, createTestImage(100, 100)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	fit := model.ImageVariantConfig{Width: 200, Height: 200, Quality: 80}
	v, err := p.Variant(small, fit)
	if err != nil || v != nil {
		t.Errorf("Variant of smaller image = %v, %v; want nil, nil", v, err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(20, 10)
	for orientation := 0; orientation <= 9; orientation++ {
		got := applyOrientation(img, orientation).Bounds()
		rotated := orientation >= 5 && orientation <= 8
		if rotated && (got.Dx() != 10 || got.Dy() != 20) {
			t.Errorf("orientation %d: %dx%d, want 10x20", orientation, got.Dx(), got.Dy())
		}
		if !rotated && (got.Dx() != 20 || got.Dy() != 10) {
			t.Errorf("orientation %d: %dx%d, want 20x10", orientation, got.Dx(), got.Dy())
		}
	}
}
