// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content turns editor Markdown and user text into safe HTML.
package content

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
	)
	// ugc keeps formatting and links; strict strips every tag.
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// RenderMarkdown converts a news body to sanitized HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(ugc.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized by bluemonday
}

// PlainText returns the visible text of a Markdown document on one line.
func PlainText(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return strings.Join(strings.Fields(src), " ")
	}
	text := html.UnescapeString(strict.Sanitize(buf.String()))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns at most maxRunes runes of the document's plain text,
// cut at a word boundary and suffixed with an ellipsis when shortened.
func Excerpt(src string, maxRunes int) string {
	text := PlainText(src)
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)[:maxRunes]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > maxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// CleanComment strips markup from a user comment and trims surrounding space.
// The result is plain text; templates escape it on output.
func CleanComment(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
