// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderMarkdown(t *testing.T) {
	got, err := RenderMarkdown("# Yeni dizi\n\n**Can Yaman** yeni projesini duyurdu.")
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	s := string(got)
	if !strings.Contains(s, "<h1") || !strings.Contains(s, "<strong>Can Yaman</strong>") {
		t.Errorf("RenderMarkdown() = %q, want heading and bold", s)
	}
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	got, err := RenderMarkdown("Merhaba <script>alert(1)</script> [link](javascript:alert(1))")
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	s := string(got)
	if strings.Contains(s, "<script") || strings.Contains(s, "javascript:") {
		t.Errorf("RenderMarkdown() kept unsafe markup: %q", s)
	}
}

func TestExcerpt(t *testing.T) {
	src := "## Başlık\n\nHande Erçel ve Kerem Bürsin yeni sezonda yeniden bir araya geliyor."
	if got := Excerpt(src, 500); got != "Başlık Hande Erçel ve Kerem Bürsin yeni sezonda yeniden bir araya geliyor." {
		t.Errorf("Excerpt(long limit) = %q", got)
	}

	short := Excerpt(src, 30)
	if !strings.HasSuffix(short, "…") {
		t.Errorf("Excerpt(30) = %q, want ellipsis", short)
	}
	if n := utf8.RuneCountInString(short); n > 31 {
		t.Errorf("Excerpt(30) has %d runes", n)
	}
}

func TestCleanComment(t *testing.T) {
	tests := map[string]string{
		"  Harika bir oyuncu!  ":             "Harika bir oyuncu!",
		"<b>Süper</b> <script>x()</script>": "Süper",
		"Tom &amp; Jerry":                   "Tom & Jerry",
	}
	for in, want := range tests {
		if got := CleanComment(in); got != want {
			t.Errorf("CleanComment(%q) = %q, want %q", in, got, want)
		}
	}
}
