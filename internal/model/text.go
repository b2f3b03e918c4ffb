// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Turkish casing: "i" upper-cases to "İ" and "I" lower-cases to "ı".
var (
	upperTR = cases.Upper(language.Turkish)
	lowerTR = cases.Lower(language.Turkish)
)

func toUpperTR(s string) string {
	return upperTR.String(s)
}

// FoldTR lower-cases s with Turkish rules for case-insensitive matching.
// Dotless and dotted i are merged so "Ilker" and "İlker" fold to the same key.
func FoldTR(s string) string {
	return strings.ReplaceAll(lowerTR.String(s), "ı", "i")
}
