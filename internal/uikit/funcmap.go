// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides template helpers, pagination and small view model
// types shared by the public and admin pages.
package uikit

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MonthsTr contains Turkish month names.
var MonthsTr = []string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var (
	lowerTR = cases.Lower(language.Turkish)
	upperTR = cases.Upper(language.Turkish)
)

// TemplateFuncs returns the generic helper functions. Callers merge
// application functions on top.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Strings. lower/upper follow Turkish casing (I -> ı, i -> İ).
		"lower":     lowerTR.String,
		"upper":     upperTR.String,
		"hasPrefix": strings.HasPrefix,
		"truncate":  Truncate,
		"initial": func(s string) string {
			r, _ := utf8.DecodeRuneInString(strings.TrimSpace(s))
			if r == utf8.RuneError {
				return ""
			}
			return upperTR.String(string(r))
		},
		"contains": func(collection, element any) bool {
			switch c := collection.(type) {
			case []string:
				elem, ok := element.(string)
				if !ok {
					return false
				}
				for _, s := range c {
					if s == elem {
						return true
					}
				}
			case string:
				if substr, ok := element.(string); ok {
					return strings.Contains(c, substr)
				}
			}
			return false
		},

		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},

		// Math
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		// Time
		"now":            time.Now,
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"formatDateLocale": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, FormatDateForLocale)
		},
		"formatDateTimeLocale": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, FormatDateTimeForLocale)
		},
		"inputDateTime": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02T15:04")
		},

		"toJSON": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},

		"formatNumber": FormatNumber,

		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate shortens s to at most length runes, appending "...".
func Truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:length]), " ") + "..."
}

// FormatNumber inserts thousands separators.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 1000 && n > -1000 {
		return s
	}
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String()
}

// FormatDate formats t as "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatDateTime formats t as "Jan 2, 2006 3:04 PM".
func FormatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

// FormatDateForLocale formats a date according to the specified language.
func FormatDateForLocale(t time.Time, lang string) string {
	if lang == "tr" {
		return fmt.Sprintf("%d %s %d", t.Day(), MonthsTr[t.Month()-1], t.Year())
	}
	return FormatDate(t)
}

// FormatDateTimeForLocale formats a time.Time as a localized datetime string.
func FormatDateTimeForLocale(t time.Time, lang string) string {
	if lang == "tr" {
		return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), MonthsTr[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return FormatDateTime(t)
}

// ApplyTimeFormatter applies a time formatting function to a value that may be time.Time or *time.Time.
// Returns an empty string for nil pointers or unsupported types.
func ApplyTimeFormatter(t any, lang string, formatter func(time.Time, string) string) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return formatter(v, lang)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return formatter(*v, lang)
	default:
		return ""
	}
}
