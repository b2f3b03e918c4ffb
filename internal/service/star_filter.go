// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dizistars/dizistars/internal/model"
)

// StarSort orders the star directory.
type StarSort string

// Directory sort orders.
const (
	SortAZ     StarSort = "a-z"
	SortZA     StarSort = "z-a"
	SortNewest StarSort = "newest"
	SortOldest StarSort = "oldest"
)

// StarSorts lists the sort orders in menu order.
var StarSorts = []StarSort{SortAZ, SortZA, SortNewest, SortOldest}

// ParseStarSort returns the sort named s, or SortAZ for unknown values.
func ParseStarSort(s string) StarSort {
	for _, v := range StarSorts {
		if string(v) == s {
			return v
		}
	}
	return SortAZ
}

// Label returns the menu caption.
func (s StarSort) Label() string {
	switch s {
	case SortZA:
		return "Name (Z-A)"
	case SortNewest:
		return "Newest"
	case SortOldest:
		return "Oldest"
	default:
		return "Name (A-Z)"
	}
}

// StarFilter holds the directory search, type filter and sort order.
type StarFilter struct {
	Search string
	Type   model.StarType
	Sort   StarSort
}

// FilterStars returns the stars whose name contains Search (case-insensitive
// with Turkish casing) and whose type matches Type, ordered by Sort.
// The input slice is not modified.
func FilterStars(stars []*model.Star, f StarFilter) []*model.Star {
	needle := model.FoldTR(strings.TrimSpace(f.Search))
	out := make([]*model.Star, 0, len(stars))
	for _, st := range stars {
		if f.Type != "" && st.StarType != f.Type {
			continue
		}
		if needle != "" && !strings.Contains(model.FoldTR(st.FullName), needle) {
			continue
		}
		out = append(out, st)
	}

	switch ParseStarSort(string(f.Sort)) {
	case SortZA:
		col := collate.New(language.Turkish, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b *model.Star) int {
			return col.CompareString(b.FullName, a.FullName)
		})
	case SortNewest:
		slices.SortStableFunc(out, func(a, b *model.Star) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return int(b.ID - a.ID)
		})
	case SortOldest:
		slices.SortStableFunc(out, func(a, b *model.Star) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return int(a.ID - b.ID)
		})
	default:
		col := collate.New(language.Turkish, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b *model.Star) int {
			return col.CompareString(a.FullName, b.FullName)
		})
	}
	return out
}

// Paginate returns one page of items.
func Paginate[T any](items []T, page Page) Paged[T] {
	page = page.normalize()
	start := int(min(max(page.Offset(), 0), int64(len(items))))
	end := min(start+page.Size, len(items))
	return Paged[T]{Items: items[start:end], Total: int64(len(items)), Page: page}
}
