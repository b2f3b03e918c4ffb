// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dizistars/dizistars/internal/apperror"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 12

// Bounds of a page request. They keep Number*Size far from int overflow.
const (
	MaxPageNumber = 1_000_000
	MaxPageSize   = 1000
)

// Page selects one page of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Limit returns the SQL LIMIT of the page.
func (p Page) Limit() int64 {
	return int64(p.normalize().Size)
}

// Offset returns the SQL OFFSET of the page.
func (p Page) Offset() int64 {
	n := p.normalize()
	return int64(n.Number-1) * int64(n.Size)
}

// Paged is one page of results plus the total row count.
type Paged[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// TotalPages returns the number of pages, at least 1.
func (p Paged[T]) TotalPages() int {
	size := int64(p.Page.normalize().Size)
	pages := int((p.Total + size - 1) / size)
	if pages < 1 {
		return 1
	}
	return pages
}

// notFound translates sql.ErrNoRows into apperror.NotFound and wraps anything else.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(resource, id)
	}
	return fmt.Errorf("loading %s %v: %w", resource, id, err)
}
