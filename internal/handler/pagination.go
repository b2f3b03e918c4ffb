// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/uikit"
)

// Page sizes of the listings.
const (
	starsPerPage = service.DefaultPageSize
	newsPerPage  = 9
	adminPerPage = 20
)

// pageFromRequest reads ?page= into a service.Page of the given size.
func pageFromRequest(r *http.Request, size int) service.Page {
	return service.Page{Number: uikit.ParsePageParam(r), Size: size}
}

// paginationFor builds the page links of a listing at r's path, keeping
// the other query parameters.
func paginationFor[T any](r *http.Request, paged service.Paged[T]) uikit.Pagination {
	return uikit.BuildPagination(paged.Page.Number, paged.Total, paged.Page.Size, r.URL.Path, r.URL.Query())
}
