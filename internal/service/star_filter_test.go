// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/seed"
	"github.com/dizistars/dizistars/internal/service"
)

// demoStars turns the seed catalogue into loaded stars created one minute apart.
func demoStars() []*model.Star {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*model.Star, 0, len(seed.DemoStars))
	for i, in := range seed.DemoStars {
		out = append(out, &model.Star{
			ID:        int64(i + 1),
			FullName:  in.FullName,
			StarType:  in.StarType,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func names(stars []*model.Star) []string {
	out := make([]string, len(stars))
	for i, s := range stars {
		out[i] = s.FullName
	}
	return out
}

func TestFilterStarsSearch(t *testing.T) {
	stars := demoStars()

	got := service.FilterStars(stars, service.StarFilter{Search: "Can", Sort: service.SortAZ})
	assert.Equal(t, []string{"Can Yaman", "Cansu Dere"}, names(got))

	got = service.FilterStars(stars, service.StarFilter{Search: "  cAN "})
	assert.Equal(t, []string{"Can Yaman", "Cansu Dere"}, names(got))

	got = service.FilterStars(stars, service.StarFilter{Search: "ilker"})
	assert.Equal(t, []string{"İlker Kaleli"}, names(got))

	got = service.FilterStars(stars, service.StarFilter{Search: "KIVANÇ"})
	assert.Equal(t, []string{"Kıvanç Tatlıtuğ"}, names(got))

	got = service.FilterStars(stars, service.StarFilter{Search: "nobody"})
	assert.Empty(t, got)
}

func TestFilterStarsTypeAndSort(t *testing.T) {
	stars := demoStars()

	actresses := service.FilterStars(stars, service.StarFilter{Type: model.StarTypeActress})
	require.NotEmpty(t, actresses)
	for _, s := range actresses {
		assert.Equal(t, model.StarTypeActress, s.StarType)
	}

	az := names(service.FilterStars(stars, service.StarFilter{Sort: service.SortAZ}))
	require.Len(t, az, len(stars))
	// Turkish collation puts Ç after C and İ after I.
	assert.Equal(t, "Afra Saraçoğlu", az[0])
	assert.Less(t, indexOf(az, "Cansu Dere"), indexOf(az, "Çağatay Ulusoy"))
	assert.Less(t, indexOf(az, "Hande Erçel"), indexOf(az, "İlker Kaleli"))

	za := names(service.FilterStars(stars, service.StarFilter{Sort: service.SortZA}))
	for i := range az {
		assert.Equal(t, az[i], za[len(za)-1-i])
	}

	newest := service.FilterStars(stars, service.StarFilter{Sort: service.SortNewest})
	assert.Equal(t, stars[len(stars)-1].FullName, newest[0].FullName)
	oldest := service.FilterStars(stars, service.StarFilter{Sort: service.SortOldest})
	assert.Equal(t, stars[0].FullName, oldest[0].FullName)

	// The input order is left alone.
	assert.Equal(t, "Can Yaman", stars[0].FullName)
}

func TestParseStarSort(t *testing.T) {
	assert.Equal(t, service.SortZA, service.ParseStarSort("z-a"))
	assert.Equal(t, service.SortAZ, service.ParseStarSort("popular"))
	assert.Equal(t, "Newest", service.SortNewest.Label())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := service.Paginate(items, service.Page{Number: 2, Size: 2})
	assert.Equal(t, []int{3, 4}, p.Items)
	assert.Equal(t, int64(5), p.Total)
	assert.Equal(t, 3, p.TotalPages())

	p = service.Paginate(items, service.Page{Number: 9, Size: 2})
	assert.Empty(t, p.Items)

	p = service.Paginate(items, service.Page{})
	assert.Len(t, p.Items, 5)

	p = service.Paginate(items, service.Page{Number: 1537228672809129302, Size: 12})
	assert.Empty(t, p.Items)
	assert.Equal(t, service.MaxPageNumber, p.Page.Number)
}

func TestPageOffsetBounds(t *testing.T) {
	huge := service.Page{Number: math.MaxInt, Size: math.MaxInt}
	assert.Equal(t, int64(service.MaxPageSize), huge.Limit())
	assert.Equal(t, int64(service.MaxPageNumber-1)*service.MaxPageSize, huge.Offset())
	assert.Positive(t, huge.Offset())

	assert.Equal(t, int64(24), service.Page{Number: 3, Size: 12}.Offset())
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
