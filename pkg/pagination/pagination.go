// Package pagination pages through lists that are already fully in memory,
// such as admin listings fetched in one call from the storefront backend.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params is a 1-based page request.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// FromRequest reads ?page and ?per_page. Missing or non-positive values fall
// back to the first page of DefaultPerPage; per_page is capped at MaxPerPage.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return Params{
		Page:    positiveInt(q.Get("page"), 1),
		PerPage: min(positiveInt(q.Get("per_page"), DefaultPerPage), MaxPerPage),
	}
}

func positiveInt(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return fallback
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is one page of a list plus the numbers a client needs to render
// pagination controls.
type Page[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Slice cuts the requested page out of items. A page past the end is empty,
// never nil, so it encodes as [].
func Slice[T any](items []T, p Params) Page[T] {
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}

	start := min(p.Offset(), len(items))
	end := min(start+p.PerPage, len(items))
	data := make([]T, end-start)
	copy(data, items[start:end])

	totalPages := (len(items) + p.PerPage - 1) / p.PerPage
	return Page[T]{
		Data:       data,
		TotalCount: len(items),
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
