package shared

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Page size defaults offered by list endpoints.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ListParams are the paging and sorting inputs common to list endpoints.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	SortBy   string
	SortDesc bool
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// ParseListParams reads page, page_size, search, sort and dir from a query
// string, clamping out-of-range values.
func ParseListParams(q url.Values) ListParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return ListParams{
		Page:     page,
		PageSize: size,
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   strings.TrimSpace(q.Get("sort")),
		SortDesc: strings.EqualFold(q.Get("dir"), "desc"),
	}
}

// Page is a paginated response envelope.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPage computes pagination metadata around items.
func NewPage[T any](items []T, params ListParams, total int) Page[T] {
	perPage := params.PageSize
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Page[T]{Data: items, Total: total, Page: page, PageSize: perPage, TotalPages: totalPages}
}
