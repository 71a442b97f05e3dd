package util

import "strconv"

// Paging defaults and bounds. MaxPage keeps Offset far from int overflow.
const (
	DefaultPage  = 1
	DefaultLimit = 9
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// PageRequest is a 1-based page request.
type PageRequest struct {
	Page  int
	Limit int
}

// Pagination is the metadata block returned next to paginated data.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasMore    *bool `json:"hasMore,omitempty"`
}

// ParsePageRequest reads raw query values. Missing or malformed values fall
// back to the defaults; values below one are raised to one and values above
// the bounds are clamped.
func ParsePageRequest(page, limit string) PageRequest {
	return NewPageRequest(atoiOr(page, DefaultPage), atoiOr(limit, DefaultLimit))
}

// NewPageRequest clamps page to [1, MaxPage] and limit to [1, MaxLimit].
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of rows before the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate builds the metadata for a page given the unpaged row count.
func (p PageRequest) Paginate(total int64) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pages,
	}
}

// PaginateCursor is Paginate plus hasMore for clients that scroll.
func (p PageRequest) PaginateCursor(total int64, returned int) Pagination {
	pg := p.Paginate(total)
	more := int64(p.Offset()+returned) < total
	pg.HasMore = &more
	return pg
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
