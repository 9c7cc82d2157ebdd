package request

import (
	"net/http"
	"strconv"
)

// Pagination holds the limit and cursor shared by every list endpoint.
type Pagination struct {
	Limit  int
	Cursor string
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ParsePagination reads limit and cursor from the query string. A missing,
// malformed, or non-positive limit falls back to DefaultLimit, and anything
// above MaxLimit is clamped.
func ParsePagination(r *http.Request) Pagination {
	q := r.URL.Query()

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Pagination{Limit: limit, Cursor: q.Get("cursor")}
}
