package request

import "net/http"

// ListParams holds pagination, search, filter, and sort parameters.
type ListParams struct {
	Limit  int
	Cursor string
	Search string
	Status string
	Sort   string
	Order  string // "asc" or "desc"
}

// ParseListParams extracts list parameters from the query string.
// defaultSort names the field to sort by when none is given; an order other
// than asc or desc falls back to desc.
func ParseListParams(r *http.Request, defaultSort string) ListParams {
	q := r.URL.Query()
	pg := ParsePagination(r)

	order := q.Get("order")
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return ListParams{
		Limit:  pg.Limit,
		Cursor: pg.Cursor,
		Search: q.Get("search"),
		Status: q.Get("status"),
		Sort:   stringOr(q.Get("sort"), defaultSort),
		Order:  order,
	}
}

func stringOr(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
