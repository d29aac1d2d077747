package handlers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/repositories"
)

func pageParams(r *http.Request) pagination.Params {
	q := r.URL.Query()
	return pagination.ParseParams(q.Get("page"), q.Get("limit"))
}

// wantsPage reports whether the caller asked for a paginated listing.
// Sequence endpoints return the full list otherwise.
func wantsPage(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("limit")
}

// sortOrder reads sortBy/sortType and rejects fields outside allowed, so a bad
// field is reported even when the listing is empty.
func sortOrder(r *http.Request, fallback pagination.Order, allowed []string) (pagination.Order, error) {
	q := r.URL.Query()
	order := pagination.ParseOrder(q.Get("sortBy"), q.Get("sortType"), fallback)
	if !slices.Contains(allowed, order.Field) {
		return pagination.Order{}, fmt.Errorf("%w: %s", repositories.ErrInvalidOrder, order.Field)
	}
	return order, nil
}
