// Package pagination wraps ordered, countable queries with page/limit semantics.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Page and limit defaults. MaxPage keeps the offset of the last page within int.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = math.MaxInt / MaxLimit
)

// ErrUnordered is returned when a query does not declare its ordering.
var ErrUnordered = errors.New("pagination: query ordering must be specified")

// Order names the sort key of a query.
type Order struct {
	Field      string
	Descending bool
}

// IsZero reports whether no ordering was given.
func (o Order) IsZero() bool { return strings.TrimSpace(o.Field) == "" }

func (o Order) String() string {
	if o.Descending {
		return o.Field + " desc"
	}
	return o.Field + " asc"
}

// ParseOrder builds an Order from a field name and a direction such as "asc" or "desc".
// An empty field yields fallback.
func ParseOrder(field, direction string, fallback Order) Order {
	field = strings.TrimSpace(field)
	if field == "" {
		return fallback
	}
	desc := fallback.Descending
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "asc", "1":
		desc = false
	case "desc", "-1":
		desc = true
	}
	return Order{Field: field, Descending: desc}
}

// Params are the requested page and page size.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of items preceding the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseParams reads raw page/limit values, falling back to defaults for
// absent, non-numeric or non-positive input.
func ParseParams(page, limit string) Params {
	return Normalize(parsePositive(page), parsePositive(limit))
}

// Normalize applies defaults and the limit ceiling to numeric params.
func Normalize(page, limit int) Params {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > MaxPage {
		page = MaxPage
	}
	return Params{Page: page, Limit: limit}
}

func parsePositive(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n
	}
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Spec describes a paginated query: a native count and an offset/limit fetch
// over a declared ordering.
type Spec[T any] struct {
	Order Order
	Count func(ctx context.Context) (int, error)
	Fetch func(ctx context.Context, order Order, offset, limit int) ([]T, error)
}

// Page is one page of results plus its metadata.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPage computes page metadata for totalItems results.
func NewPage[T any](items []T, params Params, totalItems int) Page[T] {
	params = Normalize(params.Page, params.Limit)
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + params.Limit - 1) / params.Limit
	}
	return Page[T]{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Paginate counts all matching items and fetches the requested page.
func Paginate[T any](ctx context.Context, spec Spec[T], params Params) (Page[T], error) {
	if spec.Order.IsZero() {
		return Page[T]{}, ErrUnordered
	}
	if spec.Count == nil || spec.Fetch == nil {
		return Page[T]{}, errors.New("pagination: count and fetch are required")
	}
	params = Normalize(params.Page, params.Limit)

	total, err := spec.Count(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count items: %w", err)
	}

	var items []T
	if params.Offset() < total {
		items, err = spec.Fetch(ctx, spec.Order, params.Offset(), params.Limit)
		if err != nil {
			return Page[T]{}, fmt.Errorf("fetch page %d: %w", params.Page, err)
		}
	}

	return NewPage(items, params, total), nil
}

// All drains every item of spec in order, counting first so the fetch is a single window.
func All[T any](ctx context.Context, spec Spec[T]) ([]T, error) {
	if spec.Order.IsZero() {
		return nil, ErrUnordered
	}
	total, err := spec.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if total == 0 {
		return []T{}, nil
	}
	items, err := spec.Fetch(ctx, spec.Order, 0, total)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	return items, nil
}
