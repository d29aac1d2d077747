package repositories

import (
	"fmt"
	"slices"

	"github.com/videotube/backend/internal/pagination"
)

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// orderClause renders a stable ORDER BY for one of the allowed fields, breaking ties on id.
func orderClause(order pagination.Order, allowed []string) (string, error) {
	if order.IsZero() {
		return "", pagination.ErrUnordered
	}
	if !slices.Contains(allowed, order.Field) {
		return "", fmt.Errorf("%w: %s", ErrInvalidOrder, order.Field)
	}
	column := sortColumns[order.Field]
	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, direction, direction), nil
}
