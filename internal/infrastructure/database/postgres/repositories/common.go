package repositories

import (
	"strconv"

	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// itoa shortens positional-placeholder construction in dynamic queries.
func itoa(n int) string {
	return strconv.Itoa(n)
}

// pageBounds converts a Pagination into LIMIT/OFFSET values with the same
// clamps the application layer applies.
func pageBounds(p common.Pagination) (limit, offset int) {
	limit = p.PageSize
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

//Personal.AI order the ending
