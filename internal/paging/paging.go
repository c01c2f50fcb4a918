// Package paging parses page/limit query parameters and renders the
// pagination block of list responses.
package paging

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Params struct {
	Page  int
	Limit int
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// ClampPage bounds page to [1, last page whose offset fits in an int].
func ClampPage(page, limit int) int {
	if page < 1 {
		return 1
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return math.MaxInt/limit + 1
	}
	return page
}

// FromQuery reads ?page=&limit=. Missing or invalid values fall back to page 1
// and def; limit is capped at max.
func FromQuery(c *gin.Context, def, max int) Params {
	p := Params{Page: atoi(c.Query("page"), 1), Limit: atoi(c.Query("limit"), def)}
	if p.Limit < 1 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	p.Page = ClampPage(p.Page, p.Limit)
	return p
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Meta is the pagination object returned next to list results.
func Meta(page, limit int, total int64) gin.H {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return gin.H{"page": page, "limit": limit, "total": total, "totalPages": pages}
}
