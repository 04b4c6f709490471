// Package pagination provides limit/offset helpers for list endpoints.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts limit and offset query parameters, clamping them to
// sane bounds.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Page slices one page out of a full in-memory list.
func Page[T any](list []T, p Params) []T {
	if p.Offset >= len(list) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[p.Offset:end]
}

// HasMore reports whether results exist past the current page.
func (p Params) HasMore(total int) bool {
	return p.Offset+p.Limit < total
}
