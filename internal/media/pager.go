package media

import (
	"math"
	"strconv"
)

// Window is the slice of the ordered index fetched for one page.
type Window struct {
	Offset int
	Limit  int
}

// MaxFirst bounds a single page so the window arithmetic cannot overflow.
const MaxFirst = math.MaxInt32

// WindowFor converts a page size and cursor into a fetch window. The limit
// is first+1 so the extra row tells whether another page exists without a
// count query.
func WindowFor(first int, after string) (Window, error) {
	if first <= 0 {
		return Window{}, newError(CodeUnableToFilter, ErrInvalidFilter, "first must be a positive integer, got %d", first)
	}
	if first > MaxFirst {
		return Window{}, newError(CodeUnableToFilter, ErrInvalidFilter, "first must be at most %d, got %d", MaxFirst, first)
	}
	offset := 0
	if after != "" {
		n, err := strconv.Atoi(after)
		if err != nil || n < 0 || n > math.MaxInt-first-1 {
			return Window{}, newError(CodeUnableToFilter, ErrMalformedCursor, "Invalid cursor: '%s'", after)
		}
		offset = n
	}
	return Window{Offset: offset, Limit: first + 1}, nil
}

// PageInfoFor derives continuation state from the raw number of fetched rows.
// Pagination is offset based: rows inserted or deleted between two calls can
// be skipped or repeated.
func PageInfoFor(fetched, offset, first int) PageInfo {
	if fetched > first {
		return PageInfo{HasNextPage: true, EndCursor: strconv.Itoa(offset + first)}
	}
	return PageInfo{}
}
