package pagination

import "strconv"

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items any listing can request.
	MaxLimit = 100
)

// Params holds paging inputs from controllers. Collections are small
// ordered slices, so plain offset windows are enough here.
type Params struct {
	Limit  int
	Offset int
}

// Page is one window of a listing plus the full count, so clients can
// render page controls without a second request.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FromQuery parses limit and offset query values, falling back to the
// defaults on anything unparseable.
func FromQuery(limitValue, offsetValue string) Params {
	limit, err := strconv.Atoi(limitValue)
	if err != nil {
		limit = DefaultLimit
	}
	offset, err := strconv.Atoi(offsetValue)
	if err != nil || offset < 0 {
		offset = 0
	}
	return Params{Limit: NormalizeLimit(limit), Offset: offset}
}

// Paginate returns the requested window over items. An offset past the
// end yields an empty page, never an error.
func Paginate[T any](items []T, p Params) Page[T] {
	limit := NormalizeLimit(p.Limit)
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	page := Page[T]{
		Items:  []T{},
		Total:  len(items),
		Limit:  limit,
		Offset: offset,
	}
	if offset >= len(items) {
		return page
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[offset:end]...)
	return page
}
