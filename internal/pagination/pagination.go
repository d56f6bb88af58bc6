// Package pagination sorts and slices in-memory collections into pages.
package pagination

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// SortOrderDesc is the only sortOrder value that reverses ordering.
const SortOrderDesc = "desc"

// Params holds raw, unvalidated paging input as it arrives on the query string.
type Params struct {
	Page      string
	Limit     string
	SortBy    string
	SortOrder string
}

// ParamsFromQuery reads page, limit, sortBy and sortOrder from q.
func ParamsFromQuery(q url.Values) Params {
	return Params{
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one slice of a collection plus its metadata.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Sorters maps the sortable fields of a resource to comparison functions.
// K is a closed string type so each resource declares its own field set.
type Sorters[K ~string, T any] map[K]func(a, b T) int

// Paginate orders items by params.SortBy when it names a known sorter, then
// returns the requested page. items is never modified.
func Paginate[K ~string, T any](items []T, params Params, sorters Sorters[K, T]) Page[T] {
	page := max(DefaultPage, coerceInt(params.Page, DefaultPage))
	limit := min(MaxLimit, max(1, coerceInt(params.Limit, DefaultLimit)))

	result := items
	if compare, ok := sorters[K(params.SortBy)]; ok && params.SortBy != "" {
		result = slices.Clone(items)
		if params.SortOrder == SortOrderDesc {
			slices.SortStableFunc(result, func(a, b T) int { return compare(b, a) })
		} else {
			slices.SortStableFunc(result, compare)
		}
	}

	total := len(result)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	data := make([]T, 0, limit)
	start := (page - 1) * limit
	if page <= totalPages {
		end := min(start+limit, total)
		data = append(data, result[start:end]...)
	}

	return Page[T]{
		Data: data,
		Pagination: Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// coerceInt turns query text into an integer. Decimal text truncates toward
// zero; empty or non-numeric input yields fallback.
func coerceInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return fallback
	}
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
