package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params are the pagination query parameters of a request.
type Params struct {
	Page  int // 1-based
	Limit int
}

// ParseQueryParams reads page and limit from the query string. Missing values
// take the configured defaults; malformed or out-of-range values are an error.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{
		Page:  config.DefaultPage,
		Limit: config.DefaultLimit,
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > config.MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", config.MaxLimit)
		}
		params.Limit = limit
	}

	return params, nil
}

// WithDefaults fills zero or negative values from config and caps Limit at
// config.MaxLimit. Services call it so they can be used without an HTTP
// request in front of them.
func (p Params) WithDefaults(config Config) Params {
	if p.Page <= 0 {
		p.Page = config.DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = config.DefaultLimit
	}
	if p.Limit > config.MaxLimit {
		p.Limit = config.MaxLimit
	}
	return p
}

// Offset returns the SQL OFFSET of the page.
func (p Params) Offset() int {
	return CalculateOffset(p.Page, p.Limit)
}
