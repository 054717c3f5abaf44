// Package pathutil parses path parameters and normalizes request paths for
// metrics labels.
package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive decimal id such as r.PathValue("id").
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
