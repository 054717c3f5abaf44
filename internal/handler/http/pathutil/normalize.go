package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern maps a dynamic route to its metrics label.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns are evaluated in order; the first match wins.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/api/admin/blogs/\d+$`), Template: "/api/admin/blogs/:id"},
	{Pattern: regexp.MustCompile(`^/api/admin/enrollments/\d+$`), Template: "/api/admin/enrollments/:id"},
	{Pattern: regexp.MustCompile(`^/api/blogs/[^/]+$`), Template: "/api/blogs/:slug"},
	{Pattern: regexp.MustCompile(`^/swagger/.+$`), Template: "/swagger/*"},
}

// NormalizePath turns request paths into bounded metrics labels:
//
//	NormalizePath("/api/blogs/learn-go-in-30-days") // "/api/blogs/:slug"
//	NormalizePath("/api/admin/blogs/42/")           // "/api/admin/blogs/:id"
//	NormalizePath("/api/enrollments?x=1")           // "/api/enrollments"
//
// Unmatched paths are returned without query string or trailing slash.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
