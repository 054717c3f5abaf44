// Package blog provides the use cases behind the public blog pages and the
// admin blog editor: listing, lookup by slug, create, update and delete.
package blog

import "errors"

var (
	// ErrBlogNotFound is returned when no post matches the requested id or slug.
	ErrBlogNotFound = errors.New("blog not found")

	// ErrInvalidBlogID is returned for ids that are not positive.
	ErrInvalidBlogID = errors.New("invalid blog ID")

	// ErrDuplicateSlug is returned when an explicit slug is already taken by
	// another post.
	ErrDuplicateSlug = errors.New("blog with this slug already exists")
)
