// Package entity defines the core domain entities of the site back-office
// (blog posts and enrollment leads) together with the Validator used to check
// them before they are persisted.
package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// BlogCategories is the fixed set of categories a post may be filed under.
var BlogCategories = []string{
	"Programming",
	"Data Science",
	"Web Development",
	"Cloud Computing",
	"DevOps",
	"Career",
	"Industry News",
	"Tutorials",
}

const (
	maxBlogTags   = 10
	maxBlogTagLen = 30
)

// Blog is a blog post. Only published posts are visible on the public site.
type Blog struct {
	ID        int64
	Slug      string
	Title     string
	Excerpt   string
	Content   string
	Author    string
	Category  string
	Tags      []string
	ImageURL  string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateBlog checks every field rule of a post and returns all violations.
func ValidateBlog(b Blog) ValidationResult {
	v := NewValidator().
		Required("title", b.Title).
		MinLength("title", b.Title, 5).
		MaxLength("title", b.Title, 200).
		Required("excerpt", b.Excerpt).
		MinLength("excerpt", b.Excerpt, 20).
		MaxLength("excerpt", b.Excerpt, 500).
		Required("content", b.Content).
		MinLength("content", b.Content, 100).
		Required("author", b.Author).
		MinLength("author", b.Author, 2).
		MaxLength("author", b.Author, 100).
		Required("category", b.Category).
		OneOf("category", b.Category, BlogCategories).
		ImageURL("imageUrl", b.ImageURL)

	if len(b.Tags) > maxBlogTags {
		v.add("tags", CodeTooManyTags, fmt.Sprintf("no more than %d tags are allowed", maxBlogTags))
	}
	for i, tag := range b.Tags {
		field := fmt.Sprintf("tags[%d]", i)
		v.Required(field, tag).MaxLength(field, tag, maxBlogTagLen)
	}

	return v.Result()
}

// Slugify derives a URL slug from a title: lowercase ASCII letters and digits
// separated by single dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
