// Package blog provides the HTTP handlers for blog posts: the public read API
// used by the marketing site and the admin editor endpoints.
package blog

import (
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

// DTO is the JSON representation of a post.
type DTO struct {
	ID        int64     `json:"id" example:"1"`
	Slug      string    `json:"slug" example:"getting-started-with-go"`
	Title     string    `json:"title" example:"Getting Started with Go"`
	Excerpt   string    `json:"excerpt" example:"A short tour of the Go toolchain for new learners."`
	Content   string    `json:"content,omitempty"`
	Author    string    `json:"author" example:"Rajeshwari Tech"`
	Category  string    `json:"category" example:"Programming"`
	Tags      []string  `json:"tags"`
	ImageURL  string    `json:"imageUrl,omitempty" example:"https://cdn.rajeshwaritech.com/go.png"`
	Published bool      `json:"published" example:"true"`
	CreatedAt time.Time `json:"createdAt" example:"2026-03-01T10:00:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2026-03-01T10:00:00Z"`
}

// Request is the body of the create and update endpoints.
type Request struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Author    string   `json:"author"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	ImageURL  string   `json:"imageUrl"`
	Published bool     `json:"published"`
}

func (r Request) input() blogUC.Input {
	return blogUC.Input{
		Slug:      r.Slug,
		Title:     r.Title,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		Author:    r.Author,
		Category:  r.Category,
		Tags:      r.Tags,
		ImageURL:  r.ImageURL,
		Published: r.Published,
	}
}

// toDTO converts b. Listings omit the content body to keep pages small.
func toDTO(b *entity.Blog, withContent bool) DTO {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	d := DTO{
		ID:        b.ID,
		Slug:      b.Slug,
		Title:     b.Title,
		Excerpt:   b.Excerpt,
		Author:    b.Author,
		Category:  b.Category,
		Tags:      tags,
		ImageURL:  b.ImageURL,
		Published: b.Published,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if withContent {
		d.Content = b.Content
	}
	return d
}

func toDTOs(blogs []*entity.Blog, withContent bool) []DTO {
	dtos := make([]DTO, 0, len(blogs))
	for _, b := range blogs {
		dtos = append(dtos, toDTO(b, withContent))
	}
	return dtos
}
