package repository

import (
	"context"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// BlogListFilter narrows a blog listing.
type BlogListFilter struct {
	PublishedOnly bool
	Category      string // empty means any category
}

// BlogRepository persists blog posts.
//
// Get and GetBySlug return (nil, nil) when no post matches.
type BlogRepository interface {
	// ListPaginated returns posts ordered by created_at DESC.
	ListPaginated(ctx context.Context, filter BlogListFilter, offset, limit int) ([]*entity.Blog, error)
	Count(ctx context.Context, filter BlogListFilter) (int64, error)
	Get(ctx context.Context, id int64) (*entity.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Blog, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, blog *entity.Blog) error
	Update(ctx context.Context, blog *entity.Blog) error
	Delete(ctx context.Context, id int64) error
}
