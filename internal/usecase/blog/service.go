package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
)

// maxSlugAttempts bounds the "-2", "-3", ... suffix search for a free slug.
const maxSlugAttempts = 50

// Input carries the editable fields of a post. Slug is optional; when empty
// it is derived from Title.
type Input struct {
	Slug      string
	Title     string
	Excerpt   string
	Content   string
	Author    string
	Category  string
	Tags      []string
	ImageURL  string
	Published bool
}

func (in Input) toEntity() entity.Blog {
	return entity.Blog{
		Slug:      strings.TrimSpace(in.Slug),
		Title:     strings.TrimSpace(in.Title),
		Excerpt:   strings.TrimSpace(in.Excerpt),
		Content:   in.Content,
		Author:    strings.TrimSpace(in.Author),
		Category:  strings.TrimSpace(in.Category),
		Tags:      normalizeTags(in.Tags),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		Published: in.Published,
	}
}

// PaginatedResult is one page of posts with its metadata.
type PaginatedResult struct {
	Data       []*entity.Blog
	Pagination pagination.Metadata
}

// Service implements the blog use cases on top of a BlogRepository.
type Service struct {
	Repo       repository.BlogRepository
	Pagination pagination.Config
}

// ListPublished returns a page of published posts, newest first, optionally
// restricted to one category.
func (s *Service) ListPublished(ctx context.Context, category string, params pagination.Params) (*PaginatedResult, error) {
	return s.list(ctx, repository.BlogListFilter{PublishedOnly: true, Category: category}, params)
}

// ListAll returns a page of every post including drafts, for the admin editor.
func (s *Service) ListAll(ctx context.Context, params pagination.Params) (*PaginatedResult, error) {
	return s.list(ctx, repository.BlogListFilter{}, params)
}

func (s *Service) list(ctx context.Context, filter repository.BlogListFilter, params pagination.Params) (*PaginatedResult, error) {
	params = params.WithDefaults(s.paginationConfig())

	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count blogs: %w", err)
	}

	blogs, err := s.Repo.ListPaginated(ctx, filter, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	return &PaginatedResult{
		Data:       blogs,
		Pagination: pagination.NewMetadata(params, total),
	}, nil
}

// GetPublishedBySlug returns the published post with slug. Drafts are reported
// as not found so they never leak to the public site.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*entity.Blog, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrBlogNotFound
	}
	b, err := s.Repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get blog by slug: %w", err)
	}
	if b == nil || !b.Published {
		return nil, ErrBlogNotFound
	}
	return b, nil
}

// Get returns any post by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Blog, error) {
	if id <= 0 {
		return nil, ErrInvalidBlogID
	}
	b, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	if b == nil {
		return nil, ErrBlogNotFound
	}
	return b, nil
}

// Create validates in and stores a new post. A derived slug is made unique by
// suffixing; an explicit slug that is already taken returns ErrDuplicateSlug.
// Validation failures are returned as entity.ValidationErrors.
func (s *Service) Create(ctx context.Context, in Input) (*entity.Blog, error) {
	b := in.toEntity()
	if res := entity.ValidateBlog(b); !res.IsValid {
		return nil, res.Err()
	}

	slug, err := s.resolveSlug(ctx, b.Slug, b.Title, 0)
	if err != nil {
		return nil, err
	}
	b.Slug = slug

	if err := s.Repo.Create(ctx, &b); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return &b, nil
}

// Update replaces the editable fields of post id with in.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*entity.Blog, error) {
	if id <= 0 {
		return nil, ErrInvalidBlogID
	}

	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}
	if current == nil {
		return nil, ErrBlogNotFound
	}

	b := in.toEntity()
	if res := entity.ValidateBlog(b); !res.IsValid {
		return nil, res.Err()
	}

	switch {
	case b.Slug == "":
		b.Slug = current.Slug
	case b.Slug != current.Slug:
		slug, err := s.resolveSlug(ctx, b.Slug, b.Title, id)
		if err != nil {
			return nil, err
		}
		b.Slug = slug
	}

	b.ID = current.ID
	b.CreatedAt = current.CreatedAt
	if err := s.Repo.Update(ctx, &b); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("update blog: %w", err)
	}
	return &b, nil
}

// Delete removes post id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidBlogID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrBlogNotFound
		}
		return fmt.Errorf("delete blog: %w", err)
	}
	return nil
}

// resolveSlug returns the slug to store. selfID is the id of the post being
// updated (0 on create) so that a post never collides with itself.
func (s *Service) resolveSlug(ctx context.Context, explicit, title string, selfID int64) (string, error) {
	if explicit != "" {
		slug := entity.Slugify(explicit)
		if slug == "" {
			return "", entity.ValidationErrors{{Field: "slug", Code: entity.CodeInvalidOption, Message: "slug must contain letters or digits"}}
		}
		taken, err := s.slugTaken(ctx, slug, selfID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrDuplicateSlug
		}
		return slug, nil
	}

	base := entity.Slugify(title)
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.slugTaken(ctx, candidate, selfID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", ErrDuplicateSlug
}

func (s *Service) slugTaken(ctx context.Context, slug string, selfID int64) (bool, error) {
	if selfID > 0 {
		existing, err := s.Repo.GetBySlug(ctx, slug)
		if err != nil {
			return false, fmt.Errorf("check slug: %w", err)
		}
		return existing != nil && existing.ID != selfID, nil
	}
	exists, err := s.Repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (s *Service) paginationConfig() pagination.Config {
	if s.Pagination.MaxLimit == 0 {
		return pagination.DefaultConfig()
	}
	return s.Pagination
}

// normalizeTags trims tags and drops empty and duplicate entries, keeping
// first-seen order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
