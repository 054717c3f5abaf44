package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/metrics"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
)

const blogColumns = `id, slug, title, excerpt, content, author, category, tags, image_url, published, created_at, updated_at`

type BlogRepo struct {
	db *sql.DB
}

func NewBlogRepo(db *sql.DB) repository.BlogRepository {
	return &BlogRepo{db: db}
}

// observe records the duration of a query under operation.
func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

// blogWhere renders the WHERE clause for filter; placeholders start at $1.
func blogWhere(filter repository.BlogListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.PublishedOnly {
		conds = append(conds, "published = TRUE")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (repo *BlogRepo) ListPaginated(ctx context.Context, filter repository.BlogListFilter, offset, limit int) ([]*entity.Blog, error) {
	defer observe("list_blogs", time.Now())
	where, args := blogWhere(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
SELECT %s
FROM blogs
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, blogColumns, where, len(args)-1, len(args))

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	blogs := make([]*entity.Blog, 0, limit)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPaginated: %w", err)
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

func (repo *BlogRepo) Count(ctx context.Context, filter repository.BlogListFilter) (int64, error) {
	where, args := blogWhere(filter)
	var n int64
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blogs "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (repo *BlogRepo) Get(ctx context.Context, id int64) (*entity.Blog, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1 LIMIT 1`, id)
	b, err := scanBlog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return b, nil
}

func (repo *BlogRepo) GetBySlug(ctx context.Context, slug string) (*entity.Blog, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE slug = $1 LIMIT 1`, slug)
	b, err := scanBlog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: %w", err)
	}
	return b, nil
}

func (repo *BlogRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := repo.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blogs WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsBySlug: %w", err)
	}
	return exists, nil
}

func (repo *BlogRepo) Create(ctx context.Context, b *entity.Blog) error {
	defer observe("create_blog", time.Now())
	tags, err := marshalTags(b.Tags)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	const query = `
INSERT INTO blogs (slug, title, excerpt, content, author, category, tags, image_url, published)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)
RETURNING id, created_at, updated_at`
	err = repo.db.QueryRowContext(ctx, query,
		b.Slug, b.Title, b.Excerpt, b.Content, b.Author, b.Category, tags, b.ImageURL, b.Published,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *BlogRepo) Update(ctx context.Context, b *entity.Blog) error {
	tags, err := marshalTags(b.Tags)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	const query = `
UPDATE blogs SET
       slug       = $1,
       title      = $2,
       excerpt    = $3,
       content    = $4,
       author     = $5,
       category   = $6,
       tags       = $7::jsonb,
       image_url  = $8,
       published  = $9,
       updated_at = now()
WHERE id = $10`
	res, err := repo.db.ExecContext(ctx, query,
		b.Slug, b.Title, b.Excerpt, b.Content, b.Author, b.Category, tags, b.ImageURL, b.Published, b.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *BlogRepo) Delete(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(s rowScanner) (*entity.Blog, error) {
	var b entity.Blog
	var tags []byte
	if err := s.Scan(&b.ID, &b.Slug, &b.Title, &b.Excerpt, &b.Content, &b.Author,
		&b.Category, &tags, &b.ImageURL, &b.Published, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &b.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	return &b, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(raw), nil
}
