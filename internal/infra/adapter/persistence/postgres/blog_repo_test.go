package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/adapter/persistence/postgres"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
)

var blogCols = []string{
	"id", "slug", "title", "excerpt", "content", "author", "category",
	"tags", "image_url", "published", "created_at", "updated_at",
}

func blogRow(rows *sqlmock.Rows, b *entity.Blog, tags string) *sqlmock.Rows {
	return rows.AddRow(b.ID, b.Slug, b.Title, b.Excerpt, b.Content, b.Author, b.Category,
		[]byte(tags), b.ImageURL, b.Published, b.CreatedAt, b.UpdatedAt)
}

func sampleBlog() *entity.Blog {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	return &entity.Blog{
		ID: 7, Slug: "learning-go", Title: "Learning Go", Excerpt: "An excerpt long enough to pass",
		Content: "body", Author: "Jane Doe", Category: "Programming",
		Tags: []string{"go", "backend"}, ImageURL: "/uploads/go.png", Published: true,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestBlogRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleBlog()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(blogRow(sqlmock.NewRows(blogCols), want, `["go","backend"]`))

	got, err := postgres.NewBlogRepo(db).Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBlogRepo_GetBySlug_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs WHERE slug = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := postgres.NewBlogRepo(db).GetBySlug(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("GetBySlug got=%v err=%v, want nil, nil", got, err)
	}
}

func TestBlogRepo_ListPaginated_PublishedCategory(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE published = TRUE AND category = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`)).
		WithArgs("Programming", 10, 20).
		WillReturnRows(blogRow(sqlmock.NewRows(blogCols), sampleBlog(), `[]`))

	got, err := postgres.NewBlogRepo(db).ListPaginated(context.Background(),
		repository.BlogListFilter{PublishedOnly: true, Category: "Programming"}, 20, 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPaginated err=%v len=%d", err, len(got))
	}
	if len(got[0].Tags) != 0 {
		t.Fatalf("tags = %v, want empty", got[0].Tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBlogRepo_Count_NoFilter(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM blogs`)).
		WithoutArgs().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := postgres.NewBlogRepo(db).Count(context.Background(), repository.BlogListFilter{})
	if err != nil || n != 12 {
		t.Fatalf("Count n=%d err=%v", n, err)
	}
}

func TestBlogRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	b := sampleBlog()
	b.ID = 0
	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO blogs`)).
		WithArgs(b.Slug, b.Title, b.Excerpt, b.Content, b.Author, b.Category,
			`["go","backend"]`, b.ImageURL, b.Published).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), created, created))

	if err := postgres.NewBlogRepo(db).Create(context.Background(), b); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if b.ID != 42 || !b.CreatedAt.Equal(created) {
		t.Fatalf("Create did not populate generated fields: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBlogRepo_Update_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	b := sampleBlog()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE blogs SET`)).
		WithArgs(b.Slug, b.Title, b.Excerpt, b.Content, b.Author, b.Category,
			`["go","backend"]`, b.ImageURL, b.Published, b.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := postgres.NewBlogRepo(db).Update(context.Background(), b)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("Update err=%v, want ErrNotFound", err)
	}
}

func TestBlogRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blogs WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := postgres.NewBlogRepo(db).Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBlogRepo_ExistsBySlug(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("learning-go").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := postgres.NewBlogRepo(db).ExistsBySlug(context.Background(), "learning-go")
	if err != nil || !ok {
		t.Fatalf("ExistsBySlug ok=%v err=%v", ok, err)
	}
}
