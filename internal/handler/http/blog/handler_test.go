package blog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/blog"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

// memRepo is an in-memory BlogRepository. Listing ignores ordering.
type memRepo struct {
	mu     sync.Mutex
	blogs  map[int64]*entity.Blog
	nextID int64
	err    error
}

func newMemRepo(blogs ...*entity.Blog) *memRepo {
	r := &memRepo{blogs: make(map[int64]*entity.Blog), nextID: 1}
	for _, b := range blogs {
		b.ID = r.nextID
		r.nextID++
		r.blogs[b.ID] = b
	}
	return r
}

func (r *memRepo) matching(filter repository.BlogListFilter) []*entity.Blog {
	var out []*entity.Blog
	for id := int64(1); id < r.nextID; id++ {
		b, ok := r.blogs[id]
		if !ok {
			continue
		}
		if filter.PublishedOnly && !b.Published {
			continue
		}
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *memRepo) ListPaginated(_ context.Context, filter repository.BlogListFilter, offset, limit int) ([]*entity.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	all := r.matching(filter)
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (r *memRepo) Count(_ context.Context, filter repository.BlogListFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.matching(filter))), nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*entity.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blogs[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) GetBySlug(_ context.Context, slug string) (*entity.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blogs {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	b, err := r.GetBySlug(ctx, slug)
	return b != nil, err
}

func (r *memRepo) Create(_ context.Context, b *entity.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.blogs[b.ID] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, b *entity.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[b.ID]; !ok {
		return entity.ErrNotFound
	}
	cp := *b
	r.blogs[b.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.blogs, id)
	return nil
}

func passThrough(h http.Handler) http.Handler { return h }

func newMux(repo *memRepo) *http.ServeMux {
	mux := http.NewServeMux()
	svc := &blogUC.Service{Repo: repo}
	blog.Register(mux, svc, pagination.DefaultConfig(), nil, passThrough, passThrough)
	return mux
}

func post(slug, title string, published bool) *entity.Blog {
	return &entity.Blog{
		Slug:      slug,
		Title:     title,
		Excerpt:   "An excerpt that is long enough to pass validation.",
		Content:   strings.Repeat("content ", 20),
		Author:    "Rajeshwari Tech",
		Category:  "Programming",
		Published: published,
	}
}

func validRequest() map[string]any {
	return map[string]any{
		"title":     "Getting Started with Go",
		"excerpt":   "A short tour of the Go toolchain for new learners.",
		"content":   strings.Repeat("Go is a small language. ", 10),
		"author":    "Rajeshwari Tech",
		"category":  "Programming",
		"tags":      []string{"go", "beginners"},
		"published": true,
	}
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestList_PublishedOnly(t *testing.T) {
	mux := newMux(newMemRepo(
		post("first-post", "First post", true),
		post("draft-post", "Draft post", false),
		post("second-post", "Second post", true),
	))

	rec := do(t, mux, http.MethodGet, "/api/blogs?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pagination.Response[blog.DTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Pagination.Total)
	require.Len(t, resp.Data, 2)
	for _, d := range resp.Data {
		assert.True(t, d.Published)
		assert.Empty(t, d.Content, "listings omit content")
		assert.NotNil(t, d.Tags)
	}
}

func TestList_InvalidPagination(t *testing.T) {
	mux := newMux(newMemRepo())

	rec := do(t, mux, http.MethodGet, "/api/blogs?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "page must be a positive integer")
}

func TestList_RepositoryFailure(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("pq: connection refused password=secret")
	mux := newMux(repo)

	rec := do(t, mux, http.MethodGet, "/api/blogs", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestGet(t *testing.T) {
	mux := newMux(newMemRepo(
		post("first-post", "First post", true),
		post("draft-post", "Draft post", false),
	))

	rec := do(t, mux, http.MethodGet, "/api/blogs/first-post", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d blog.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "first-post", d.Slug)
	assert.NotEmpty(t, d.Content)

	rec = do(t, mux, http.MethodGet, "/api/blogs/draft-post", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/blogs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminList_IncludesDrafts(t *testing.T) {
	mux := newMux(newMemRepo(
		post("first-post", "First post", true),
		post("draft-post", "Draft post", false),
	))

	rec := do(t, mux, http.MethodGet, "/api/admin/blogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp pagination.Response[blog.DTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestCreate(t *testing.T) {
	repo := newMemRepo()
	mux := newMux(repo)

	rec := do(t, mux, http.MethodPost, "/api/admin/blogs", validRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var d blog.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, int64(1), d.ID)
	assert.Equal(t, "getting-started-with-go", d.Slug)
	assert.Equal(t, []string{"go", "beginners"}, d.Tags)
}

func TestCreate_ValidationFailed(t *testing.T) {
	mux := newMux(newMemRepo())

	rec := do(t, mux, http.MethodPost, "/api/admin/blogs", map[string]any{
		"title":    "Hi",
		"excerpt":  "short",
		"content":  "tiny",
		"category": "Cooking",
		"imageUrl": "ftp://example.com/a.png",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body respond.ValidationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.GreaterOrEqual(t, len(body.Errors), 4)

	fields := make(map[string]bool)
	for _, e := range body.Errors {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Code)
	}
	for _, f := range []string{"title", "excerpt", "content", "author", "category", "imageUrl"} {
		assert.True(t, fields[f], "missing error for %s", f)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	mux := newMux(newMemRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/blogs", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestCreate_DuplicateExplicitSlug(t *testing.T) {
	mux := newMux(newMemRepo(post("getting-started", "Existing post", true)))

	body := validRequest()
	body["slug"] = "getting-started"
	rec := do(t, mux, http.MethodPost, "/api/admin/blogs", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdate(t *testing.T) {
	repo := newMemRepo(post("first-post", "First post", false))
	mux := newMux(repo)

	body := validRequest()
	body["title"] = "First post, revised"
	rec := do(t, mux, http.MethodPut, "/api/admin/blogs/1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var d blog.DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "first-post", d.Slug, "slug is kept when omitted")
	assert.Equal(t, "First post, revised", d.Title)
	assert.True(t, d.Published)
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   any
		want   int
	}{
		{name: "non numeric id", target: "/api/admin/blogs/abc", body: validRequest(), want: http.StatusBadRequest},
		{name: "zero id", target: "/api/admin/blogs/0", body: validRequest(), want: http.StatusBadRequest},
		{name: "missing post", target: "/api/admin/blogs/99", body: validRequest(), want: http.StatusNotFound},
		{name: "invalid post", target: "/api/admin/blogs/1", body: map[string]any{"title": "x"}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMux(newMemRepo(post("first-post", "First post", true)))
			rec := do(t, mux, http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestDelete(t *testing.T) {
	repo := newMemRepo(post("first-post", "First post", true))
	mux := newMux(repo)

	rec := do(t, mux, http.MethodDelete, "/api/admin/blogs/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, mux, http.MethodDelete, "/api/admin/blogs/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, http.MethodDelete, "/api/admin/blogs/-4", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_AppliesGuards(t *testing.T) {
	var readCalls, adminCalls int
	read := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			readCalls++
			next.ServeHTTP(w, r)
		})
	}
	admin := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			adminCalls++
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	mux := http.NewServeMux()
	blog.Register(mux, &blogUC.Service{Repo: newMemRepo()}, pagination.DefaultConfig(), nil, read, admin)

	assert.Equal(t, http.StatusOK, do(t, mux, http.MethodGet, "/api/blogs", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, mux, http.MethodPost, "/api/admin/blogs", validRequest()).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, mux, http.MethodDelete, "/api/admin/blogs/1", nil).Code)
	assert.Equal(t, 1, readCalls)
	assert.Equal(t, 2, adminCalls)
}
