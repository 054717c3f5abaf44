package blog

import (
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

// Register registers the blog routes. read wraps the public endpoints and
// admin wraps the editor endpoints; both are SecureAPI profiles in production.
func Register(mux *http.ServeMux, svc *blogUC.Service, paginationCfg pagination.Config, logger *slog.Logger, read, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/blogs", read(ListHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger}))
	mux.Handle("GET /api/blogs/{slug}", read(GetHandler{Svc: svc}))

	mux.Handle("GET /api/admin/blogs", admin(AdminListHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger}))
	mux.Handle("POST /api/admin/blogs", admin(CreateHandler{Svc: svc, Logger: logger}))
	mux.Handle("PUT /api/admin/blogs/{id}", admin(UpdateHandler{Svc: svc, Logger: logger}))
	mux.Handle("DELETE /api/admin/blogs/{id}", admin(DeleteHandler{Svc: svc, Logger: logger}))
}
