package enrollment

import (
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	enrollUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/enrollment"
)

// Register registers the lead routes. form wraps the public submission
// endpoint and admin wraps the listing.
func Register(mux *http.ServeMux, svc *enrollUC.Service, paginationCfg pagination.Config, logger *slog.Logger, form, admin func(http.Handler) http.Handler) {
	mux.Handle("POST /api/enrollments", form(CreateHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/admin/enrollments", admin(ListHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger}))
}
