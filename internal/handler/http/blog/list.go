package blog

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

type ListHandler struct {
	Svc           *blogUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists published posts.
// @Summary      List published blog posts
// @Description  Returns published posts, newest first. Drafts are never listed.
// @Tags         blogs
// @Produce      json
// @Param        page      query  int     false  "Page number (1-based)" default(1) minimum(1)
// @Param        limit     query  int     false  "Items per page" default(12) minimum(1) maximum(100)
// @Param        category  query  string  false  "Only posts in this category"
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {object} map[string]string "Invalid query parameters"
// @Failure      429 {object} map[string]any "Too many requests"
// @Header       429 {integer} Retry-After "Seconds until the client should retry"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/blogs [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.ForRequest(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		pagination.RecordRequest("blogs", http.StatusBadRequest, params.Page)
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	result, err := h.Svc.ListPublished(ctx, category, params)
	if err != nil {
		logger.Error("failed to list blogs",
			slog.Int("page", params.Page),
			slog.Any("error", err))
		pagination.RecordRequest("blogs", http.StatusInternalServerError, params.Page)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	pagination.RecordRequest("blogs", http.StatusOK, params.Page)
	pagination.UpdateTotalCount("blogs", result.Pagination.Total)
	logger.Debug("blog list served",
		slog.Int("page", params.Page),
		slog.Int("limit", params.Limit),
		slog.Int("returned", len(result.Data)),
		slog.Duration("duration", time.Since(start)))

	respond.JSON(w, http.StatusOK, pagination.NewResponse(toDTOs(result.Data, false), result.Pagination))
}

type AdminListHandler struct {
	Svc           *blogUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists every post, drafts included.
// @Summary      List all blog posts
// @Description  Returns every post including drafts, newest first.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page number (1-based)" default(1) minimum(1)
// @Param        limit  query  int  false  "Items per page" default(12) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {object} map[string]string "Invalid query parameters"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/admin/blogs [get]
func (h AdminListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.ListAll(ctx, params)
	if err != nil {
		logging.ForRequest(ctx, h.Logger).Error("failed to list blogs for admin", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(toDTOs(result.Data, false), result.Pagination))
}
