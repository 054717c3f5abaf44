package enrollment

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
	enrollUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/enrollment"
)

var errInvalidSince = errors.New("invalid query parameter: since must be a date (YYYY-MM-DD) or RFC3339 timestamp")

type ListHandler struct {
	Svc           *enrollUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists leads for the back office.
// @Summary      List leads
// @Description  Returns enrollment and demo-booking leads, newest first.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int     false  "Page number (1-based)" default(1) minimum(1)
// @Param        limit  query  int     false  "Items per page" default(12) minimum(1) maximum(100)
// @Param        kind   query  string  false  "course or demo"
// @Param        since  query  string  false  "Only leads created at or after this date"
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {object} respond.ValidationBody "Invalid filter"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/admin/enrollments [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		pagination.RecordRequest("enrollments", http.StatusBadRequest, params.Page)
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	filter := repository.EnrollmentFilter{
		Kind: entity.EnrollmentKind(strings.ToLower(strings.TrimSpace(q.Get("kind")))),
	}
	if s := strings.TrimSpace(q.Get("since")); s != "" {
		since, err := parseSince(s)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, errInvalidSince)
			return
		}
		filter.Since = since
	}

	result, err := h.Svc.List(ctx, filter, params)
	if err != nil {
		var verrs entity.ValidationErrors
		if !errors.As(err, &verrs) {
			logging.ForRequest(ctx, h.Logger).Error("failed to list leads", slog.Any("error", err))
			pagination.RecordRequest("enrollments", http.StatusInternalServerError, params.Page)
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, e := range result.Data {
		dtos = append(dtos, toDTO(e))
	}

	pagination.RecordRequest("enrollments", http.StatusOK, params.Page)
	pagination.UpdateTotalCount("enrollments", result.Pagination.Total)
	respond.JSON(w, http.StatusOK, pagination.NewResponse(dtos, result.Pagination))
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
