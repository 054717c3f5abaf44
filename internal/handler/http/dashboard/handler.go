// Package dashboard serves the admin dashboard statistics.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	dashUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/dashboard"
)

// StatsProvider computes the dashboard payload.
type StatsProvider interface {
	Stats(ctx context.Context) (*dashUC.Stats, error)
}

// Register registers the dashboard route behind admin.
func Register(mux *http.ServeMux, svc StatsProvider, logger *slog.Logger, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/admin/dashboard", admin(StatsHandler{Svc: svc, Logger: logger}))
}

type StatsHandler struct {
	Svc    StatsProvider
	Logger *slog.Logger
}

// ServeHTTP returns lead and blog counters.
// @Summary      Dashboard statistics
// @Description  Lead totals by kind and course, leads of the last 7 days, and blog counts.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} dashboard.Stats
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/admin/dashboard [get]
func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		logging.ForRequest(r.Context(), h.Logger).Error("failed to compute dashboard stats", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
