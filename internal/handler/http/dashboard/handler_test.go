package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/dashboard"
	dashUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/dashboard"
)

type stubStats struct {
	stats *dashUC.Stats
	err   error
}

func (s stubStats) Stats(context.Context) (*dashUC.Stats, error) { return s.stats, s.err }

func passThrough(h http.Handler) http.Handler { return h }

func serve(svc dashboard.StatsProvider) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	dashboard.Register(mux, svc, nil, passThrough)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))
	return rec
}

func TestStatsHandler(t *testing.T) {
	rec := serve(stubStats{stats: &dashUC.Stats{
		Leads: entity.LeadSummary{
			Total:     5,
			Courses:   3,
			Demos:     2,
			Last7Days: 4,
			ByCourse:  map[string]int{"DevOps": 3},
		},
		BlogsTotal:     7,
		BlogsPublished: 6,
		GeneratedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"leads": {"total": 5, "courses": 3, "demos": 2, "last7Days": 4, "byCourse": {"DevOps": 3}},
		"blogsTotal": 7,
		"blogsPublished": 6,
		"generatedAt": "2026-03-01T10:00:00Z"
	}`, rec.Body.String())
}

func TestStatsHandler_Error(t *testing.T) {
	rec := serve(stubStats{err: errors.New("count blogs: pq: relation \"blogs\" does not exist")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	mux := http.NewServeMux()
	dashboard.Register(mux, stubStats{}, nil, passThrough)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
