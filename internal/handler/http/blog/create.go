package blog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/middleware"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/metrics"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

type CreateHandler struct {
	Svc    *blogUC.Service
	Logger *slog.Logger
}

// ServeHTTP creates a post.
// @Summary      Create a blog post
// @Description  Validates and stores a post. The slug is derived from the title when omitted.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        blog  body  Request  true  "Post"
// @Success      201 {object} DTO
// @Failure      400 {object} respond.ValidationBody "Validation failed"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      409 {object} map[string]string "Slug already exists"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/admin/blogs [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	b, err := h.Svc.Create(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.RecordBlogPostCreated()
	logger := logging.ForRequest(r.Context(), h.Logger)
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		logger = logger.With(slog.String("user", u.Subject))
	}
	logger.Info("blog post created",
		slog.Int64("blog_id", b.ID),
		slog.String("slug", b.Slug),
		slog.Bool("published", b.Published))

	respond.JSON(w, http.StatusCreated, toDTO(b, true))
}
