package blog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/pathutil"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

type UpdateHandler struct {
	Svc    *blogUC.Service
	Logger *slog.Logger
}

// ServeHTTP replaces the editable fields of a post.
// @Summary      Update a blog post
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  int      true  "Post ID"
// @Param        blog  body  Request  true  "Post"
// @Success      200 {object} DTO
// @Failure      400 {object} respond.ValidationBody "Validation failed or invalid ID"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      404 {object} map[string]string "Not found"
// @Failure      409 {object} map[string]string "Slug already exists"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/admin/blogs/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, blogUC.ErrInvalidBlogID)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	b, err := h.Svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	logging.ForRequest(r.Context(), h.Logger).Info("blog post updated",
		slog.Int64("blog_id", b.ID),
		slog.String("slug", b.Slug))
	respond.JSON(w, http.StatusOK, toDTO(b, true))
}
