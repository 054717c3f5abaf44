package blog

import (
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/pathutil"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

type DeleteHandler struct {
	Svc    *blogUC.Service
	Logger *slog.Logger
}

// ServeHTTP deletes a post.
// @Summary      Delete a blog post
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  int  true  "Post ID"
// @Success      204 "No Content"
// @Failure      400 {object} map[string]string "Invalid ID"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      404 {object} map[string]string "Not found"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/admin/blogs/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, blogUC.ErrInvalidBlogID)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	logging.ForRequest(r.Context(), h.Logger).Info("blog post deleted", slog.Int64("blog_id", id))
	w.WriteHeader(http.StatusNoContent)
}
