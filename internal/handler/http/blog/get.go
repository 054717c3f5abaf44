package blog

import (
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

type GetHandler struct{ Svc *blogUC.Service }

// ServeHTTP returns one published post.
// @Summary      Get a blog post
// @Description  Returns the published post with the given slug, including its content.
// @Tags         blogs
// @Produce      json
// @Param        slug  path  string  true  "Post slug"
// @Success      200 {object} DTO
// @Failure      404 {object} map[string]string "Not found"
// @Failure      429 {object} map[string]any "Too many requests"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/blogs/{slug} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := h.Svc.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(b, true))
}
