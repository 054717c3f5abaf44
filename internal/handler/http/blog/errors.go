package blog

import (
	"errors"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
)

// writeServiceError maps usecase errors to status codes. Validation errors
// are handled by respond.SafeError.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, blogUC.ErrBlogNotFound):
		respond.Error(w, http.StatusNotFound, blogUC.ErrBlogNotFound)
	case errors.Is(err, blogUC.ErrInvalidBlogID):
		respond.Error(w, http.StatusBadRequest, blogUC.ErrInvalidBlogID)
	case errors.Is(err, blogUC.ErrDuplicateSlug):
		respond.Error(w, http.StatusConflict, blogUC.ErrDuplicateSlug)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

var errInvalidBody = errors.New("invalid request body")
