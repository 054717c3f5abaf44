package enrollment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/respond"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/metrics"
	enrollUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/enrollment"
)

const thankYouMessage = "Thank you! Our team will contact you shortly."

var errInvalidBody = errors.New("invalid request body")

type CreateHandler struct {
	Svc    *enrollUC.Service
	Logger *slog.Logger
}

// ServeHTTP stores a course enrollment or demo booking.
// @Summary      Submit an enrollment or demo booking
// @Description  Validates and stores a lead, then notifies the team. kind is "course" or "demo"; course is required for enrollments.
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Param        enrollment  body  Request  true  "Lead"
// @Success      201 {object} CreatedResponse
// @Failure      400 {object} respond.ValidationBody "Validation failed"
// @Failure      403 {object} map[string]string "CORS policy violation"
// @Failure      429 {object} map[string]any "Too many requests"
// @Header       429 {integer} Retry-After "Seconds until the client should retry"
// @Failure      500 {object} map[string]string "Internal server error"
// @Router       /api/enrollments [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	ctx := r.Context()
	lead, err := h.Svc.Create(ctx, req.input())
	if err != nil {
		var verrs entity.ValidationErrors
		if !errors.As(err, &verrs) {
			logging.ForRequest(ctx, h.Logger).Error("failed to store lead", slog.Any("error", err))
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	metrics.RecordLeadCreated(string(lead.Kind))
	logging.ForRequest(ctx, h.Logger).Info("lead captured",
		slog.Int64("lead_id", lead.ID),
		slog.String("kind", string(lead.Kind)),
		slog.String("source", lead.Source))

	respond.JSON(w, http.StatusCreated, CreatedResponse{
		ID:      lead.ID,
		Kind:    string(lead.Kind),
		Message: thankYouMessage,
	})
}
