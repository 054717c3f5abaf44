// Package enrollment captures course enrollment and demo-booking leads from
// the public forms and lists them for the admin dashboard.
package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
)

// LeadNotifier is told about every stored lead. Implementations must not block.
type LeadNotifier interface {
	NotifyNewLead(ctx context.Context, lead *entity.Enrollment) error
}

// Input is the data submitted by the enrollment or demo-booking form.
type Input struct {
	Kind          entity.EnrollmentKind
	Name          string
	Email         string
	Phone         string
	Course        string
	PreferredDate string
	Message       string
	Source        string
}

// PaginatedResult is one page of leads with its metadata.
type PaginatedResult struct {
	Data       []*entity.Enrollment
	Pagination pagination.Metadata
}

// Service implements the enrollment use cases.
type Service struct {
	Repo       repository.EnrollmentRepository
	Notifier   LeadNotifier // optional
	Pagination pagination.Config
}

// Create validates in, stores the lead and hands it to the notifier. A
// notifier error is logged; the lead is already stored.
func (s *Service) Create(ctx context.Context, in Input) (*entity.Enrollment, error) {
	e := entity.Enrollment{
		Kind:          entity.EnrollmentKind(strings.ToLower(strings.TrimSpace(string(in.Kind)))),
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         strings.TrimSpace(in.Phone),
		Course:        strings.TrimSpace(in.Course),
		PreferredDate: strings.TrimSpace(in.PreferredDate),
		Message:       strings.TrimSpace(in.Message),
		Source:        strings.TrimSpace(in.Source),
	}
	if e.Source == "" {
		e.Source = "website"
	}

	if res := entity.ValidateEnrollment(e); !res.IsValid {
		return nil, res.Err()
	}

	if err := s.Repo.Create(ctx, &e); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	if s.Notifier != nil {
		if err := s.Notifier.NotifyNewLead(ctx, &e); err != nil {
			slog.WarnContext(ctx, "lead notification failed",
				slog.Int64("lead_id", e.ID),
				slog.Any("error", err))
		}
	}
	return &e, nil
}

// List returns a page of leads, newest first.
func (s *Service) List(ctx context.Context, filter repository.EnrollmentFilter, params pagination.Params) (*PaginatedResult, error) {
	cfg := s.Pagination
	if cfg.MaxLimit == 0 {
		cfg = pagination.DefaultConfig()
	}
	params = params.WithDefaults(cfg)

	if filter.Kind != "" && filter.Kind != entity.KindCourse && filter.Kind != entity.KindDemo {
		return nil, entity.ValidationErrors{{Field: "kind", Code: entity.CodeInvalidOption, Message: "kind must be one of: course, demo"}}
	}

	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	leads, err := s.Repo.ListPaginated(ctx, filter, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return &PaginatedResult{
		Data:       leads,
		Pagination: pagination.NewMetadata(params, total),
	}, nil
}
