package repository

import (
	"context"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// EnrollmentFilter narrows an enrollment listing. Zero values mean "any".
type EnrollmentFilter struct {
	Kind  entity.EnrollmentKind
	Since time.Time
}

// KindCount is the number of leads of one kind.
type KindCount struct {
	Kind  entity.EnrollmentKind
	Count int
}

// EnrollmentRepository persists enrollment and demo-booking leads.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *entity.Enrollment) error
	ListPaginated(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]*entity.Enrollment, error)
	Count(ctx context.Context, filter EnrollmentFilter) (int64, error)
	// CountByKind returns lead counts grouped by kind, created at or after since.
	CountByKind(ctx context.Context, since time.Time) ([]KindCount, error)
	// CountByCourse returns lead counts grouped by course, ignoring empty courses.
	CountByCourse(ctx context.Context, since time.Time) (map[string]int, error)
}
