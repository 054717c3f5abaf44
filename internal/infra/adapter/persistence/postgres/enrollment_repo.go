package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
)

type EnrollmentRepo struct {
	db *sql.DB
}

func NewEnrollmentRepo(db *sql.DB) repository.EnrollmentRepository {
	return &EnrollmentRepo{db: db}
}

func enrollmentWhere(filter repository.EnrollmentFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		conds = append(conds, "kind = $"+strconv.Itoa(len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (repo *EnrollmentRepo) Create(ctx context.Context, e *entity.Enrollment) error {
	defer observe("create_enrollment", time.Now())
	const query = `
INSERT INTO enrollments (kind, name, email, phone, course, preferred_date, message, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		string(e.Kind), e.Name, e.Email, e.Phone, e.Course, e.PreferredDate, e.Message, e.Source,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *EnrollmentRepo) ListPaginated(ctx context.Context, filter repository.EnrollmentFilter, offset, limit int) ([]*entity.Enrollment, error) {
	defer observe("list_enrollments", time.Now())
	where, args := enrollmentWhere(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
SELECT id, kind, name, email, phone, course, preferred_date, message, source, created_at
FROM enrollments
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]*entity.Enrollment, 0, limit)
	for rows.Next() {
		var e entity.Enrollment
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Name, &e.Email, &e.Phone, &e.Course,
			&e.PreferredDate, &e.Message, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListPaginated: Scan: %w", err)
		}
		e.Kind = entity.EnrollmentKind(kind)
		result = append(result, &e)
	}
	return result, rows.Err()
}

func (repo *EnrollmentRepo) Count(ctx context.Context, filter repository.EnrollmentFilter) (int64, error) {
	where, args := enrollmentWhere(filter)
	var n int64
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM enrollments "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (repo *EnrollmentRepo) CountByKind(ctx context.Context, since time.Time) ([]repository.KindCount, error) {
	const query = `
SELECT kind, COUNT(*)
FROM enrollments
WHERE created_at >= $1
GROUP BY kind
ORDER BY kind`
	rows, err := repo.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("CountByKind: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []repository.KindCount
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("CountByKind: Scan: %w", err)
		}
		result = append(result, repository.KindCount{Kind: entity.EnrollmentKind(kind), Count: n})
	}
	return result, rows.Err()
}

func (repo *EnrollmentRepo) CountByCourse(ctx context.Context, since time.Time) (map[string]int, error) {
	const query = `
SELECT course, COUNT(*)
FROM enrollments
WHERE created_at >= $1 AND course <> ''
GROUP BY course`
	rows, err := repo.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("CountByCourse: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]int)
	for rows.Next() {
		var course string
		var n int
		if err := rows.Scan(&course, &n); err != nil {
			return nil, fmt.Errorf("CountByCourse: Scan: %w", err)
		}
		result[course] = n
	}
	return result, rows.Err()
}
