// Package dashboard aggregates the counters shown on the admin dashboard.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/repository"
)

// recentWindow is the "last 7 days" of the lead summary.
const recentWindow = 7 * 24 * time.Hour

// Stats is the admin dashboard payload.
type Stats struct {
	Leads          entity.LeadSummary `json:"leads"`
	BlogsTotal     int64              `json:"blogsTotal"`
	BlogsPublished int64              `json:"blogsPublished"`
	GeneratedAt    time.Time          `json:"generatedAt"`
}

// Service computes dashboard statistics.
type Service struct {
	Blogs       repository.BlogRepository
	Enrollments repository.EnrollmentRepository
	Now         func() time.Time // defaults to time.Now
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Stats runs the dashboard queries concurrently; the first failure cancels
// the rest.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	stats := &Stats{GeneratedAt: now}
	var recent int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.LeadSummary(gctx, time.Time{})
		if err != nil {
			return err
		}
		stats.Leads = summary
		return nil
	})
	g.Go(func() error {
		n, err := s.Enrollments.Count(gctx, repository.EnrollmentFilter{Since: now.Add(-recentWindow)})
		if err != nil {
			return fmt.Errorf("count recent leads: %w", err)
		}
		recent = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Blogs.Count(gctx, repository.BlogListFilter{})
		if err != nil {
			return fmt.Errorf("count blogs: %w", err)
		}
		stats.BlogsTotal = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Blogs.Count(gctx, repository.BlogListFilter{PublishedOnly: true})
		if err != nil {
			return fmt.Errorf("count published blogs: %w", err)
		}
		stats.BlogsPublished = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.Leads.Last7Days = int(recent)
	return stats, nil
}

// LeadSummary counts leads created at or after since, by kind and by course.
// Last7Days is left zero; Stats fills it.
func (s *Service) LeadSummary(ctx context.Context, since time.Time) (entity.LeadSummary, error) {
	var (
		kinds    []repository.KindCount
		byCourse map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kinds, err = s.Enrollments.CountByKind(gctx, since)
		if err != nil {
			return fmt.Errorf("count leads by kind: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byCourse, err = s.Enrollments.CountByCourse(gctx, since)
		if err != nil {
			return fmt.Errorf("count leads by course: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return entity.LeadSummary{}, err
	}

	summary := entity.LeadSummary{ByCourse: byCourse}
	if summary.ByCourse == nil {
		summary.ByCourse = map[string]int{}
	}
	for _, kc := range kinds {
		summary.Total += kc.Count
		switch kc.Kind {
		case entity.KindCourse:
			summary.Courses = kc.Count
		case entity.KindDemo:
			summary.Demos = kc.Count
		}
	}
	return summary, nil
}
