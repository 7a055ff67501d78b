package service

import (
	"context"
	"time"

	"github.com/noah-isme/gradetrack-api/internal/models"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

type analyticsEnrollmentReader interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error)
}

type analyticsCourseReader interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
}

// AnalyticsService ranks upcoming assessments across active enrollments.
type AnalyticsService struct {
	enrollments analyticsEnrollmentReader
	courses     analyticsCourseReader
	now         func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(enrollments analyticsEnrollmentReader, courses analyticsCourseReader) *AnalyticsService {
	return &AnalyticsService{enrollments: enrollments, courses: courses, now: time.Now}
}

// Upcoming returns up to limit future assignments of the user's active
// enrollments, most important first. A non-positive limit returns all.
func (s *AnalyticsService) Upcoming(ctx context.Context, userID string, limit int) ([]gradecalc.Upcoming, error) {
	active := false
	enrollments, err := s.enrollments.List(ctx, models.EnrollmentFilter{UserID: userID, Archived: &active})
	if err != nil {
		return nil, internalError(err, "failed to list enrollments")
	}
	enrolled := make(map[string]struct{}, len(enrollments))
	for _, enrollment := range enrollments {
		enrolled[enrollment.CourseID] = struct{}{}
	}

	courses, err := s.courses.ListByOwner(ctx, userID)
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	inputs := make([]gradecalc.UpcomingCourse, 0, len(courses))
	for _, course := range courses {
		if _, ok := enrolled[course.ID]; !ok {
			continue
		}
		inputs = append(inputs, gradecalc.UpcomingCourse{ID: course.ID, Name: course.Name, Categories: course.Categories})
	}

	upcoming := gradecalc.RankUpcoming(inputs, s.now())
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	if upcoming == nil {
		upcoming = []gradecalc.Upcoming{}
	}
	return upcoming, nil
}
