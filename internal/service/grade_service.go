package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
)

// JobTypeRecalculate identifies grade recalculation jobs.
const JobTypeRecalculate = "grade.recalculate"

type gradeEnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListIDsByCourse(ctx context.Context, courseID string) ([]string, error)
	UpdateCurrentGrade(ctx context.Context, id string, grade float64, at time.Time) error
}

type gradeCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type gradeReader interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AssignmentGrade, error)
}

type recalcQueue interface {
	Enqueue(job jobs.Job) (bool, error)
}

// GradeService computes current and projected grades and keeps the persisted
// current grade of enrollments up to date.
type GradeService struct {
	enrollments gradeEnrollmentRepository
	courses     gradeCourseReader
	grades      gradeReader
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cacheTTL    time.Duration
	queue       recalcQueue
	now         func() time.Time
}

// NewGradeService constructs a GradeService. Until UseQueue is called
// recalculations run inline.
func NewGradeService(enrollments gradeEnrollmentRepository, courses gradeCourseReader, grades gradeReader, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		enrollments: enrollments,
		courses:     courses,
		grades:      grades,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// UseQueue routes recalculations through a background queue.
func (s *GradeService) UseQueue(queue recalcQueue) {
	s.queue = queue
}

// BreakdownCacheKey is the cache key of an enrollment's grade breakdown.
func BreakdownCacheKey(enrollmentID string) string {
	return "grades:enrollment:" + enrollmentID
}

// Breakdown returns the current grade of an enrollment. The second return
// value reports whether it was served from cache.
func (s *GradeService) Breakdown(ctx context.Context, userID, enrollmentID string) (*dto.GradeBreakdown, bool, error) {
	enrollment, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, false, err
	}

	key := BreakdownCacheKey(enrollment.ID)
	var cached dto.GradeBreakdown
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	course, entries, err := s.load(ctx, enrollment)
	if err != nil {
		return nil, false, err
	}
	result := gradecalc.Calculate(course.Schema(), entries)
	s.metrics.RecordCalculation("breakdown")

	breakdown := &dto.GradeBreakdown{
		EnrollmentID: enrollment.ID,
		CourseID:     course.ID,
		CourseName:   course.Name,
		Result:       result,
		Warnings:     gradecalc.ValidateWeights(course.Categories),
		CalculatedAt: s.now(),
	}
	if err := s.cache.Set(ctx, key, breakdown, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache grade breakdown", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
	}
	return breakdown, false, nil
}

// Simulate projects the course grade with hypothetical scores.
func (s *GradeService) Simulate(ctx context.Context, userID, enrollmentID string, req dto.SimulateRequest) (*dto.SimulationResponse, error) {
	if len(req.Hypotheticals) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one hypothetical score is required")
	}
	for i, h := range req.Hypotheticals {
		if strings.TrimSpace(h.CategoryName) == "" || strings.TrimSpace(h.AssignmentName) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("hypothetical %d needs category_name and assignment_name", i+1))
		}
	}

	enrollment, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	course, entries, err := s.load(ctx, enrollment)
	if err != nil {
		return nil, err
	}

	schema := course.Schema()
	current := gradecalc.Calculate(schema, entries)
	projected := gradecalc.Simulate(schema, entries, req.Hypotheticals)
	s.metrics.RecordCalculation("simulate")

	return &dto.SimulationResponse{
		Current:   current,
		Projected: projected,
		Delta:     gradecalc.Round2(projected.Percentage - current.Percentage),
	}, nil
}

// Schedule drops the cached breakdown of an enrollment and queues a
// recalculation of its current grade.
func (s *GradeService) Schedule(ctx context.Context, enrollmentID string) error {
	s.dropBreakdown(ctx, enrollmentID)
	if s.queue == nil {
		_, err := s.Recalculate(ctx, enrollmentID)
		return err
	}
	queued, err := s.queue.Enqueue(jobs.Job{Key: enrollmentID, Type: JobTypeRecalculate, Payload: enrollmentID})
	if err != nil {
		return fmt.Errorf("enqueue recalculation: %w", err)
	}
	if !queued {
		s.logger.Debug("recalculation already pending", zap.String("enrollment_id", enrollmentID))
	}
	return nil
}

// ScheduleCourse schedules every enrollment of a course.
func (s *GradeService) ScheduleCourse(ctx context.Context, courseID string) error {
	ids, err := s.enrollments.ListIDsByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := s.Schedule(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleJob is the queue handler for recalculation jobs.
func (s *GradeService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeRecalculate {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	_, err := s.Recalculate(ctx, job.Key)
	return err
}

// Recalculate recomputes and persists the current grade of an enrollment.
func (s *GradeService) Recalculate(ctx context.Context, enrollmentID string) (float64, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return 0, lookupError(err, "enrollment")
	}
	course, entries, err := s.load(ctx, enrollment)
	if err != nil {
		return 0, err
	}

	grade := gradecalc.Calculate(course.Schema(), entries).Percentage
	s.metrics.RecordCalculation("recalc")

	if err := s.enrollments.UpdateCurrentGrade(ctx, enrollment.ID, grade, s.now()); err != nil {
		return 0, lookupError(err, "enrollment")
	}
	s.dropBreakdown(ctx, enrollment.ID)
	s.logger.Debug("current grade recalculated", zap.String("enrollment_id", enrollment.ID), zap.Float64("grade", grade))
	return grade, nil
}

// dropBreakdown invalidates the cached breakdown. A failure leaves the old
// breakdown in place until its TTL expires.
func (s *GradeService) dropBreakdown(ctx context.Context, enrollmentID string) {
	if err := s.cache.Invalidate(ctx, BreakdownCacheKey(enrollmentID)); err != nil {
		s.logger.Warn("failed to invalidate grade breakdown", zap.String("enrollment_id", enrollmentID), zap.Duration("stale_for", s.cacheTTL), zap.Error(err))
	}
}

func (s *GradeService) owned(ctx context.Context, userID, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, lookupError(err, "enrollment")
	}
	if enrollment.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another user")
	}
	return enrollment, nil
}

func (s *GradeService) load(ctx context.Context, enrollment *models.Enrollment) (*models.Course, []gradecalc.Entry, error) {
	course, err := s.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, nil, lookupError(err, "course")
	}
	grades, err := s.grades.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, nil, internalError(err, "failed to load grades")
	}
	return course, course.Entries(grades), nil
}
