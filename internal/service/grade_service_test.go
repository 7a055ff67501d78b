package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
)

func gradedRow(category, assignment string, score float64) models.AssignmentGrade {
	return models.AssignmentGrade{
		EnrollmentID:   "enr-1",
		AssignmentID:   category + "-" + assignment,
		CategoryName:   category,
		AssignmentName: assignment,
		Score:          float(score),
		MaxScore:       float(100),
		Status:         gradecalc.StatusGraded,
	}
}

type gradeFixture struct {
	svc         *GradeService
	enrollments *fakeEnrollmentRepo
	cache       *memoryCache
	metrics     *MetricsService
}

func newGradeFixture() gradeFixture {
	course := models.Course{
		ID:      "course-1",
		OwnerID: "user-1",
		Name:    "Calculus",
		Categories: models.CategoryList{
			{Name: "Exams", Weight: 60, Assignments: []gradecalc.Assignment{{Name: "Midterm", MaxScore: 100}, {Name: "Final", MaxScore: 100}}},
			{Name: "HW", Weight: 40, DropLowest: 1},
		},
	}
	grades := newFakeGradeRepo(
		gradedRow("Exams", "Midterm", 90),
		gradedRow("HW", "HW1", 50),
		gradedRow("HW", "HW2", 100),
		gradedRow("HW", "HW3", 0),
	)
	f := gradeFixture{
		enrollments: newFakeEnrollmentRepo(models.Enrollment{ID: "enr-1", UserID: "user-1", CourseID: "course-1"}),
		cache:       newMemoryCache(),
		metrics:     NewMetricsService(),
	}
	cache := NewCacheService(f.cache, f.metrics, time.Minute, nil, true)
	f.svc = NewGradeService(f.enrollments, newFakeCourseRepo(course), grades, cache, f.metrics, time.Minute, nil)
	return f
}

func TestGradeServiceBreakdownIsCached(t *testing.T) {
	f := newGradeFixture()

	breakdown, cached, err := f.svc.Breakdown(context.Background(), "user-1", "enr-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 84.00, breakdown.Result.Percentage)
	assert.Equal(t, "Calculus", breakdown.CourseName)
	require.Len(t, breakdown.Result.Categories, 2)

	again, cached, err := f.svc.Breakdown(context.Background(), "user-1", "enr-1")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 84.00, again.Result.Percentage)

	snapshot := f.metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.Equal(t, uint64(1), snapshot.GradeCalculations)
}

func TestGradeServiceBreakdownForbidden(t *testing.T) {
	f := newGradeFixture()

	_, _, err := f.svc.Breakdown(context.Background(), "user-2", "enr-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestGradeServiceSimulate(t *testing.T) {
	f := newGradeFixture()

	resp, err := f.svc.Simulate(context.Background(), "user-1", "enr-1", dto.SimulateRequest{
		Hypotheticals: []gradecalc.Hypothetical{{CategoryName: "Exams", AssignmentName: "Midterm", Score: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, 84.00, resp.Current.Percentage)
	assert.Equal(t, 90.00, resp.Projected.Percentage)
	assert.Equal(t, 6.00, resp.Delta)

	_, err = f.svc.Simulate(context.Background(), "user-1", "enr-1", dto.SimulateRequest{
		Hypotheticals: []gradecalc.Hypothetical{{CategoryName: "Exams"}},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestGradeServiceScheduleInlineRecalculates(t *testing.T) {
	f := newGradeFixture()
	_, _, err := f.svc.Breakdown(context.Background(), "user-1", "enr-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Schedule(context.Background(), "enr-1"))
	assert.Equal(t, 84.00, f.enrollments.current["enr-1"])
	assert.Contains(t, f.cache.deleted, BreakdownCacheKey("enr-1"))
	_, stillCached := f.cache.values[BreakdownCacheKey("enr-1")]
	assert.False(t, stillCached)
}

func TestGradeServiceScheduleUsesQueue(t *testing.T) {
	f := newGradeFixture()
	queue := &recordingQueue{}
	f.svc.UseQueue(queue)

	require.NoError(t, f.svc.Schedule(context.Background(), "enr-1"))
	require.NoError(t, f.svc.Schedule(context.Background(), "enr-1"))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeRecalculate, queue.jobs[0].Type)
	assert.NotContains(t, f.enrollments.current, "enr-1")

	require.NoError(t, f.svc.HandleJob(context.Background(), queue.jobs[0]))
	assert.Equal(t, 84.00, f.enrollments.current["enr-1"])
}

func TestGradeServiceScheduleCourse(t *testing.T) {
	f := newGradeFixture()
	queue := &recordingQueue{}
	f.svc.UseQueue(queue)

	require.NoError(t, f.svc.ScheduleCourse(context.Background(), "course-1"))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "enr-1", queue.jobs[0].Key)
}

func TestGradeServiceHandleJobRejectsUnknownType(t *testing.T) {
	f := newGradeFixture()
	assert.Error(t, f.svc.HandleJob(context.Background(), jobs.Job{Key: "enr-1", Type: "other"}))
}

func TestGradeServiceRecalculateMissingEnrollment(t *testing.T) {
	f := newGradeFixture()
	_, err := f.svc.Recalculate(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGradeServiceRecalculateFollowsRenamedCategory(t *testing.T) {
	course := models.Course{
		ID:      "course-1",
		OwnerID: "user-1",
		Categories: models.CategoryList{
			{Name: "Homework", Weight: 100, Assignments: []gradecalc.Assignment{{ID: "a1", Name: "Problem Set 1", MaxScore: 100}}},
		},
	}
	grades := newFakeGradeRepo(models.AssignmentGrade{
		EnrollmentID:   "enr-1",
		AssignmentID:   "a1",
		CategoryName:   "HW",
		AssignmentName: "PS1",
		Score:          float(90),
		MaxScore:       float(100),
		Status:         gradecalc.StatusGraded,
	})
	enrollments := newFakeEnrollmentRepo(models.Enrollment{ID: "enr-1", UserID: "user-1", CourseID: "course-1"})
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)
	svc := NewGradeService(enrollments, newFakeCourseRepo(course), grades, cache, metrics, time.Minute, nil)

	grade, err := svc.Recalculate(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, 90.00, grade)

	breakdown, _, err := svc.Breakdown(context.Background(), "user-1", "enr-1")
	require.NoError(t, err)
	require.Len(t, breakdown.Result.Categories, 1)
	assert.Equal(t, "Homework", breakdown.Result.Categories[0].Name)
	assert.Equal(t, 90.00, breakdown.Result.Percentage)
}

type readOnlyCache struct{ *memoryCache }

func (r *readOnlyCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("READONLY You can't write against a read only replica")
}

func (r *readOnlyCache) Delete(context.Context, ...string) error {
	return errors.New("READONLY You can't write against a read only replica")
}

func TestGradeServiceLogsCacheWriteFailures(t *testing.T) {
	f := newGradeFixture()
	core, logs := observer.New(zapcore.WarnLevel)
	cache := NewCacheService(&readOnlyCache{memoryCache: newMemoryCache()}, f.metrics, time.Minute, nil, true)
	course, err := f.svc.courses.FindByID(context.Background(), "course-1")
	require.NoError(t, err)
	svc := NewGradeService(f.enrollments, newFakeCourseRepo(*course), f.svc.grades, cache, f.metrics, time.Minute, zap.New(core))

	breakdown, cached, err := svc.Breakdown(context.Background(), "user-1", "enr-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 84.00, breakdown.Result.Percentage)

	require.NoError(t, svc.Schedule(context.Background(), "enr-1"))
	assert.Equal(t, 84.00, f.enrollments.current["enr-1"])

	assert.Equal(t, 1, logs.FilterMessage("failed to cache grade breakdown").Len())
	invalidations := logs.FilterMessage("failed to invalidate grade breakdown")
	require.Equal(t, 2, invalidations.Len())
	assert.Equal(t, "enr-1", invalidations.All()[0].ContextMap()["enrollment_id"])
}
