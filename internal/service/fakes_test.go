package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
)

func float(v float64) *float64 {
	return &v
}

type memoryCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

type fakeCourseRepo struct {
	courses map[string]*models.Course
	updated int
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[string]*models.Course)}
	for i := range courses {
		c := courses[i]
		repo.courses[c.ID] = &c
	}
	return repo
}

func (f *fakeCourseRepo) List(_ context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var result []models.Course
	for _, c := range f.courses {
		if filter.OwnerID == "" || c.OwnerID == filter.OwnerID {
			result = append(result, *c)
		}
	}
	return result, len(result), nil
}

func (f *fakeCourseRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Course, error) {
	var result []models.Course
	for _, c := range f.courses {
		if c.OwnerID == ownerID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "course-new"
	}
	copied := *course
	f.courses[course.ID] = &copied
	return nil
}

func (f *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	if _, ok := f.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *course
	f.courses[course.ID] = &copied
	f.updated++
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.courses, id)
	return nil
}

type fakeEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	current     map[string]float64
}

func newFakeEnrollmentRepo(enrollments ...models.Enrollment) *fakeEnrollmentRepo {
	repo := &fakeEnrollmentRepo{enrollments: make(map[string]*models.Enrollment), current: make(map[string]float64)}
	for i := range enrollments {
		e := enrollments[i]
		repo.enrollments[e.ID] = &e
	}
	return repo
}

func (f *fakeEnrollmentRepo) List(_ context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error) {
	var result []models.Enrollment
	for _, e := range f.enrollments {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Archived != nil && e.Archived != *filter.Archived {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (f *fakeEnrollmentRepo) ListFinalized(_ context.Context, userID string) ([]models.Enrollment, error) {
	var result []models.Enrollment
	for _, e := range f.enrollments {
		if e.UserID == userID && e.FinalGrade != nil {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (f *fakeEnrollmentRepo) ListIDsByCourse(_ context.Context, courseID string) ([]string, error) {
	var ids []string
	for _, e := range f.enrollments {
		if e.CourseID == courseID {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (f *fakeEnrollmentRepo) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEnrollmentRepo) ExistsForCourse(_ context.Context, userID, courseID string) (bool, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "enr-new"
	}
	copied := *enrollment
	f.enrollments[enrollment.ID] = &copied
	return nil
}

func (f *fakeEnrollmentRepo) Update(_ context.Context, enrollment *models.Enrollment) error {
	if _, ok := f.enrollments[enrollment.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *enrollment
	f.enrollments[enrollment.ID] = &copied
	return nil
}

func (f *fakeEnrollmentRepo) UpdateCurrentGrade(_ context.Context, id string, grade float64, _ time.Time) error {
	e, ok := f.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	f.current[id] = grade
	e.CurrentGrade = &grade
	return nil
}

func (f *fakeEnrollmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.enrollments, id)
	return nil
}

type fakeGradeRepo struct {
	grades map[string][]models.AssignmentGrade
}

func newFakeGradeRepo(grades ...models.AssignmentGrade) *fakeGradeRepo {
	repo := &fakeGradeRepo{grades: make(map[string][]models.AssignmentGrade)}
	for _, g := range grades {
		repo.grades[g.EnrollmentID] = append(repo.grades[g.EnrollmentID], g)
	}
	return repo
}

func (f *fakeGradeRepo) ListByEnrollment(_ context.Context, enrollmentID string) ([]models.AssignmentGrade, error) {
	return append([]models.AssignmentGrade(nil), f.grades[enrollmentID]...), nil
}

func (f *fakeGradeRepo) Find(_ context.Context, enrollmentID, assignmentID string) (*models.AssignmentGrade, error) {
	for _, g := range f.grades[enrollmentID] {
		if g.AssignmentID == assignmentID {
			copied := g
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGradeRepo) Upsert(_ context.Context, grade *models.AssignmentGrade) error {
	list := f.grades[grade.EnrollmentID]
	for i := range list {
		if list[i].AssignmentID == grade.AssignmentID {
			list[i] = *grade
			return nil
		}
	}
	if grade.ID == "" {
		grade.ID = "grade-" + grade.AssignmentID
	}
	f.grades[grade.EnrollmentID] = append(list, *grade)
	return nil
}

func (f *fakeGradeRepo) Delete(_ context.Context, enrollmentID, assignmentID string) error {
	list := f.grades[enrollmentID]
	for i := range list {
		if list[i].AssignmentID == assignmentID {
			f.grades[enrollmentID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type recordingScheduler struct {
	enrollments []string
	courses     []string
}

func (r *recordingScheduler) Schedule(_ context.Context, enrollmentID string) error {
	r.enrollments = append(r.enrollments, enrollmentID)
	return nil
}

func (r *recordingScheduler) ScheduleCourse(_ context.Context, courseID string) error {
	r.courses = append(r.courses, courseID)
	return nil
}

type recordingQueue struct {
	jobs    []jobs.Job
	pending map[string]bool
}

func (q *recordingQueue) Enqueue(job jobs.Job) (bool, error) {
	if q.pending == nil {
		q.pending = make(map[string]bool)
	}
	if q.pending[job.Key] {
		return false, nil
	}
	q.pending[job.Key] = true
	q.jobs = append(q.jobs, job)
	return true, nil
}

type fakePastGradeRepo struct {
	grades  map[string]*models.PastGrade
	batches int
	seq     int
}

func newFakePastGradeRepo(grades ...models.PastGrade) *fakePastGradeRepo {
	repo := &fakePastGradeRepo{grades: make(map[string]*models.PastGrade)}
	for i := range grades {
		g := grades[i]
		repo.grades[g.ID] = &g
	}
	return repo
}

func (f *fakePastGradeRepo) ListByUser(_ context.Context, userID string) ([]models.PastGrade, error) {
	var result []models.PastGrade
	for _, g := range f.grades {
		if g.UserID == userID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (f *fakePastGradeRepo) FindByID(_ context.Context, id string) (*models.PastGrade, error) {
	g, ok := f.grades[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *g
	return &copied, nil
}

func (f *fakePastGradeRepo) Create(_ context.Context, grade *models.PastGrade) error {
	f.seq++
	if grade.ID == "" {
		grade.ID = "pg-new-" + string(rune('0'+f.seq))
	}
	copied := *grade
	f.grades[grade.ID] = &copied
	return nil
}

func (f *fakePastGradeRepo) CreateBatch(ctx context.Context, grades []models.PastGrade) error {
	f.batches++
	for i := range grades {
		if err := f.Create(ctx, &grades[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePastGradeRepo) Update(_ context.Context, grade *models.PastGrade) error {
	if _, ok := f.grades[grade.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *grade
	f.grades[grade.ID] = &copied
	return nil
}

func (f *fakePastGradeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.grades[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.grades, id)
	return nil
}
