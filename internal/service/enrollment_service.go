package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ExistsForCourse(ctx context.Context, userID, courseID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

type gradeRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AssignmentGrade, error)
	Find(ctx context.Context, enrollmentID, assignmentID string) (*models.AssignmentGrade, error)
	Upsert(ctx context.Context, grade *models.AssignmentGrade) error
	Delete(ctx context.Context, enrollmentID, assignmentID string) error
}

type gradeScheduler interface {
	Schedule(ctx context.Context, enrollmentID string) error
}

// EnrollmentService manages enrollments and the grades recorded against them.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   gradeCourseReader
	grades    gradeRepository
	scheduler gradeScheduler
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses gradeCourseReader, grades gradeRepository, scheduler gradeScheduler, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		courses:   courses,
		grades:    grades,
		scheduler: scheduler,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the user's enrollments.
func (s *EnrollmentService) List(ctx context.Context, userID string, query dto.EnrollmentQuery) ([]models.Enrollment, error) {
	items, err := s.repo.List(ctx, models.EnrollmentFilter{UserID: userID, Archived: query.Archived, Semester: strings.TrimSpace(query.Semester)})
	if err != nil {
		return nil, internalError(err, "failed to list enrollments")
	}
	return items, nil
}

// Get returns one enrollment of the user.
func (s *EnrollmentService) Get(ctx context.Context, userID, id string) (*models.Enrollment, error) {
	return s.owned(ctx, userID, id)
}

// Create enrolls the user in a course they can read. Credits default to the
// course credits and the GPA scale to 4.0.
func (s *EnrollmentService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	if !canRead(actor, course.OwnerID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another user")
	}

	exists, err := s.repo.ExistsForCourse(ctx, actor.UserID, course.ID)
	if err != nil {
		return nil, internalError(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in course")
	}

	enrollment := &models.Enrollment{
		UserID:     actor.UserID,
		CourseID:   course.ID,
		CourseName: course.Name,
		Semester:   strings.TrimSpace(req.Semester),
		Credits:    course.Credits,
		GPAScale:   req.GPAScale,
	}
	if req.Credits != nil {
		enrollment.Credits = *req.Credits
	}
	if enrollment.GPAScale == 0 {
		enrollment.GPAScale = gradecalc.DefaultGPAScale
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, internalError(err, "failed to create enrollment")
	}
	return enrollment, nil
}

// Update patches the enrollment. A final grade is what makes an enrollment
// count towards GPA.
func (s *EnrollmentService) Update(ctx context.Context, userID, id string, req dto.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	enrollment, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Semester != nil {
		enrollment.Semester = strings.TrimSpace(*req.Semester)
	}
	if req.Credits != nil {
		enrollment.Credits = *req.Credits
	}
	if req.GPAScale != nil {
		enrollment.GPAScale = *req.GPAScale
	}
	if req.Archived != nil {
		enrollment.Archived = *req.Archived
	}
	if req.FinalGrade != nil {
		enrollment.FinalGrade = req.FinalGrade
	}

	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, lookupError(err, "enrollment")
	}
	return enrollment, nil
}

// Delete removes an enrollment of the user.
func (s *EnrollmentService) Delete(ctx context.Context, userID, id string) error {
	enrollment, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, enrollment.ID); err != nil {
		return lookupError(err, "enrollment")
	}
	return nil
}

// ListGrades returns the recorded grades of an enrollment.
func (s *EnrollmentService) ListGrades(ctx context.Context, userID, id string) ([]models.AssignmentGrade, error) {
	enrollment, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, internalError(err, "failed to list grades")
	}
	return grades, nil
}

// UpsertGrade records the score of an assignment declared by the course and
// schedules a recalculation. Without an explicit status a score means
// graded and no score means not started.
func (s *EnrollmentService) UpsertGrade(ctx context.Context, userID, enrollmentID string, req dto.UpsertGradeRequest) (*models.AssignmentGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	if req.Status == "" {
		req.Status = gradecalc.StatusNotStarted
		if req.Score != nil {
			req.Status = gradecalc.StatusGraded
		}
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade status")
	}

	enrollment, category, assignment, err := s.assignment(ctx, userID, enrollmentID, req.AssignmentID)
	if err != nil {
		return nil, err
	}

	grade := &models.AssignmentGrade{
		EnrollmentID:   enrollment.ID,
		AssignmentID:   assignment.ID,
		CategoryName:   category.Name,
		AssignmentName: assignment.Name,
		Score:          req.Score,
		MaxScore:       req.MaxScore,
		Weight:         req.Weight,
		Status:         req.Status,
	}
	if grade.MaxScore == nil && assignment.MaxScore > 0 {
		maxScore := assignment.MaxScore
		grade.MaxScore = &maxScore
	}
	if grade.Score != nil {
		at := s.now()
		grade.GradedAt = &at
	}
	return s.save(ctx, grade)
}

// SetStatus changes the status of an assignment. Participation assignments
// are scored from the status alone; other assignments keep their score.
func (s *EnrollmentService) SetStatus(ctx context.Context, userID, enrollmentID, assignmentID string, req dto.GradeStatusRequest) (*models.AssignmentGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade status")
	}

	enrollment, category, assignment, err := s.assignment(ctx, userID, enrollmentID, assignmentID)
	if err != nil {
		return nil, err
	}

	grade, err := s.grades.Find(ctx, enrollment.ID, assignment.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "failed to load grade")
		}
		grade = &models.AssignmentGrade{EnrollmentID: enrollment.ID, AssignmentID: assignment.ID}
		if assignment.MaxScore > 0 {
			maxScore := assignment.MaxScore
			grade.MaxScore = &maxScore
		}
	}
	grade.CategoryName = category.Name
	grade.AssignmentName = assignment.Name
	grade.Status = req.Status

	if assignment.IsParticipation {
		maxScore := assignment.MaxScore
		if grade.MaxScore != nil {
			maxScore = *grade.MaxScore
		}
		score := gradecalc.QuickStatusScore(req.Status, maxScore)
		at := s.now()
		grade.Score = &score
		grade.GradedAt = &at
	}
	return s.save(ctx, grade)
}

// DeleteGrade clears the recorded score of an assignment.
func (s *EnrollmentService) DeleteGrade(ctx context.Context, userID, enrollmentID, assignmentID string) error {
	enrollment, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return err
	}
	if err := s.grades.Delete(ctx, enrollment.ID, assignmentID); err != nil {
		return lookupError(err, "grade")
	}
	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, enrollment.ID); err != nil {
			s.logger.Warn("failed to schedule recalculation", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *EnrollmentService) save(ctx context.Context, grade *models.AssignmentGrade) (*models.AssignmentGrade, error) {
	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, internalError(err, "failed to save grade")
	}
	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, grade.EnrollmentID); err != nil {
			s.logger.Warn("failed to schedule recalculation", zap.String("enrollment_id", grade.EnrollmentID), zap.Error(err))
		}
	}
	return grade, nil
}

func (s *EnrollmentService) assignment(ctx context.Context, userID, enrollmentID, assignmentID string) (*models.Enrollment, gradecalc.Category, gradecalc.Assignment, error) {
	enrollment, err := s.owned(ctx, userID, enrollmentID)
	if err != nil {
		return nil, gradecalc.Category{}, gradecalc.Assignment{}, err
	}
	course, err := s.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, gradecalc.Category{}, gradecalc.Assignment{}, lookupError(err, "course")
	}
	category, assignment, ok := course.FindAssignment(assignmentID)
	if !ok {
		return nil, gradecalc.Category{}, gradecalc.Assignment{}, appErrors.Clone(appErrors.ErrNotFound, "assignment not found in course")
	}
	return enrollment, category, assignment, nil
}

func (s *EnrollmentService) owned(ctx context.Context, userID, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment")
	}
	if enrollment.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another user")
	}
	return enrollment, nil
}
