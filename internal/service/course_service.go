package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRecalculator interface {
	ScheduleCourse(ctx context.Context, courseID string) error
}

// CourseService manages courses and their grading schema.
type CourseService struct {
	repo      courseRepository
	recalc    courseRecalculator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService. recalc may be nil.
func NewCourseService(repo courseRepository, recalc courseRecalculator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, recalc: recalc, validator: validate, logger: logger}
}

// List returns the actor's courses, or every course for admins.
func (s *CourseService) List(ctx context.Context, actor *models.JWTClaims, query dto.CourseQuery) ([]models.Course, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	filter := models.CourseFilter{Search: strings.TrimSpace(query.Search), Page: query.Page, PageSize: query.PageSize}
	if !actor.IsAdmin() {
		filter.OwnerID = actor.UserID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list courses")
	}
	return courses, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a course with the advisory warnings of its schema.
func (s *CourseService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Course, []gradecalc.Warning, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookupError(err, "course")
	}
	if !canRead(actor, course.OwnerID) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another user")
	}
	return course, gradecalc.ValidateWeights(course.Categories), nil
}

// Create stores a new course owned by the actor.
func (s *CourseService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CourseRequest) (*models.Course, []gradecalc.Warning, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	course := &models.Course{OwnerID: actor.UserID}
	if err := s.apply(course, req); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, nil, internalError(err, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("owner_id", course.OwnerID))
	return course, gradecalc.ValidateWeights(course.Categories), nil
}

// Update replaces the course fields and schedules a recalculation of every
// enrollment in the course.
func (s *CourseService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.CourseRequest) (*models.Course, []gradecalc.Warning, error) {
	course, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.apply(course, req); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, nil, lookupError(err, "course")
	}
	if s.recalc != nil {
		if err := s.recalc.ScheduleCourse(ctx, course.ID); err != nil {
			s.logger.Warn("failed to schedule course recalculation", zap.String("course_id", course.ID), zap.Error(err))
		}
	}
	return course, gradecalc.ValidateWeights(course.Categories), nil
}

// Delete removes a course owned by the actor.
func (s *CourseService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	course, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, course.ID); err != nil {
		return lookupError(err, "course")
	}
	s.logger.Info("course deleted", zap.String("course_id", course.ID))
	return nil
}

func (s *CourseService) owned(ctx context.Context, actor *models.JWTClaims, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course")
	}
	if actor == nil || actor.UserID != course.OwnerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another user")
	}
	return course, nil
}

func (s *CourseService) apply(course *models.Course, req dto.CourseRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid course payload")
	}

	categories := make([]gradecalc.Category, 0, len(req.Categories))
	for _, category := range req.Categories {
		category.Name = strings.TrimSpace(category.Name)
		if category.Name == "" {
			return appErrors.Clone(appErrors.ErrValidation, "category name is required")
		}
		if category.DropLowest < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "drop_lowest must not be negative")
		}
		assignments := make([]gradecalc.Assignment, 0, len(category.Assignments))
		for _, assignment := range category.Assignments {
			assignment.Name = strings.TrimSpace(assignment.Name)
			if assignment.Name == "" {
				return appErrors.Clone(appErrors.ErrValidation, "assignment name is required")
			}
			if assignment.ID == "" {
				assignment.ID = uuid.NewString()
			}
			assignments = append(assignments, assignment)
		}
		category.Assignments = assignments
		categories = append(categories, category)
	}

	policy := gradecalc.LatePolicy{Type: gradecalc.LatePolicyNone}
	if req.LatePolicy != nil {
		policy = *req.LatePolicy
		switch policy.Type {
		case "":
			policy.Type = gradecalc.LatePolicyNone
		case gradecalc.LatePolicyNone, gradecalc.LatePolicyPercentage, gradecalc.LatePolicyFixed:
		default:
			return appErrors.Clone(appErrors.ErrValidation, "unknown late policy type")
		}
		if policy.Amount < 0 || policy.MaxDeduction < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "late policy values must not be negative")
		}
	}

	course.Name = req.Name
	course.Code = strings.TrimSpace(req.Code)
	course.Instructor = strings.TrimSpace(req.Instructor)
	course.Credits = req.Credits
	course.Categories = categories
	course.LatePolicy = models.LatePolicy(policy)
	return nil
}
