package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/export"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

type pastGradeRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.PastGrade, error)
	FindByID(ctx context.Context, id string) (*models.PastGrade, error)
	Create(ctx context.Context, grade *models.PastGrade) error
	CreateBatch(ctx context.Context, grades []models.PastGrade) error
	Update(ctx context.Context, grade *models.PastGrade) error
	Delete(ctx context.Context, id string) error
}

type finalizedEnrollmentReader interface {
	ListFinalized(ctx context.Context, userID string) ([]models.Enrollment, error)
}

// PastGradeService manages completed course records and computes GPA.
type PastGradeService struct {
	repo        pastGradeRepository
	enrollments finalizedEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPastGradeService constructs a PastGradeService.
func NewPastGradeService(repo pastGradeRepository, enrollments finalizedEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *PastGradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PastGradeService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns the user's past grades.
func (s *PastGradeService) List(ctx context.Context, userID string) ([]models.PastGrade, error) {
	grades, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err, "failed to list past grades")
	}
	return grades, nil
}

// Create records a past grade.
func (s *PastGradeService) Create(ctx context.Context, userID string, req dto.PastGradeRequest) (*models.PastGrade, error) {
	grade := &models.PastGrade{UserID: userID}
	if err := s.apply(grade, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, internalError(err, "failed to create past grade")
	}
	return grade, nil
}

// Update replaces a past grade of the user.
func (s *PastGradeService) Update(ctx context.Context, userID, id string, req dto.PastGradeRequest) (*models.PastGrade, error) {
	grade, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(grade, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, lookupError(err, "past grade")
	}
	return grade, nil
}

// Delete removes a past grade of the user.
func (s *PastGradeService) Delete(ctx context.Context, userID, id string) error {
	grade, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, grade.ID); err != nil {
		return lookupError(err, "past grade")
	}
	return nil
}

// GPA returns the cumulative GPA over past grades and finalized enrollments
// with a per-semester breakdown of past grades.
func (s *PastGradeService) GPA(ctx context.Context, userID string) (*dto.GPASummary, error) {
	grades, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err, "failed to list past grades")
	}
	var finalized []gradecalc.FinalizedEnrollment
	if s.enrollments != nil {
		enrollments, err := s.enrollments.ListFinalized(ctx, userID)
		if err != nil {
			return nil, internalError(err, "failed to list finalized enrollments")
		}
		for _, enrollment := range enrollments {
			finalized = append(finalized, enrollment.Finalized())
		}
	}

	records := models.Records(grades)
	result := gradecalc.CalculateGPA(records, finalized)
	return &dto.GPASummary{
		GPA:          result.GPA,
		TotalPoints:  gradecalc.Round2(result.TotalPoints),
		TotalCredits: result.TotalCredits,
		TotalCourses: result.Courses,
		BySemester:   gradecalc.GPABySemester(records),
	}, nil
}

// Import reads past grades from a CSV or XLSX table. Rows that fail
// validation are reported and skipped; the rest are stored together.
func (s *PastGradeService) Import(ctx context.Context, userID string, format export.Format, data []byte) (*dto.ImportResult, error) {
	table, err := export.ReadTable(format, data)
	if err != nil {
		return nil, validationError(err, "unreadable import file")
	}
	if !hasColumn(table.Headers, "course_name") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import file needs a course_name column")
	}

	result := &dto.ImportResult{}
	var batch []models.PastGrade
	for i, row := range table.Rows {
		req, err := importRow(row)
		if err == nil {
			grade := models.PastGrade{UserID: userID}
			if err = s.apply(&grade, req); err == nil {
				batch = append(batch, grade)
				continue
			}
		}
		result.Skipped++
		result.Errors = append(result.Errors, dto.ImportRowError{Row: i + 2, Message: err.Error()})
	}

	if len(batch) > 0 {
		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			return nil, internalError(err, "failed to import past grades")
		}
	}
	result.Imported = len(batch)
	s.logger.Info("past grades imported", zap.String("user_id", userID), zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *PastGradeService) owned(ctx context.Context, userID, id string) (*models.PastGrade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "past grade")
	}
	if grade.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "past grade belongs to another user")
	}
	return grade, nil
}

// apply validates req onto grade. Either a known letter or a numeric grade is
// required.
func (s *PastGradeService) apply(grade *models.PastGrade, req dto.PastGradeRequest) error {
	req.CourseName = strings.TrimSpace(req.CourseName)
	req.LetterGrade = strings.ToUpper(strings.TrimSpace(req.LetterGrade))
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid past grade payload")
	}
	if req.LetterGrade == "" && req.NumericGrade == nil {
		return appErrors.Clone(appErrors.ErrValidation, "letter_grade or numeric_grade is required")
	}
	if req.LetterGrade != "" && !gradecalc.KnownLetter(req.LetterGrade) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown letter grade %q", req.LetterGrade))
	}

	grade.CourseName = req.CourseName
	grade.CourseCode = strings.TrimSpace(req.CourseCode)
	grade.Semester = strings.TrimSpace(req.Semester)
	grade.LetterGrade = req.LetterGrade
	grade.NumericGrade = req.NumericGrade
	grade.Credits = req.Credits
	grade.GPAScale = req.GPAScale
	if grade.Credits == 0 {
		grade.Credits = gradecalc.DefaultCredits
	}
	if grade.GPAScale == 0 {
		grade.GPAScale = gradecalc.DefaultGPAScale
	}
	return nil
}

func importRow(row map[string]string) (dto.PastGradeRequest, error) {
	req := dto.PastGradeRequest{
		CourseName:  row["course_name"],
		CourseCode:  row["course_code"],
		Semester:    row["semester"],
		LetterGrade: row["letter_grade"],
	}
	var err error
	if raw := strings.TrimSpace(row["numeric_grade"]); raw != "" {
		value, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, "numeric_grade is not a number")
		}
		req.NumericGrade = &value
	}
	if req.Credits, err = parseOptionalFloat(row["credits"], "credits"); err != nil {
		return req, err
	}
	if req.GPAScale, err = parseOptionalFloat(row["gpa_scale"], "gpa_scale"); err != nil {
		return req, err
	}
	return req, nil
}

func parseOptionalFloat(raw, column string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, column+" is not a number")
	}
	return value, nil
}

func hasColumn(headers []string, name string) bool {
	for _, header := range headers {
		if header == name {
			return true
		}
	}
	return false
}
