package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

const enrollmentSelect = `SELECT e.id, e.user_id, e.course_id, c.name AS course_name, e.semester, e.credits, e.gpa_scale, e.archived, e.final_grade, e.current_grade, e.enrolled_at, e.last_activity FROM enrollments e JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository stores user enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns the enrollments matching filter, most recently active first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error) {
	var conditions []string
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", len(args)))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		conditions = append(conditions, fmt.Sprintf("e.archived = $%d", len(args)))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)))
	}
	query := enrollmentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.last_activity DESC"

	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListFinalized returns the user's enrollments that carry a final grade.
func (r *EnrollmentRepository) ListFinalized(ctx context.Context, userID string) ([]models.Enrollment, error) {
	query := enrollmentSelect + ` WHERE e.user_id = $1 AND e.final_grade IS NOT NULL ORDER BY e.semester DESC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, userID); err != nil {
		return nil, fmt.Errorf("list finalized enrollments: %w", err)
	}
	return enrollments, nil
}

// ListIDsByCourse returns the identifiers of every enrollment in a course.
func (r *EnrollmentRepository) ListIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM enrollments WHERE course_id = $1`, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return ids, nil
}

// FindByID returns an enrollment by identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := enrollmentSelect + ` WHERE e.id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// ExistsForCourse reports whether the user is already enrolled in the course.
func (r *EnrollmentRepository) ExistsForCourse(ctx context.Context, userID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return exists, nil
}

// Create inserts an enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.EnrolledAt = now
	enrollment.LastActivity = now

	const query = `INSERT INTO enrollments (id, user_id, course_id, semester, credits, gpa_scale, archived, final_grade, current_grade, enrolled_at, last_activity) VALUES (:id, :user_id, :course_id, :semester, :credits, :gpa_scale, :archived, :final_grade, :current_grade, :enrolled_at, :last_activity)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update overwrites the user editable fields of an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.LastActivity = time.Now().UTC()
	const query = `UPDATE enrollments SET semester = :semester, credits = :credits, gpa_scale = :gpa_scale, archived = :archived, final_grade = :final_grade, last_activity = :last_activity WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return requireAffected(res)
}

// UpdateCurrentGrade stores a recalculated course percentage.
func (r *EnrollmentRepository) UpdateCurrentGrade(ctx context.Context, id string, grade float64, at time.Time) error {
	const query = `UPDATE enrollments SET current_grade = $2, last_activity = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, grade, at)
	if err != nil {
		return fmt.Errorf("update current grade: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an enrollment and its grades.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return requireAffected(res)
}
