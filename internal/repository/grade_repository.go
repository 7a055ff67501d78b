package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

const gradeColumns = `id, enrollment_id, assignment_id, category_name, assignment_name, score, max_score, weight, status, graded_at, updated_at`

// GradeRepository stores the assignment grades of enrollments.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByEnrollment returns every recorded grade of an enrollment.
func (r *GradeRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AssignmentGrade, error) {
	query := `SELECT ` + gradeColumns + ` FROM assignment_grades WHERE enrollment_id = $1 ORDER BY category_name, assignment_name`
	var grades []models.AssignmentGrade
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Find returns the grade an enrollment holds for one assignment.
func (r *GradeRepository) Find(ctx context.Context, enrollmentID, assignmentID string) (*models.AssignmentGrade, error) {
	query := `SELECT ` + gradeColumns + ` FROM assignment_grades WHERE enrollment_id = $1 AND assignment_id = $2`
	var grade models.AssignmentGrade
	if err := r.db.GetContext(ctx, &grade, query, enrollmentID, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &grade, nil
}

// Upsert inserts the grade or replaces the one recorded for the same
// assignment.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.AssignmentGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	grade.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO assignment_grades (id, enrollment_id, assignment_id, category_name, assignment_name, score, max_score, weight, status, graded_at, updated_at) VALUES (:id, :enrollment_id, :assignment_id, :category_name, :assignment_name, :score, :max_score, :weight, :status, :graded_at, :updated_at) ON CONFLICT (enrollment_id, assignment_id) DO UPDATE SET category_name = EXCLUDED.category_name, assignment_name = EXCLUDED.assignment_name, score = EXCLUDED.score, max_score = EXCLUDED.max_score, weight = EXCLUDED.weight, status = EXCLUDED.status, graded_at = EXCLUDED.graded_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// Delete removes the grade of one assignment.
func (r *GradeRepository) Delete(ctx context.Context, enrollmentID, assignmentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignment_grades WHERE enrollment_id = $1 AND assignment_id = $2`, enrollmentID, assignmentID)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return requireAffected(res)
}
