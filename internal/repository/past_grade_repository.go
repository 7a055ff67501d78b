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

const pastGradeColumns = `id, user_id, course_name, course_code, semester, letter_grade, numeric_grade, credits, gpa_scale, created_at, updated_at`

const insertPastGrade = `INSERT INTO past_grades (id, user_id, course_name, course_code, semester, letter_grade, numeric_grade, credits, gpa_scale, created_at, updated_at) VALUES (:id, :user_id, :course_name, :course_code, :semester, :letter_grade, :numeric_grade, :credits, :gpa_scale, :created_at, :updated_at)`

// PastGradeRepository stores completed course records.
type PastGradeRepository struct {
	db *sqlx.DB
}

// NewPastGradeRepository creates a new PastGradeRepository.
func NewPastGradeRepository(db *sqlx.DB) *PastGradeRepository {
	return &PastGradeRepository{db: db}
}

// ListByUser returns the user's past grades, newest semester first.
func (r *PastGradeRepository) ListByUser(ctx context.Context, userID string) ([]models.PastGrade, error) {
	query := `SELECT ` + pastGradeColumns + ` FROM past_grades WHERE user_id = $1 ORDER BY semester DESC, course_name ASC`
	var grades []models.PastGrade
	if err := r.db.SelectContext(ctx, &grades, query, userID); err != nil {
		return nil, fmt.Errorf("list past grades: %w", err)
	}
	return grades, nil
}

// FindByID returns a past grade by identifier.
func (r *PastGradeRepository) FindByID(ctx context.Context, id string) (*models.PastGrade, error) {
	query := `SELECT ` + pastGradeColumns + ` FROM past_grades WHERE id = $1`
	var grade models.PastGrade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find past grade: %w", err)
	}
	return &grade, nil
}

// Create inserts a past grade.
func (r *PastGradeRepository) Create(ctx context.Context, grade *models.PastGrade) error {
	stampPastGrade(grade, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertPastGrade, grade); err != nil {
		return fmt.Errorf("create past grade: %w", err)
	}
	return nil
}

// CreateBatch inserts every grade in one transaction.
func (r *PastGradeRepository) CreateBatch(ctx context.Context, grades []models.PastGrade) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	now := time.Now().UTC()
	for i := range grades {
		stampPastGrade(&grades[i], now)
		if _, err := tx.NamedExecContext(ctx, insertPastGrade, &grades[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import past grade %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a past grade.
func (r *PastGradeRepository) Update(ctx context.Context, grade *models.PastGrade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE past_grades SET course_name = :course_name, course_code = :course_code, semester = :semester, letter_grade = :letter_grade, numeric_grade = :numeric_grade, credits = :credits, gpa_scale = :gpa_scale, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update past grade: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a past grade.
func (r *PastGradeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM past_grades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete past grade: %w", err)
	}
	return requireAffected(res)
}

func stampPastGrade(grade *models.PastGrade, now time.Time) {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	grade.CreatedAt = now
	grade.UpdatedAt = now
}
