package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

func TestGradeRepositoryListByEnrollment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "assignment_id", "category_name", "assignment_name", "score", "max_score", "weight", "status", "graded_at", "updated_at"}).
		AddRow("g-1", "enr-1", "a-1", "HW", "HW1", 9.0, 10.0, nil, "graded", now, now).
		AddRow("g-2", "enr-1", "a-2", "HW", "HW2", nil, nil, nil, "not_started", nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignment_grades WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnRows(rows)

	grades, err := repo.ListByEnrollment(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, gradecalc.StatusGraded, grades[0].Status)
	assert.Nil(t, grades[1].Score)

	entries := models.Entries(grades)
	assert.True(t, entries[0].Graded())
	assert.False(t, entries[1].Graded())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (enrollment_id, assignment_id) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.AssignmentGrade{EnrollmentID: "enr-1", AssignmentID: "a-1", CategoryName: "HW", AssignmentName: "HW1", Score: float(8), Status: gradecalc.StatusGraded}
	require.NoError(t, repo.Upsert(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
