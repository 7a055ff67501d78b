package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

func TestPastGradeRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewPastGradeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "course_name", "course_code", "semester", "letter_grade", "numeric_grade", "credits", "gpa_scale", "created_at", "updated_at"}).
		AddRow("pg-1", "user-1", "Biology", "BIO1", "2023-Fall", "A-", nil, 3.0, 4.0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM past_grades WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(rows)

	grades, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 3.7, grades[0].Record().Points())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPastGradeRepositoryCreateBatchCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewPastGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO past_grades")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO past_grades")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	grades := []models.PastGrade{
		{UserID: "user-1", CourseName: "Biology", LetterGrade: "A", Credits: 3},
		{UserID: "user-1", CourseName: "Art", NumericGrade: float(85), Credits: 2},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), grades))
	assert.NotEmpty(t, grades[0].ID)
	assert.NotEmpty(t, grades[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPastGradeRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewPastGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO past_grades")).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []models.PastGrade{{UserID: "user-1", CourseName: "Biology"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import past grade 1")
	require.NoError(t, mock.ExpectationsWereMet())
}
