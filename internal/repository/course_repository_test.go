package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradetrack-api/internal/models"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
)

var courseRowColumns = []string{"id", "owner_id", "name", "code", "instructor", "credits", "categories", "late_policy", "created_at", "updated_at"}

func TestCourseRepositoryListDecodesSchema(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(courseRowColumns).
		AddRow("course-1", "user-1", "Calculus", "MATH101", "Dr. Lee", 4.0,
			[]byte(`[{"name":"Exams","weight":60,"drop_lowest":0},{"name":"HW","weight":40,"drop_lowest":1}]`),
			[]byte(`{"type":"percentage","value":10,"max_deduction":0}`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, code")).
		WithArgs("user-1", "%calc%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE owner_id = $1")).
		WithArgs("user-1", "%calc%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{OwnerID: "user-1", Search: "Calc"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
	require.Len(t, courses[0].Categories, 2)
	assert.Equal(t, 1, courses[0].Categories[1].DropLowest)
	assert.Equal(t, gradecalc.LatePolicyPercentage, courses[0].LatePolicy.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	course := &models.Course{OwnerID: "user-1", Name: "Physics", Credits: 3}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), course))
	require.NotEmpty(t, course.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), course)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "course-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePage(t *testing.T) {
	page, size := normalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = normalizePage(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)
}
