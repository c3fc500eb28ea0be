package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadhub/academic-records-api/internal/models"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "code", "assessments", "created_at", "updated_at"}).
		AddRow("c1", "Data Structures", "CS201", []byte(`[{"assessment":"midterm","mark":30}]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, assessments, created_at, updated_at FROM courses ORDER BY created_at ASC")).
		WillReturnRows(rows)

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS201", courses[0].Code)
	require.Len(t, courses[0].Assessments, 1)
	assert.Equal(t, "midterm", courses[0].Assessments[0].Assessment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, assessments, created_at, updated_at FROM courses WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(sqlmock.AnyArg(), "Algorithms", "CS301", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{
		Name:        "Algorithms",
		Code:        "CS301",
		Assessments: models.AssessmentList{{Assessment: "final", Mark: 60}},
	}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses SET name").
		WithArgs("Algorithms II", "CS302", sqlmock.AnyArg(), sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{ID: "c1", Name: "Algorithms II", Code: "CS302"}
	require.NoError(t, repo.Update(context.Background(), course))

	mock.ExpectExec("DELETE FROM courses WHERE id").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
