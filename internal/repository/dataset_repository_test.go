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

func newDatasetRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDatasetRepositoryFindByCourseSem(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "sem", "academic_years", "columns", "data", "created_at", "updated_at"}).
		AddRow("d1", "c1", "fall", []byte(`["2023"]`), []byte(`["student","grade"]`), []byte(`[["alice",90]]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, sem, academic_years, columns, data, created_at, updated_at FROM datasets WHERE course_id = $1 AND sem = $2")).
		WithArgs("c1", "fall").
		WillReturnRows(rows)

	dataset, err := repo.FindByCourseSem(context.Background(), "c1", "fall")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"2023"}, dataset.AcademicYears)
	assert.Equal(t, models.StringList{"student", "grade"}, dataset.Columns)
	require.Len(t, dataset.Data, 1)
	assert.Equal(t, "alice", dataset.Data[0][0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	mock.ExpectExec("INSERT INTO datasets").
		WithArgs(sqlmock.AnyArg(), "c1", "fall", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	dataset := &models.Dataset{
		CourseID:      "c1",
		Sem:           "fall",
		AcademicYears: models.StringList{"2023"},
		Columns:       models.StringList{"student", "grade"},
		Data:          models.DataRows{{"alice", float64(90)}},
	}
	require.NoError(t, repo.Create(context.Background(), dataset))
	assert.NotEmpty(t, dataset.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepositoryAppendYearApplied(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	mock.ExpectExec("UPDATE datasets").
		WithArgs("d1", `["2024"]`, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "2024").
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.AppendYear(context.Background(), "d1", "2024", "2024",
		models.StringList{"student", "grade"}, models.DataRows{{"bob", float64(80)}})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepositoryAppendYearRejected(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	// The conditional guard matches no row when the year already exists.
	mock.ExpectExec("UPDATE datasets").
		WithArgs("d1", `[" 2023 "]`, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "2023").
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.AppendYear(context.Background(), "d1", " 2023 ", "2023",
		models.StringList{"student"}, models.DataRows{})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepositoryFilterNoConstraints(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "course_name", "sem", "academic_years", "columns", "data", "created_at", "updated_at"}).
		AddRow("d1", "c1", "Data Structures", "fall", []byte(`["2023"]`), []byte(`["student"]`), []byte(`[["alice"]]`), time.Now(), time.Now()).
		AddRow("d2", "c2", nil, "spring", []byte(`["2024"]`), []byte(`["student"]`), []byte(`[]`), time.Now(), time.Now())
	mock.ExpectQuery("SELECT d.id, d.course_id, c.name AS course_name").
		WillReturnRows(rows)

	datasets, err := repo.Filter(context.Background(), models.DatasetFilter{})
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, models.CourseRef{ID: "c1", Name: "Data Structures"}, datasets[0].Course)
	assert.Equal(t, models.CourseRef{ID: "c2"}, datasets[1].Course)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepositoryFilterWithConstraints(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "course_name", "sem", "academic_years", "columns", "data", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("d.course_id = $1 AND d.sem = $2 AND d.academic_years @> jsonb_build_array($3::text)")).
		WithArgs("c1", "fall", "2023").
		WillReturnRows(rows)

	datasets, err := repo.Filter(context.Background(), models.DatasetFilter{CourseID: "c1", Sem: "fall", AcademicYear: "2023"})
	require.NoError(t, err)
	assert.Empty(t, datasets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasetRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newDatasetRepoMock(t)
	defer cleanup()
	repo := NewDatasetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, sem, academic_years, columns, data, created_at, updated_at FROM datasets WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
