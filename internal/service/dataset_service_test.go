package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadhub/academic-records-api/internal/models"
	appErrors "github.com/acadhub/academic-records-api/pkg/errors"
)

type mockDatasetRepo struct {
	byPair map[string]*models.Dataset
	byID   map[string]*models.Dataset

	created       *models.Dataset
	appendYear    string
	appendColumns models.StringList
	appendRows    models.DataRows
	appendApplied bool
	appendCalled  bool

	filterResult []models.DatasetWithCourse
	filterErr    error
	lastFilter   models.DatasetFilter
}

func pairKey(courseID, sem string) string {
	return courseID + "|" + sem
}

func (m *mockDatasetRepo) FindByCourseSem(ctx context.Context, courseID, sem string) (*models.Dataset, error) {
	if dataset, ok := m.byPair[pairKey(courseID, sem)]; ok {
		cp := *dataset
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDatasetRepo) FindByID(ctx context.Context, id string) (*models.Dataset, error) {
	if dataset, ok := m.byID[id]; ok {
		cp := *dataset
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDatasetRepo) Create(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == "" {
		dataset.ID = "generated"
	}
	cp := *dataset
	m.created = &cp
	return nil
}

func (m *mockDatasetRepo) AppendYear(ctx context.Context, id, year, normalizedYear string, columns models.StringList, rows models.DataRows) (bool, error) {
	m.appendCalled = true
	m.appendYear = year
	m.appendColumns = columns
	m.appendRows = rows
	return m.appendApplied, nil
}

func (m *mockDatasetRepo) Filter(ctx context.Context, filter models.DatasetFilter) ([]models.DatasetWithCourse, error) {
	m.lastFilter = filter
	return m.filterResult, m.filterErr
}

func newDatasetService(repo *mockDatasetRepo) *DatasetService {
	cacheSvc := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewDatasetService(repo, cacheSvc, nil, validator.New(), zap.NewNop())
}

func TestDatasetServiceMergeMissingFields(t *testing.T) {
	svc := newDatasetService(&mockDatasetRepo{})

	_, err := svc.Merge(context.Background(), AddDatasetRequest{Sem: "Fall"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErr.Status)
	assert.Equal(t, "Missing required fields: course, academicYear, columns, data", appErr.Message)
}

func TestDatasetServiceMergeCreatesNewDataset(t *testing.T) {
	repo := &mockDatasetRepo{}
	svc := newDatasetService(repo)

	message, err := svc.Merge(context.Background(), AddDatasetRequest{
		Course:       "c1",
		Sem:          " Fall ",
		AcademicYear: "2023",
		Columns:      []string{"student", "grade"},
		Data:         models.DataRows{{"alice", float64(90)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dataset added successfully!", message)
	require.NotNil(t, repo.created)
	assert.Equal(t, "fall", repo.created.Sem)
	assert.Equal(t, models.StringList{"2023"}, repo.created.AcademicYears)
	assert.Equal(t, models.StringList{"student", "grade"}, repo.created.Columns)
	require.Len(t, repo.created.Data, 1)
}

func TestDatasetServiceMergeKeepsOriginalYearSpelling(t *testing.T) {
	repo := &mockDatasetRepo{}
	svc := newDatasetService(repo)

	_, err := svc.Merge(context.Background(), AddDatasetRequest{
		Course:       "c1",
		Sem:          "fall",
		AcademicYear: " 2023/24 ",
		Columns:      []string{"student"},
		Data:         models.DataRows{},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{" 2023/24 "}, repo.created.AcademicYears)
}

func TestDatasetServiceMergeDuplicateYearConflict(t *testing.T) {
	repo := &mockDatasetRepo{byPair: map[string]*models.Dataset{
		pairKey("c1", "fall"): {ID: "d1", CourseID: "c1", Sem: "fall", AcademicYears: models.StringList{"2023"}},
	}}
	svc := newDatasetService(repo)

	// " 2023 " normalizes to the stored "2023".
	_, err := svc.Merge(context.Background(), AddDatasetRequest{
		Course:       "c1",
		Sem:          "fall",
		AcademicYear: " 2023 ",
		Columns:      []string{"student"},
		Data:         models.DataRows{},
		Concat:       true,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Equal(t, "Dataset with course, semester, and academic year ( 2023 ) already exists.", appErr.Message)
	assert.False(t, repo.appendCalled)
	assert.Nil(t, repo.created)
}

func TestDatasetServiceMergeWithoutConcatConflict(t *testing.T) {
	repo := &mockDatasetRepo{byPair: map[string]*models.Dataset{
		pairKey("c1", "fall"): {ID: "d1", CourseID: "c1", Sem: "fall", AcademicYears: models.StringList{"2023"}},
	}}
	svc := newDatasetService(repo)

	_, err := svc.Merge(context.Background(), AddDatasetRequest{
		Course:       "c1",
		Sem:          "fall",
		AcademicYear: "2024",
		Columns:      []string{"student"},
		Data:         models.DataRows{},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Equal(t, "Dataset with the same course and semester exists. Confirm replacement or concatenation.", appErr.Message)
	assert.False(t, repo.appendCalled)
}

func TestDatasetServiceMergeConcatUnionsColumns(t *testing.T) {
	repo := &mockDatasetRepo{
		byPair: map[string]*models.Dataset{
			pairKey("c1", "fall"): {
				ID:            "d1",
				CourseID:      "c1",
				Sem:           "fall",
				AcademicYears: models.StringList{"2023"},
				Columns:       models.StringList{"student", "grade"},
			},
		},
		appendApplied: true,
	}
	svc := newDatasetService(repo)

	message, err := svc.Merge(context.Background(), AddDatasetRequest{
		Course:       "c1",
		Sem:          "fall",
		AcademicYear: "2024",
		Columns:      []string{"grade", "attendance"},
		Data:         models.DataRows{{"bob", float64(80), float64(12)}},
		Concat:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dataset updated successfully with new academic year and data!", message)
	assert.True(t, repo.appendCalled)
	assert.Equal(t, "2024", repo.appendYear)
	assert.Equal(t, models.StringList{"student", "grade", "attendance"}, repo.appendColumns)
	require.Len(t, repo.appendRows, 1)
}

func TestDatasetServiceMergeConcatLosesRaceToDuplicate(t *testing.T) {
	repo := &mockDatasetRepo{
		byPair: map[string]*models.Dataset{
			pairKey("c1", "fall"): {ID: "d1", CourseID: "c1", Sem: "fall", AcademicYears: models.StringList{"2023"}},
		},
		appendApplied: false,
	}
	svc := newDatasetService(repo)

	_, err := svc.Merge(context.Background(), AddDatasetRequest{
		Course:       "c1",
		Sem:          "fall",
		AcademicYear: "2024",
		Columns:      []string{"student"},
		Data:         models.DataRows{},
		Concat:       true,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestDatasetServiceFilterPassesThrough(t *testing.T) {
	repo := &mockDatasetRepo{
		filterResult: []models.DatasetWithCourse{
			{ID: "d1", Course: models.CourseRef{ID: "c1", Name: "CS101"}},
		},
	}
	svc := newDatasetService(repo)

	datasets, err := svc.Filter(context.Background(), models.DatasetFilter{CourseID: "c1", Sem: "fall"})
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "CS101", datasets[0].Course.Name)
	assert.Equal(t, "c1", repo.lastFilter.CourseID)
	assert.Equal(t, "fall", repo.lastFilter.Sem)
}

func TestDatasetServiceFilterEmptyResultIsNotAnError(t *testing.T) {
	svc := newDatasetService(&mockDatasetRepo{})

	datasets, err := svc.Filter(context.Background(), models.DatasetFilter{})
	require.NoError(t, err)
	assert.NotNil(t, datasets)
	assert.Empty(t, datasets)
}

func TestDatasetServiceFilterRecordsQueryDuration(t *testing.T) {
	repo := &mockDatasetRepo{}
	metrics := NewMetricsService()
	cacheSvc := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewDatasetService(repo, cacheSvc, metrics, validator.New(), zap.NewNop())

	_, err := svc.Filter(context.Background(), models.DatasetFilter{CourseID: "c1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `db_query_duration_seconds_count{query="dataset_filter"} 1`)
}

func TestDatasetServiceExportCSV(t *testing.T) {
	repo := &mockDatasetRepo{byID: map[string]*models.Dataset{
		"d1": {
			ID:            "d1",
			Sem:           "fall",
			AcademicYears: models.StringList{"2023"},
			Columns:       models.StringList{"student", "grade"},
			Data:          models.DataRows{{"alice", float64(90)}, {"bob", nil}},
		},
	}}
	svc := newDatasetService(repo)

	payload, contentType, err := svc.Export(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student,grade", lines[0])
	assert.Equal(t, "alice,90", lines[1])
	assert.Equal(t, "bob,", lines[2])
}

func TestDatasetServiceExportUnknownFormat(t *testing.T) {
	svc := newDatasetService(&mockDatasetRepo{})

	_, _, err := svc.Export(context.Background(), "d1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestDatasetServiceExportNotFound(t *testing.T) {
	svc := newDatasetService(&mockDatasetRepo{})

	_, _, err := svc.Export(context.Background(), "missing", ExportFormatPDF)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestUnionColumnsOrderAndDedup(t *testing.T) {
	cases := []struct {
		existing models.StringList
		incoming []string
		want     models.StringList
	}{
		{models.StringList{"a", "b"}, []string{"b", "c"}, models.StringList{"a", "b", "c"}},
		{models.StringList{}, []string{"x"}, models.StringList{"x"}},
		{models.StringList{"a"}, nil, models.StringList{"a"}},
		{models.StringList{"a", "a"}, []string{"a"}, models.StringList{"a"}},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.want, unionColumns(tc.existing, tc.incoming), fmt.Sprintf("case %d", i))
	}
}
