package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadhub/academic-records-api/internal/models"
)

// DatasetRepository handles persistence for per-semester datasets.
type DatasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new repository instance.
func NewDatasetRepository(db *sqlx.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// FindByCourseSem returns the dataset for the (course, sem) pair. Sem is
// expected already normalized by the caller.
func (r *DatasetRepository) FindByCourseSem(ctx context.Context, courseID, sem string) (*models.Dataset, error) {
	const query = `SELECT id, course_id, sem, academic_years, columns, data, created_at, updated_at FROM datasets WHERE course_id = $1 AND sem = $2`
	var dataset models.Dataset
	if err := r.db.GetContext(ctx, &dataset, query, courseID, sem); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// FindByID returns a dataset by id.
func (r *DatasetRepository) FindByID(ctx context.Context, id string) (*models.Dataset, error) {
	const query = `SELECT id, course_id, sem, academic_years, columns, data, created_at, updated_at FROM datasets WHERE id = $1`
	var dataset models.Dataset
	if err := r.db.GetContext(ctx, &dataset, query, id); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// Create persists a new dataset.
func (r *DatasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	if dataset.ID == "" {
		dataset.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if dataset.CreatedAt.IsZero() {
		dataset.CreatedAt = now
	}
	dataset.UpdatedAt = now

	const query = `INSERT INTO datasets (id, course_id, sem, academic_years, columns, data, created_at, updated_at) VALUES (:id, :course_id, :sem, :academic_years, :columns, :data, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, dataset); err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	return nil
}

// AppendYear extends a dataset with a new academic year in a single
// conditional statement: the year label is appended, columns replaced and
// rows concatenated only when no stored label normalizes to normalizedYear.
// It returns false when the guard rejects the append, leaving the row
// untouched. Running the guard inside the UPDATE keeps two racing merges
// from both appending the same year.
func (r *DatasetRepository) AppendYear(ctx context.Context, id, year, normalizedYear string, columns models.StringList, rows models.DataRows) (bool, error) {
	yearJSON, err := json.Marshal([]string{year})
	if err != nil {
		return false, fmt.Errorf("marshal year label: %w", err)
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return false, fmt.Errorf("marshal data rows: %w", err)
	}

	const query = `UPDATE datasets
SET academic_years = academic_years || $2::jsonb,
    columns = $3,
    data = data || $4::jsonb,
    updated_at = $5
WHERE id = $1
  AND NOT EXISTS (
    SELECT 1 FROM jsonb_array_elements_text(datasets.academic_years) AS year(label)
    WHERE lower(btrim(year.label)) = $6
  )`
	res, err := r.db.ExecContext(ctx, query, id, string(yearJSON), columns, string(rowsJSON), time.Now().UTC(), normalizedYear)
	if err != nil {
		return false, fmt.Errorf("append dataset year: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append dataset year result: %w", err)
	}
	return affected > 0, nil
}

type datasetWithCourseRow struct {
	ID            string            `db:"id"`
	CourseID      string            `db:"course_id"`
	CourseName    *string           `db:"course_name"`
	Sem           string            `db:"sem"`
	AcademicYears models.StringList `db:"academic_years"`
	Columns       models.StringList `db:"columns"`
	Data          models.DataRows   `db:"data"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
}

// Filter returns datasets matching the provided equality filters with the
// course reference resolved to its name. Absent filter fields are not
// constraints; values match exactly as stored.
func (r *DatasetRepository) Filter(ctx context.Context, filter models.DatasetFilter) ([]models.DatasetWithCourse, error) {
	base := `SELECT d.id, d.course_id, c.name AS course_name, d.sem, d.academic_years, d.columns, d.data, d.created_at, d.updated_at
FROM datasets d
LEFT JOIN courses c ON c.id = d.course_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("d.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Sem != "" {
		conditions = append(conditions, fmt.Sprintf("d.sem = $%d", len(args)+1))
		args = append(args, filter.Sem)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("d.academic_years @> jsonb_build_array($%d::text)", len(args)+1))
		args = append(args, filter.AcademicYear)
	}

	query := base
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY d.created_at ASC"

	var rows []datasetWithCourseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("filter datasets: %w", err)
	}

	results := make([]models.DatasetWithCourse, 0, len(rows))
	for _, row := range rows {
		ref := models.CourseRef{ID: row.CourseID}
		if row.CourseName != nil {
			ref.Name = *row.CourseName
		}
		results = append(results, models.DatasetWithCourse{
			ID:            row.ID,
			Course:        ref,
			Sem:           row.Sem,
			AcademicYears: row.AcademicYears,
			Columns:       row.Columns,
			Data:          row.Data,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return results, nil
}
