package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadhub/academic-records-api/internal/models"
)

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns every course, oldest first.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, code, assessments, created_at, updated_at FROM courses ORDER BY created_at ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, code, assessments, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, name, code, assessments, created_at, updated_at) VALUES (:id, :name, :code, :assessments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update overwrites the mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, code = :code, assessments = :assessments, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course record. Datasets referencing the course are left
// untouched.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
