package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/academic-records-api/internal/models"
	appErrors "github.com/acadhub/academic-records-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CourseRequest carries the writable course fields. Name and code are
// optional; assessments keep their submitted order. Create and update share
// the same payload because update is a full overwrite of all three fields.
type CourseRequest struct {
	Name        string              `json:"name"`
	Code        string              `json:"code"`
	Assessments []models.Assessment `json:"assessments" validate:"dive"`
}

// CourseService handles course domain workflows.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service. Cached dataset query results
// embed the course name, so course writes invalidate them through cache.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every course.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		// Course routes in the contract answer store failures with 400.
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a new course.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Name:        req.Name,
		Code:        req.Code,
		Assessments: models.AssessmentList(req.Assessments),
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to create course")
	}
	return course, nil
}

// Update overwrites the name, code and assessments of an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to load course")
	}

	course.Name = req.Name
	course.Code = req.Code
	course.Assessments = models.AssessmentList(req.Assessments)

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to update course")
	}
	s.invalidateDatasetQueries(ctx)
	return course, nil
}

// Delete removes a course by identifier. Dependent datasets are not cascaded.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to load course")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to delete course")
	}
	s.invalidateDatasetQueries(ctx)
	return nil
}

// invalidateDatasetQueries drops cached filter results after a course rename
// or removal so they do not serve a stale embedded course name.
func (s *CourseService) invalidateDatasetQueries(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "datasets:*"); err != nil {
		s.logger.Warn("dataset query cache invalidation failed", zap.Error(err))
	}
}

// AssessmentNames returns the assessment names of a course in stored order,
// dropping the marks.
func (s *CourseService) AssessmentNames(ctx context.Context, id string) ([]string, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch assessments")
	}

	names := make([]string, 0, len(course.Assessments))
	for _, a := range course.Assessments {
		names = append(names, a.Assessment)
	}
	return names, nil
}
