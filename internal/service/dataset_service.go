package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadhub/academic-records-api/internal/models"
	appErrors "github.com/acadhub/academic-records-api/pkg/errors"
	"github.com/acadhub/academic-records-api/pkg/export"
)

type datasetRepository interface {
	FindByCourseSem(ctx context.Context, courseID, sem string) (*models.Dataset, error)
	FindByID(ctx context.Context, id string) (*models.Dataset, error)
	Create(ctx context.Context, dataset *models.Dataset) error
	AppendYear(ctx context.Context, id, year, normalizedYear string, columns models.StringList, rows models.DataRows) (bool, error)
	Filter(ctx context.Context, filter models.DatasetFilter) ([]models.DatasetWithCourse, error)
}

// AddDatasetRequest is the upsert-and-merge payload. Replace is part of the
// legacy request contract but no code path consults it; the flag is kept so
// existing clients keep passing it without errors.
type AddDatasetRequest struct {
	Course       string          `json:"course"`
	Sem          string          `json:"sem"`
	AcademicYear string          `json:"academicYear"`
	Columns      []string        `json:"columns"`
	Data         models.DataRows `json:"data"`
	Replace      bool            `json:"replace"`
	Concat       bool            `json:"concat"`
}

// ExportFormat enumerates supported dataset export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// DatasetService handles dataset upsert-and-merge, filtering and export.
type DatasetService struct {
	repo      datasetRepository
	cache     *CacheService
	metrics   *MetricsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(repo datasetRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *DatasetService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Merge creates the dataset for a new (course, sem) pair, or extends the
// existing one with a new academic year when concat is requested. The
// returned string is the acknowledgment message for the client.
func (s *DatasetService) Merge(ctx context.Context, req AddDatasetRequest) (string, error) {
	var missing []string
	if req.Course == "" {
		missing = append(missing, "course")
	}
	if req.Sem == "" {
		missing = append(missing, "sem")
	}
	if req.AcademicYear == "" {
		missing = append(missing, "academicYear")
	}
	// Nil checks mirror the legacy presence semantics: an explicitly empty
	// array passes, an absent field does not.
	if req.Columns == nil {
		missing = append(missing, "columns")
	}
	if req.Data == nil {
		missing = append(missing, "data")
	}
	if len(missing) > 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "Missing required fields: "+strings.Join(missing, ", "))
	}

	normalizedSem := normalize(req.Sem)
	normalizedYear := normalize(req.AcademicYear)

	existing, err := s.repo.FindByCourseSem(ctx, req.Course, normalizedSem)
	if err != nil {
		if err != sql.ErrNoRows {
			return "", s.internalMergeError(err)
		}

		dataset := &models.Dataset{
			CourseID:      req.Course,
			Sem:           normalizedSem,
			AcademicYears: models.StringList{req.AcademicYear},
			Columns:       models.StringList(req.Columns),
			Data:          req.Data,
		}
		if err := s.repo.Create(ctx, dataset); err != nil {
			return "", s.internalMergeError(err)
		}
		s.invalidateQueries(ctx)
		return "Dataset added successfully!", nil
	}

	if containsNormalized(existing.AcademicYears, normalizedYear) {
		return "", s.duplicateYearError(req.AcademicYear)
	}

	if !req.Concat {
		return "", appErrors.Clone(appErrors.ErrConflict, "Dataset with the same course and semester exists. Confirm replacement or concatenation.")
	}

	columns := unionColumns(existing.Columns, req.Columns)
	applied, err := s.repo.AppendYear(ctx, existing.ID, req.AcademicYear, normalizedYear, columns, req.Data)
	if err != nil {
		return "", s.internalMergeError(err)
	}
	if !applied {
		// A concurrent merge appended the year between our read and the
		// conditional write.
		return "", s.duplicateYearError(req.AcademicYear)
	}
	s.invalidateQueries(ctx)
	return "Dataset updated successfully with new academic year and data!", nil
}

// Filter returns datasets matching the optional equality filters, with the
// course reference resolved. Results are served from cache when possible.
func (s *DatasetService) Filter(ctx context.Context, filter models.DatasetFilter) ([]models.DatasetWithCourse, error) {
	key := filterCacheKey(filter)

	var cached []models.DatasetWithCourse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	datasets, err := s.repo.Filter(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch datasets.")
	}
	s.metrics.ObserveDBQuery("dataset_filter", time.Since(start))
	if datasets == nil {
		datasets = []models.DatasetWithCourse{}
	}

	if err := s.cache.Set(ctx, key, datasets, 0); err != nil {
		s.logger.Warn("dataset query cache set failed", zap.String("key", key), zap.Error(err))
	}

	return datasets, nil
}

// Export renders one dataset in the requested format and returns the payload
// with its content type.
func (s *DatasetService) Export(ctx context.Context, id string, format ExportFormat) ([]byte, string, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}

	dataset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "Dataset not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dataset")
	}

	table := export.Table{
		Headers: dataset.Columns,
		Rows:    stringifyRows(dataset.Data),
	}

	switch format {
	case ExportFormatPDF:
		title := fmt.Sprintf("%s %s", dataset.Sem, strings.Join(dataset.AcademicYears, ", "))
		payload, err := s.pdf.Render(table, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render dataset export")
		}
		return payload, "application/pdf", nil
	default:
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render dataset export")
		}
		return payload, "text/csv", nil
	}
}

func (s *DatasetService) duplicateYearError(year string) error {
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Dataset with course, semester, and academic year (%s) already exists.", year))
}

func (s *DatasetService) internalMergeError(err error) error {
	s.logger.Error("dataset merge failed", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to add, update, or concatenate dataset")
}

func (s *DatasetService) invalidateQueries(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "datasets:*"); err != nil {
		s.logger.Warn("dataset query cache invalidation failed", zap.Error(err))
	}
}

func containsNormalized(years models.StringList, normalizedYear string) bool {
	for _, stored := range years {
		if normalize(stored) == normalizedYear {
			return true
		}
	}
	return false
}

// unionColumns keeps the existing columns in their original order and appends
// incoming columns not already present, in their given order.
func unionColumns(existing models.StringList, incoming []string) models.StringList {
	seen := make(map[string]struct{}, len(existing))
	union := make(models.StringList, 0, len(existing)+len(incoming))
	for _, col := range existing {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		union = append(union, col)
	}
	for _, col := range incoming {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		union = append(union, col)
	}
	return union
}

func filterCacheKey(filter models.DatasetFilter) string {
	return fmt.Sprintf("datasets:filter:course=%s|sem=%s|year=%s", filter.CourseID, filter.Sem, filter.AcademicYear)
}

func stringifyRows(rows models.DataRows) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, 0, len(row))
		for _, cell := range row {
			record = append(record, stringifyCell(cell))
		}
		out = append(out, record)
	}
	return out
}

func stringifyCell(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
