package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/academic-records-api/internal/models"
	"github.com/acadhub/academic-records-api/internal/service"
	appErrors "github.com/acadhub/academic-records-api/pkg/errors"
	"github.com/acadhub/academic-records-api/pkg/response"
)

// DatasetService is the dataset workflow surface consumed by the handler.
type DatasetService interface {
	Merge(ctx context.Context, req service.AddDatasetRequest) (string, error)
	Filter(ctx context.Context, filter models.DatasetFilter) ([]models.DatasetWithCourse, error)
	Export(ctx context.Context, id string, format service.ExportFormat) ([]byte, string, error)
}

// DatasetHandler handles dataset endpoints.
type DatasetHandler struct {
	service DatasetService
}

// NewDatasetHandler constructs a dataset handler.
func NewDatasetHandler(svc DatasetService) *DatasetHandler {
	return &DatasetHandler{service: svc}
}

// Merge godoc
// @Summary Add or merge a dataset
// @Tags Datasets
// @Accept json
// @Produce json
// @Param payload body service.AddDatasetRequest true "Dataset payload"
// @Success 200 {object} map[string]interface{}
// @Router /api/add-dataset [put]
func (h *DatasetHandler) Merge(c *gin.Context) {
	var req service.AddDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dataset payload"))
		return
	}
	message, err := h.service.Merge(c.Request.Context(), req)
	if err != nil {
		// Merge conflicts answer with a message body; validation and store
		// failures answer with an error body.
		if appErrors.FromError(err).Code == appErrors.ErrConflict.Code {
			response.MessageError(c, err)
		} else {
			response.Error(c, err)
		}
		return
	}
	response.Message(c, http.StatusOK, message)
}

// Filter godoc
// @Summary Filter datasets
// @Tags Datasets
// @Produce json
// @Param course query string false "Course ID"
// @Param sem query string false "Semester (stored normalized form)"
// @Param academicYear query string false "Academic year label"
// @Success 200 {array} models.DatasetWithCourse
// @Router /api/datasets/filter [get]
func (h *DatasetHandler) Filter(c *gin.Context) {
	filter := models.DatasetFilter{
		CourseID:     c.Query("course"),
		Sem:          c.Query("sem"),
		AcademicYear: c.Query("academicYear"),
	}
	datasets, err := h.service.Filter(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, datasets)
}

// Export godoc
// @Summary Export a dataset as CSV or PDF
// @Tags Datasets
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Dataset ID"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {string} string
// @Router /api/datasets/{id}/export [get]
func (h *DatasetHandler) Export(c *gin.Context) {
	id := c.Param("id")
	format := service.ExportFormat(c.Query("format"))
	payload, contentType, err := h.service.Export(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=dataset-%s.%s", id, ext))
	c.Data(http.StatusOK, contentType, payload)
}
