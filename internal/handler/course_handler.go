package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadhub/academic-records-api/internal/models"
	"github.com/acadhub/academic-records-api/internal/service"
	appErrors "github.com/acadhub/academic-records-api/pkg/errors"
	"github.com/acadhub/academic-records-api/pkg/response"
)

// CourseService is the course workflow surface consumed by the handler.
type CourseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, req service.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req service.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
	AssessmentNames(ctx context.Context, id string) ([]string, error)
}

// CourseHandler handles course endpoints.
type CourseHandler struct {
	service CourseService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// Add godoc
// @Summary Add course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 201 {object} map[string]interface{}
// @Router /api/addCourse [post]
func (h *CourseHandler) Add(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"message": "Course added successfully!", "course": course})
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} map[string]interface{}
// @Router /api/updateCourse/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Course updated successfully!", "course": course})
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /api/courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Get godoc
// @Summary Get course by id
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course
// @Router /api/courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		// This route answers a missing course with a message body and
		// everything else with an error body.
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			response.MessageError(c, err)
		} else {
			response.Error(c, err)
		}
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/deleteCourse/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Course deleted successfully!")
}

// AssessmentNames godoc
// @Summary Get assessment names for a course
// @Tags Courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/courses/assessments/{courseId} [get]
func (h *CourseHandler) AssessmentNames(c *gin.Context) {
	names, err := h.service.AssessmentNames(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.MessageError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"assessments": names})
}
