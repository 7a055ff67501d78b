package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, userID string, query dto.EnrollmentQuery) ([]models.Enrollment, error)
	Get(ctx context.Context, userID, id string) (*models.Enrollment, error)
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateEnrollmentRequest) (*models.Enrollment, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateEnrollmentRequest) (*models.Enrollment, error)
	Delete(ctx context.Context, userID, id string) error
	ListGrades(ctx context.Context, userID, id string) ([]models.AssignmentGrade, error)
	UpsertGrade(ctx context.Context, userID, enrollmentID string, req dto.UpsertGradeRequest) (*models.AssignmentGrade, error)
	SetStatus(ctx context.Context, userID, enrollmentID, assignmentID string, req dto.GradeStatusRequest) (*models.AssignmentGrade, error)
	DeleteGrade(ctx context.Context, userID, enrollmentID, assignmentID string) error
}

// EnrollmentHandler manages the caller's enrollments and recorded scores.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List my enrollments
// @Tags Enrollments
// @Produce json
// @Param archived query bool false "Archived filter"
// @Param semester query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.EnrollmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	enrollments, err := h.enrollments.List(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Get godoc
// @Summary Get enrollment with its current grade
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Create godoc
// @Summary Enroll in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Update godoc
// @Summary Update enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.UpdateEnrollmentRequest true "Enrollment patch"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.UpdateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Delete godoc
// @Summary Delete enrollment
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Success 204
// @Security BearerAuth
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGrades godoc
// @Summary List recorded assignment scores
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/grades [get]
func (h *EnrollmentHandler) ListGrades(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	grades, err := h.enrollments.ListGrades(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// UpsertGrade godoc
// @Summary Record an assignment score
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.UpsertGradeRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/grades [post]
func (h *EnrollmentHandler) UpsertGrade(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.UpsertGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.enrollments.UpsertGrade(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// SetStatus godoc
// @Summary Set an assignment status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param assignmentId path string true "Assignment ID"
// @Param payload body dto.GradeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/grades/{assignmentId}/status [patch]
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.GradeStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.enrollments.SetStatus(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("assignmentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// DeleteGrade godoc
// @Summary Clear an assignment score
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Security BearerAuth
// @Router /enrollments/{id}/grades/{assignmentId} [delete]
func (h *EnrollmentHandler) DeleteGrade(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.enrollments.DeleteGrade(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
