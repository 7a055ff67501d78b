package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/middleware"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

type gradeService interface {
	Breakdown(ctx context.Context, userID, enrollmentID string) (*dto.GradeBreakdown, bool, error)
	Simulate(ctx context.Context, userID, enrollmentID string, req dto.SimulateRequest) (*dto.SimulationResponse, error)
}

// GradeHandler exposes calculated grades.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Breakdown godoc
// @Summary Current grade breakdown
// @Tags Grades
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/grade [get]
func (h *GradeHandler) Breakdown(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	breakdown, cached, err := h.grades.Breakdown(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, breakdown, nil, middleware.ExtractMeta(c))
}

// Simulate godoc
// @Summary What-if grade projection
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.SimulateRequest true "Hypothetical scores"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/simulate [post]
func (h *GradeHandler) Simulate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SimulateRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.grades.Simulate(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
