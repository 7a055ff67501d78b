package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/internal/models"
	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/export"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

const maxImportBytes = 5 << 20

type pastGradeService interface {
	List(ctx context.Context, userID string) ([]models.PastGrade, error)
	Create(ctx context.Context, userID string, req dto.PastGradeRequest) (*models.PastGrade, error)
	Update(ctx context.Context, userID, id string, req dto.PastGradeRequest) (*models.PastGrade, error)
	Delete(ctx context.Context, userID, id string) error
	GPA(ctx context.Context, userID string) (*dto.GPASummary, error)
	Import(ctx context.Context, userID string, format export.Format, data []byte) (*dto.ImportResult, error)
}

type transcriptGenerator interface {
	Generate(ctx context.Context, userID string, format string) (*dto.TranscriptLink, error)
}

// PastGradeHandler manages completed courses, GPA and transcript export.
type PastGradeHandler struct {
	grades      pastGradeService
	transcripts transcriptGenerator
}

// NewPastGradeHandler constructs handler. transcripts may be nil when the
// export feature is disabled.
func NewPastGradeHandler(grades pastGradeService, transcripts transcriptGenerator) *PastGradeHandler {
	return &PastGradeHandler{grades: grades, transcripts: transcripts}
}

// List godoc
// @Summary List past grades
// @Tags PastGrades
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /past-grades [get]
func (h *PastGradeHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	grades, err := h.grades.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Create godoc
// @Summary Record a past grade
// @Tags PastGrades
// @Accept json
// @Produce json
// @Param payload body dto.PastGradeRequest true "Past grade payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /past-grades [post]
func (h *PastGradeHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.PastGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Replace a past grade
// @Tags PastGrades
// @Accept json
// @Produce json
// @Param id path string true "Past grade ID"
// @Param payload body dto.PastGradeRequest true "Past grade payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /past-grades/{id} [put]
func (h *PastGradeHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.PastGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete a past grade
// @Tags PastGrades
// @Param id path string true "Past grade ID"
// @Success 204
// @Security BearerAuth
// @Router /past-grades/{id} [delete]
func (h *PastGradeHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.grades.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GPA godoc
// @Summary Cumulative GPA
// @Tags PastGrades
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /past-grades/gpa [get]
func (h *PastGradeHandler) GPA(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	summary, err := h.grades.GPA(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Import godoc
// @Summary Import past grades from CSV or XLSX
// @Tags PastGrades
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param format query string false "csv or xlsx, defaults to the file extension"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /past-grades/import [post]
func (h *PastGradeHandler) Import(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if header.Size > maxImportBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "import file is too large"))
		return
	}

	rawFormat := c.Query("format")
	if rawFormat == "" {
		rawFormat = strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil || format == export.FormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "import accepts csv or xlsx files"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	result, err := h.grades.Import(c.Request.Context(), claims.UserID, format, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Transcript godoc
// @Summary Export transcript
// @Description Renders the transcript, stores it and returns a signed download link.
// @Tags PastGrades
// @Accept json
// @Produce json
// @Param payload body dto.TranscriptRequest false "Format: csv, pdf or xlsx"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /past-grades/transcript [post]
func (h *PastGradeHandler) Transcript(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if h.transcripts == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	var req dto.TranscriptRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}
	if req.Format == "" {
		req.Format = c.Query("format")
	}
	link, err := h.transcripts.Generate(c.Request.Context(), claims.UserID, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}
