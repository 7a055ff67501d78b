package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradetrack-api/internal/dto"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

type transcriptOpener interface {
	Open(ctx context.Context, userID, token string) (*dto.TranscriptFile, error)
}

// TranscriptHandler streams stored transcripts behind signed links.
type TranscriptHandler struct {
	transcripts transcriptOpener
}

// NewTranscriptHandler constructs handler.
func NewTranscriptHandler(transcripts transcriptOpener) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// Download godoc
// @Summary Download transcript
// @Tags PastGrades
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 410 {object} response.Envelope
// @Security BearerAuth
// @Router /transcripts/{token} [get]
func (h *TranscriptHandler) Download(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	file, err := h.transcripts.Open(c.Request.Context(), claims.UserID, c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Body.Close()

	if err := response.Attachment(c, file.Name, file.ContentType, file.Body); err != nil {
		_ = c.Error(err)
	}
}
