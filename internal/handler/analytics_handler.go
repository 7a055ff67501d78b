package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/gradetrack-api/pkg/errors"
	"github.com/noah-isme/gradetrack-api/pkg/gradecalc"
	"github.com/noah-isme/gradetrack-api/pkg/response"
)

const defaultUpcomingLimit = 10

type upcomingService interface {
	Upcoming(ctx context.Context, userID string, limit int) ([]gradecalc.Upcoming, error)
}

// AnalyticsHandler serves study planning views.
type AnalyticsHandler struct {
	analytics upcomingService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics upcomingService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Upcoming godoc
// @Summary Upcoming assignments ranked by importance
// @Tags Analytics
// @Produce json
// @Param limit query int false "Maximum items, default 10"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/upcoming [get]
func (h *AnalyticsHandler) Upcoming(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	limit := defaultUpcomingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	items, err := h.analytics.Upcoming(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
