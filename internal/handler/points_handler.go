package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/pkg/response"
)

type PointsHandler struct {
	pointsRepo repository.PointsRepository
}

func NewPointsHandler(pointsRepo repository.PointsRepository) *PointsHandler {
	return &PointsHandler{pointsRepo: pointsRepo}
}

// GetMyPointHistory returns the caller's recent point events, newest first.
func (h *PointsHandler) GetMyPointHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	events, err := h.pointsRepo.EventsForUser(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}
