package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/service"
	"github.com/lokadeal/lokadeal-backend/pkg/response"
	pkgvalidator "github.com/lokadeal/lokadeal-backend/pkg/validator"
)

type CheckInHandler struct {
	checkInService service.CheckInService
}

func NewCheckInHandler(checkInService service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

func (h *CheckInHandler) CheckIn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	dealID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || dealID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deal id must be a positive integer"})
		return
	}

	var input dto.CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgvalidator.FormatValidationError(err)})
		return
	}

	res, err := h.checkInService.CheckIn(c.Request.Context(), userID, uint(dealID), *input.Latitude, *input.Longitude)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
