package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokadeal/lokadeal-backend/internal/service"
	"github.com/lokadeal/lokadeal-backend/pkg/response"
)

type AdminHandler struct {
	merchantService service.MerchantService
	cache           service.LeaderboardCache
}

func NewAdminHandler(merchantService service.MerchantService, cache service.LeaderboardCache) *AdminHandler {
	return &AdminHandler{
		merchantService: merchantService,
		cache:           cache,
	}
}

func (h *AdminHandler) ListPendingMerchants(c *gin.Context) {
	merchants, err := h.merchantService.ListPending(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": merchants})
}

func (h *AdminHandler) ApproveMerchant(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved is required"})
		return
	}

	if err := h.merchantService.Approve(c.Request.Context(), id, *input.Approved); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "merchant updated"})
}

// ResetLeaderboardCache clears every cached leaderboard page. Administrative
// escape hatch, rarely needed.
func (h *AdminHandler) ResetLeaderboardCache(c *gin.Context) {
	if h.cache != nil {
		h.cache.Invalidate()
	}
	c.JSON(http.StatusOK, gin.H{"message": "leaderboard cache cleared"})
}
