package handlers

import (
	"net/http"
	"strconv"

	"friends-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	marketService     *services.MarketService
	resolutionService *services.ResolutionService
}

func NewAdminHandler(marketService *services.MarketService, resolutionService *services.ResolutionService) *AdminHandler {
	return &AdminHandler{
		marketService:     marketService,
		resolutionService: resolutionService,
	}
}

// ResolveMarket settles a market with the declared outcome. Binary markets
// take {"outcome": bool}; multiple-choice markets take
// {"winning_option_id": "<uuid>"}.
func (h *AdminHandler) ResolveMarket(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	var req struct {
		Outcome         *bool   `json:"outcome,omitempty"`
		WinningOptionID *string `json:"winning_option_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case req.Outcome != nil:
		err = h.resolutionService.ResolveBinaryMarket(c.Request.Context(), uint(eventID), *req.Outcome)
	case req.WinningOptionID != nil:
		winningID, parseErr := uuid.Parse(*req.WinningOptionID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid winning_option_id"})
			return
		}
		err = h.resolutionService.ResolveMultipleMarket(c.Request.Context(), uint(eventID), winningID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "outcome or winning_option_id is required"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Market resolved and payouts distributed",
	})
}

// CancelMarket voids an unresolved market and refunds all active bets
func (h *AdminHandler) CancelMarket(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	if err := h.resolutionService.CancelMarket(c.Request.Context(), uint(eventID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Market cancelled and bets refunded",
	})
}

// UpdateMarketStatus moves a market between active and closed
func (h *AdminHandler) UpdateMarketStatus(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.marketService.UpdateMarketStatus(c.Request.Context(), uint(eventID), req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Market status updated",
	})
}
