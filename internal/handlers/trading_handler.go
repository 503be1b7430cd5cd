package handlers

import (
	"net/http"
	"strconv"

	"friends-market/internal/auth"
	"friends-market/internal/models"
	"friends-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TradingHandler struct {
	betService *services.BetService
}

func NewTradingHandler(betService *services.BetService) *TradingHandler {
	return &TradingHandler{betService: betService}
}

// PlaceBet submits a trade. On success the created bet row is returned;
// no follow-up read is needed.
func (h *TradingHandler) PlaceBet(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    bet,
	})
}

// PreviewBet returns the advisory impact estimate for a prospective trade
func (h *TradingHandler) PreviewBet(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Query("event_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event_id"})
		return
	}

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	side := c.DefaultQuery("side", models.BetSideYes)
	if side != models.BetSideYes && side != models.BetSideNo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be YES or NO"})
		return
	}

	var optionID *uuid.UUID
	if raw := c.Query("option_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option_id"})
			return
		}
		optionID = &parsed
	}

	preview, err := h.betService.PreviewBet(c.Request.Context(), uint(eventID), optionID, side, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    preview,
	})
}

// GetUserBets returns the caller's bets
func (h *TradingHandler) GetUserBets(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bets, err := h.betService.GetUserBets(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bets,
		"count":   len(bets),
	})
}

// GetPosition returns the caller's net position for a market (or one of its
// options via ?option_id=)
func (h *TradingHandler) GetPosition(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	var optionID *uuid.UUID
	if raw := c.Query("option_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option_id"})
			return
		}
		optionID = &parsed
	}

	position, err := h.betService.GetUserPosition(c.Request.Context(), userID, uint(eventID), optionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    position, // null when the user holds no position
	})
}
