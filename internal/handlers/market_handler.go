package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"friends-market/internal/auth"
	"friends-market/internal/models"
	"friends-market/internal/services"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	marketService *services.MarketService
}

func NewMarketHandler(marketService *services.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// GetMarkets returns markets with optional filtering
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	category := c.Query("category")
	status := c.DefaultQuery("status", models.EventStatusActive)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	markets, err := h.marketService.GetMarkets(c.Request.Context(), status, category, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch markets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    markets,
		"count":   len(markets),
	})
}

// GetMarketByID returns a specific market with its options
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	market, err := h.marketService.GetMarketByID(c.Request.Context(), uint(eventID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}

// CreateMarket creates a new market
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, err := h.marketService.CreateMarket(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    market,
	})
}

// AddOption adds an option to a multiple-choice market that has no bets yet
func (h *MarketHandler) AddOption(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	option, err := h.marketService.AddOption(c.Request.Context(), uint(eventID), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    option,
	})
}

// GetPriceHistory returns a market's price series. Binary markets return
// {timestamp, yes_price, no_price, volume} rows; multiple-choice markets
// return one {timestamp, option_id, option_title, price} row per option
// per shared timestamp.
func (h *MarketHandler) GetPriceHistory(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market ID"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))

	market, err := h.marketService.GetMarketByID(c.Request.Context(), uint(eventID))
	if err != nil {
		respondError(c, err)
		return
	}

	if market.IsBinary() {
		history, err := h.marketService.GetBinaryPriceHistory(c.Request.Context(), uint(eventID), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": history})
		return
	}

	history, err := h.marketService.GetOptionPriceHistory(c.Request.Context(), uint(eventID), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": history})
}

// respondError maps service errors onto HTTP status codes. Anything outside
// the taxonomy is a persistence failure: generic and retryable.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMarketNotFound),
		errors.Is(err, services.ErrOptionNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInsufficientPosition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMarketNotActive),
		errors.Is(err, services.ErrMarketResolved),
		errors.Is(err, services.ErrMarketHasBets):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error, please retry"})
	}
}
