package services

import (
	"context"
	"fmt"
	"time"

	"friends-market/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketService handles market and option lifecycle up to the point where
// the trading and settlement orchestrators take over
type MarketService struct {
	db *gorm.DB
}

// NewMarketService creates a new market service
func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{db: db}
}

// CreateMarketRequest describes a new market. Options are required for
// MULTIPLE markets and rejected for BINARY ones.
type CreateMarketRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	MarketType  string     `json:"market_type" binding:"required,oneof=BINARY MULTIPLE"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Options     []string   `json:"options,omitempty"`
}

// CreateMarket creates a market. Binary markets open at a yes price of 50;
// multiple-choice markets open with an equal split across their options.
func (s *MarketService) CreateMarket(ctx context.Context, createdBy uint, req *CreateMarketRequest) (*models.Event, error) {
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		MarketType:  req.MarketType,
		Status:      models.EventStatusActive,
		EndDate:     req.EndDate,
		YesPrice:    decimal.NewFromInt(50),
		TotalVolume: decimal.Zero,
		CreatedBy:   &createdBy,
	}

	switch req.MarketType {
	case models.MarketTypeBinary:
		if len(req.Options) > 0 {
			return nil, fmt.Errorf("%w: a binary market takes no options", ErrInvalidInput)
		}
	case models.MarketTypeMultiple:
		if len(req.Options) < 2 {
			return nil, fmt.Errorf("%w: a multiple-choice market needs at least 2 options", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unknown market type %q", ErrInvalidInput, req.MarketType)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create market: %w", err)
		}
		if event.IsBinary() {
			return nil
		}

		// Rounded to the price column's 4 decimal places so the stored
		// value reads back exactly under every driver.
		equal := decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(len(req.Options)))).Round(4)
		for _, title := range req.Options {
			option := models.MarketOption{
				EventID:     event.ID,
				Title:       title,
				Price:       equal,
				TotalVolume: decimal.Zero,
			}
			if err := tx.Create(&option).Error; err != nil {
				return fmt.Errorf("failed to create option: %w", err)
			}
			event.Options = append(event.Options, option)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// AddOption adds an option to a multiple-choice market. Allowed only while
// the market has zero bets; afterwards the option set is frozen. The
// remaining options are re-split equally so the sum stays at 100.
func (s *MarketService) AddOption(ctx context.Context, eventID uint, title string) (*models.MarketOption, error) {
	var option *models.MarketOption

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Preload("Options").First(&event, "id = ?", eventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMarketNotFound
			}
			return fmt.Errorf("failed to load market: %w", err)
		}
		if event.IsBinary() {
			return fmt.Errorf("%w: a binary market takes no options", ErrInvalidInput)
		}
		if event.Resolved {
			return ErrMarketResolved
		}
		if event.Status != models.EventStatusActive {
			return ErrMarketNotActive
		}

		var betCount int64
		if err := tx.Model(&models.Bet{}).Where("event_id = ?", eventID).Count(&betCount).Error; err != nil {
			return fmt.Errorf("failed to count bets: %w", err)
		}
		if betCount > 0 {
			return ErrMarketHasBets
		}

		n := int64(len(event.Options) + 1)
		equal := decimal.NewFromInt(100).Div(decimal.NewFromInt(n)).Round(4)

		option = &models.MarketOption{
			EventID:     eventID,
			Title:       title,
			Price:       equal,
			TotalVolume: decimal.Zero,
		}
		if err := tx.Create(option).Error; err != nil {
			return fmt.Errorf("failed to create option: %w", err)
		}

		if err := tx.Model(&models.MarketOption{}).Where("event_id = ?", eventID).
			Update("price", equal).Error; err != nil {
			return fmt.Errorf("failed to rebalance option prices: %w", err)
		}
		option.Price = equal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return option, nil
}

// GetMarkets returns markets filtered by status and category
func (s *MarketService) GetMarkets(ctx context.Context, status, category string, limit, offset int) ([]models.Event, error) {
	var events []models.Event
	query := s.db.WithContext(ctx).Preload("Options")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get markets: %w", err)
	}
	return events, nil
}

// GetMarketByID returns a market with its options
func (s *MarketService) GetMarketByID(ctx context.Context, eventID uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Preload("Options").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMarketNotFound
		}
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	return &event, nil
}

// UpdateMarketStatus moves a market between active and closed. Terminal
// states are owned by the resolution service and rejected here.
func (s *MarketService) UpdateMarketStatus(ctx context.Context, eventID uint, status string) error {
	if status != models.EventStatusActive && status != models.EventStatusClosed {
		return fmt.Errorf("%w: status must be active or closed", ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMarketNotFound
			}
			return fmt.Errorf("failed to load market: %w", err)
		}
		if event.Resolved {
			return ErrMarketResolved
		}
		return tx.Model(&event).Update("status", status).Error
	})
}

// BinaryHistoryPoint is one entry of a binary market's price history
type BinaryHistoryPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	YesPrice  decimal.Decimal `json:"yes_price"`
	NoPrice   decimal.Decimal `json:"no_price"`
	Volume    decimal.Decimal `json:"volume"`
}

// OptionHistoryPoint is one entry of a multiple-choice market's price
// history. Consumers must treat all points sharing a timestamp as one
// atomic cross-section of the market.
type OptionHistoryPoint struct {
	Timestamp   time.Time       `json:"timestamp"`
	OptionID    uuid.UUID       `json:"option_id"`
	OptionTitle string          `json:"option_title"`
	Price       decimal.Decimal `json:"price"`
}

// GetBinaryPriceHistory returns a binary market's price series in
// chronological order
func (s *MarketService) GetBinaryPriceHistory(ctx context.Context, eventID uint, limit int) ([]BinaryHistoryPoint, error) {
	var points []models.PricePoint
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("timestamp ASC").
		Limit(limit).
		Find(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	history := make([]BinaryHistoryPoint, 0, len(points))
	for _, p := range points {
		history = append(history, BinaryHistoryPoint{
			Timestamp: p.Timestamp,
			YesPrice:  p.YesPrice,
			NoPrice:   p.NoPrice,
			Volume:    p.Volume,
		})
	}
	return history, nil
}

// GetOptionPriceHistory returns a multiple-choice market's price series in
// chronological order, one row per option per shared timestamp
func (s *MarketService) GetOptionPriceHistory(ctx context.Context, eventID uint, limit int) ([]OptionHistoryPoint, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Preload("Options").First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMarketNotFound
		}
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	titles := make(map[uuid.UUID]string, len(event.Options))
	for _, opt := range event.Options {
		titles[opt.ID] = opt.Title
	}

	var points []models.OptionPricePoint
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("timestamp ASC, option_id ASC").
		Limit(limit).
		Find(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to get option price history: %w", err)
	}

	history := make([]OptionHistoryPoint, 0, len(points))
	for _, p := range points {
		history = append(history, OptionHistoryPoint{
			Timestamp:   p.Timestamp,
			OptionID:    p.OptionID,
			OptionTitle: titles[p.OptionID],
			Price:       p.Price,
		})
	}
	return history, nil
}
