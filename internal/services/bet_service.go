package services

import (
	"context"
	"fmt"
	"time"

	"friends-market/internal/models"
	"friends-market/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BetService is the trade orchestrator: it validates a trade request, runs
// the pool model (binary) or the option normalizer (multiple), and persists
// the bet, the updated prices and volumes, and the price-history points in
// one transaction. Notification dispatch happens after commit and is
// best-effort.
type BetService struct {
	db            *gorm.DB
	notifications *NotificationService
	maxBetAmount  decimal.Decimal
	lock          *MarketLock
}

// NewBetService creates a new bet service. The lock must be the same
// instance the resolution service holds.
func NewBetService(db *gorm.DB, notifications *NotificationService, maxBetAmount decimal.Decimal, lock *MarketLock) *BetService {
	return &BetService{
		db:            db,
		notifications: notifications,
		maxBetAmount:  maxBetAmount,
		lock:          lock,
	}
}

// PlaceBet executes a trade request end to end. Validation failures return
// a typed error with no mutation; any failure during the persist phase
// rolls back the whole transaction.
func (s *BetService) PlaceBet(ctx context.Context, userID uint, req *models.PlaceBetRequest) (*models.Bet, error) {
	amount, err := decimal.NewFromString(string(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if amount.GreaterThan(s.maxBetAmount) {
		return nil, fmt.Errorf("%w: amount exceeds maximum of %s", ErrInvalidInput, s.maxBetAmount.String())
	}
	if req.Side != models.BetSideYes && req.Side != models.BetSideNo {
		return nil, fmt.Errorf("%w: side must be YES or NO", ErrInvalidInput)
	}
	if req.Type != models.BetTypeBuy && req.Type != models.BetTypeSell {
		return nil, fmt.Errorf("%w: type must be BUY or SELL", ErrInvalidInput)
	}

	bet, event, err := s.placeTx(ctx, userID, req, amount)
	if err != nil {
		return nil, err
	}

	// Dispatch runs after the lock is released: a slow notification write
	// must not hold up the next trade or settlement.
	s.notifications.Dispatch(ctx, userID, models.NotificationBetPlaced, models.BetPlacedPayload{
		EventID:    event.ID,
		EventTitle: event.Title,
		Side:       bet.Side,
		Amount:     bet.Amount.String(),
		Price:      bet.Price.String(),
	})

	return bet, nil
}

// placeTx runs the persist phase under the market lock. Two concurrent
// trades on one market must not read stale bets and compute divergent next
// prices, and a trade must never commit against a snapshot taken before
// settlement froze the market.
func (s *BetService) placeTx(ctx context.Context, userID uint, req *models.PlaceBetRequest,
	amount decimal.Decimal) (*models.Bet, *models.Event, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	var bet *models.Bet
	var event models.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Options").First(&event, "id = ?", req.EventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMarketNotFound
			}
			return fmt.Errorf("failed to load market: %w", err)
		}

		if event.Resolved {
			return ErrMarketResolved
		}
		if event.Status != models.EventStatusActive {
			return ErrMarketNotActive
		}

		var optionID *uuid.UUID
		if event.IsBinary() {
			if req.OptionID != nil {
				return fmt.Errorf("%w: option_id is not valid for a binary market", ErrInvalidInput)
			}
		} else {
			if req.OptionID == nil {
				return fmt.Errorf("%w: option_id is required for a multiple-choice market", ErrInvalidInput)
			}
			parsed, err := uuid.Parse(*req.OptionID)
			if err != nil {
				return fmt.Errorf("%w: invalid option_id", ErrInvalidInput)
			}
			found := false
			for _, opt := range event.Options {
				if opt.ID == parsed {
					found = true
					break
				}
			}
			if !found {
				return ErrOptionNotFound
			}
			optionID = &parsed
		}

		// Sell validation runs against a snapshot of the caller's current
		// position, taken immediately before the check.
		if req.Type == models.BetTypeSell {
			var userBets []models.Bet
			if err := tx.Where("user_id = ? AND event_id = ? AND status = ?",
				userID, event.ID, models.BetStatusActive).Find(&userBets).Error; err != nil {
				return fmt.Errorf("failed to load user bets: %w", err)
			}
			position := pricing.PositionValue(userBets, optionID, req.Side)
			if amount.GreaterThan(position) {
				return ErrInsufficientPosition
			}
		}

		var err error
		if event.IsBinary() {
			bet, err = s.placeBinaryBet(tx, &event, userID, req.Side, req.Type, amount)
		} else {
			bet, err = s.placeMultipleBet(tx, &event, userID, *optionID, req.Side, req.Type, amount)
		}
		return err
	})

	if err != nil {
		return nil, nil, err
	}
	return bet, &event, nil
}

// placeBinaryBet runs the parimutuel pool model and persists the trade.
// Pools are derived fresh from the active bet rows; they are never persisted
// themselves, and the clamped posted price is never a derivation source.
func (s *BetService) placeBinaryBet(tx *gorm.DB, event *models.Event, userID uint,
	side, betType string, amount decimal.Decimal) (*models.Bet, error) {

	var activeBets []models.Bet
	if err := tx.Where("event_id = ? AND status = ?", event.ID, models.BetStatusActive).
		Find(&activeBets).Error; err != nil {
		return nil, fmt.Errorf("failed to load market bets: %w", err)
	}
	yesPool, noPool := pricing.PoolsFromBets(activeBets)
	executionPrice := event.YesPrice

	var newPrice, newVolume, shares decimal.Decimal
	if betType == models.BetTypeBuy {
		_, _, newPrice = pricing.ApplyBet(yesPool, noPool, amount, side)
		newVolume = event.TotalVolume.Add(amount)
		shares = amount
	} else {
		// Sell payout is taken at face value; the pool gives it back.
		_, _, newPrice = pricing.RemovePayout(yesPool, noPool, amount, side)
		newVolume = event.TotalVolume.Sub(amount)
		shares = amount.Neg()
	}

	bet := &models.Bet{
		UserID:  userID,
		EventID: event.ID,
		Side:    side,
		Amount:  amount,
		Price:   executionPrice,
		Shares:  shares,
		Status:  models.BetStatusActive,
	}
	if err := tx.Create(bet).Error; err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if err := tx.Model(event).Updates(map[string]interface{}{
		"yes_price":    newPrice,
		"total_volume": newVolume,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update market: %w", err)
	}
	event.YesPrice = newPrice
	event.TotalVolume = newVolume

	point := models.PricePoint{
		EventID:   event.ID,
		YesPrice:  newPrice,
		NoPrice:   decimal.NewFromInt(100).Sub(newPrice),
		Volume:    newVolume,
		Timestamp: time.Now(),
	}
	if err := tx.Create(&point).Error; err != nil {
		return nil, fmt.Errorf("failed to record price point: %w", err)
	}

	return bet, nil
}

// placeMultipleBet persists the trade and renormalizes every option price
// of the market. The recomputation is global across options, and one
// history point per option is written at a single shared timestamp so every
// timestamp carries a complete cross-section.
func (s *BetService) placeMultipleBet(tx *gorm.DB, event *models.Event, userID uint,
	optionID uuid.UUID, side, betType string, amount decimal.Decimal) (*models.Bet, error) {

	var option models.MarketOption
	if err := tx.First(&option, "id = ? AND event_id = ?", optionID, event.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to load option: %w", err)
	}

	executionPrice := option.Price
	shares := amount
	optionVolume := option.TotalVolume.Add(amount)
	eventVolume := event.TotalVolume.Add(amount)
	if betType == models.BetTypeSell {
		shares = amount.Neg()
		optionVolume = option.TotalVolume.Sub(amount)
		eventVolume = event.TotalVolume.Sub(amount)
	}

	bet := &models.Bet{
		UserID:   userID,
		EventID:  event.ID,
		OptionID: &optionID,
		Side:     side,
		Amount:   amount,
		Price:    executionPrice,
		Shares:   shares,
		Status:   models.BetStatusActive,
	}
	if err := tx.Create(bet).Error; err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	// Renormalize from the full bet set, including the bet just written.
	var allBets []models.Bet
	if err := tx.Where("event_id = ? AND status = ?", event.ID, models.BetStatusActive).
		Find(&allBets).Error; err != nil {
		return nil, fmt.Errorf("failed to load market bets: %w", err)
	}
	newPrices := pricing.Normalize(event.Options, allBets)

	timestamp := time.Now()
	for i := range event.Options {
		opt := &event.Options[i]
		price, ok := newPrices[opt.ID]
		if !ok {
			continue
		}

		updates := map[string]interface{}{"price": price}
		if opt.ID == optionID {
			updates["total_volume"] = optionVolume
			opt.TotalVolume = optionVolume
		}
		if err := tx.Model(&models.MarketOption{}).Where("id = ?", opt.ID).
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update option price: %w", err)
		}
		opt.Price = price

		point := models.OptionPricePoint{
			EventID:   event.ID,
			OptionID:  opt.ID,
			Price:     price,
			Volume:    opt.TotalVolume,
			Timestamp: timestamp,
		}
		if err := tx.Create(&point).Error; err != nil {
			return nil, fmt.Errorf("failed to record option price point: %w", err)
		}
	}

	if err := tx.Model(event).Update("total_volume", eventVolume).Error; err != nil {
		return nil, fmt.Errorf("failed to update market volume: %w", err)
	}
	event.TotalVolume = eventVolume

	return bet, nil
}

// PreviewBet returns the advisory impact estimate for a prospective trade.
// The preview never binds the execution path.
func (s *BetService) PreviewBet(ctx context.Context, eventID uint, optionID *uuid.UUID,
	side string, amount decimal.Decimal) (*pricing.ImpactPreview, error) {

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMarketNotFound
		}
		return nil, fmt.Errorf("failed to load market: %w", err)
	}

	startingPrice := event.YesPrice
	if !event.IsBinary() {
		if optionID == nil {
			return nil, fmt.Errorf("%w: option_id is required for a multiple-choice market", ErrInvalidInput)
		}
		var option models.MarketOption
		if err := s.db.WithContext(ctx).First(&option, "id = ? AND event_id = ?", optionID, eventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrOptionNotFound
			}
			return nil, fmt.Errorf("failed to load option: %w", err)
		}
		startingPrice = option.Price
	}

	preview := pricing.PreviewImpact(amount, startingPrice, event.TotalVolume, side)
	return &preview, nil
}

// GetUserBets returns a user's bets, newest first
func (s *BetService) GetUserBets(ctx context.Context, userID uint, limit, offset int) ([]models.Bet, error) {
	var bets []models.Bet
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}
	return bets, nil
}

// GetUserPosition computes the caller's net position for one market, or one
// option of it
func (s *BetService) GetUserPosition(ctx context.Context, userID, eventID uint, optionID *uuid.UUID) (*pricing.Position, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMarketNotFound
		}
		return nil, fmt.Errorf("failed to load market: %w", err)
	}

	var bets []models.Bet
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status = ?", userID, eventID, models.BetStatusActive).
		Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}
	return pricing.ComputePosition(bets, optionID), nil
}
