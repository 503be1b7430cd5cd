package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"friends-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolutionService settles and cancels markets. Both paths run in a single
// transaction: the market is frozen, every active bet is terminalized, and
// (for resolution) winners are paid from position value recorded at trade
// time. Markets never leave a terminal state.
type ResolutionService struct {
	db            *gorm.DB
	notifications *NotificationService
	lock          *MarketLock
}

// NewResolutionService creates a new resolution service. The lock must be
// the same instance the bet service holds.
func NewResolutionService(db *gorm.DB, notifications *NotificationService, lock *MarketLock) *ResolutionService {
	return &ResolutionService{
		db:            db,
		notifications: notifications,
		lock:          lock,
	}
}

// ResolveBinaryMarket resolves a binary market with the declared outcome
func (s *ResolutionService) ResolveBinaryMarket(ctx context.Context, eventID uint, outcome bool) error {
	return s.resolve(ctx, eventID, func(event *models.Event) error {
		if !event.IsBinary() {
			return fmt.Errorf("%w: market is not binary", ErrInvalidInput)
		}
		event.Outcome = &outcome
		return nil
	}, func(bet *models.Bet, event *models.Event) bool {
		won := bet.Side == models.BetSideYes
		return won == *event.Outcome
	})
}

// ResolveMultipleMarket resolves a multiple-choice market with the winning option
func (s *ResolutionService) ResolveMultipleMarket(ctx context.Context, eventID uint, winningOptionID uuid.UUID) error {
	return s.resolve(ctx, eventID, func(event *models.Event) error {
		if event.IsBinary() {
			return fmt.Errorf("%w: market is not multiple-choice", ErrInvalidInput)
		}
		found := false
		for _, opt := range event.Options {
			if opt.ID == winningOptionID {
				found = true
				break
			}
		}
		if !found {
			return ErrOptionNotFound
		}
		event.WinningOptionID = &winningOptionID
		return nil
	}, func(bet *models.Bet, event *models.Event) bool {
		return bet.OptionID != nil && *bet.OptionID == *event.WinningOptionID
	})
}

func (s *ResolutionService) resolve(ctx context.Context, eventID uint,
	declare func(*models.Event) error, isWinner func(*models.Bet, *models.Event) bool) error {

	event, activeBets, err := s.settleTx(ctx, eventID, declare, isWinner)
	if err != nil {
		return err
	}

	// Dispatch runs after the lock is released so a slow notification write
	// never delays the next trade or settlement.
	for _, bet := range activeBets {
		payload := models.MarketResolvedPayload{
			EventID:    event.ID,
			EventTitle: event.Title,
			Won:        bet.Status == models.BetStatusWon,
		}
		if payload.Won {
			payload.Winnings = bet.Shares.String()
		}
		s.notifications.Dispatch(ctx, bet.UserID, models.NotificationMarketResolved, payload)
	}

	log.Printf("[Resolution] market %d resolved, %d bets settled", event.ID, len(activeBets))
	return nil
}

// settleTx runs the settlement transaction under the market lock, shared
// with the bet service so no trade can commit against a pre-resolution
// snapshot of the market.
func (s *ResolutionService) settleTx(ctx context.Context, eventID uint,
	declare func(*models.Event) error, isWinner func(*models.Bet, *models.Event) bool) (*models.Event, []models.Bet, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	var event models.Event
	var activeBets []models.Bet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Options").First(&event, "id = ?", eventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMarketNotFound
			}
			return fmt.Errorf("failed to load market: %w", err)
		}
		if event.Resolved {
			return ErrMarketResolved
		}
		if err := declare(&event); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"resolved":    true,
			"status":      models.EventStatusResolved,
			"resolved_at": now,
		}
		if event.Outcome != nil {
			updates["outcome"] = *event.Outcome
		}
		if event.WinningOptionID != nil {
			updates["winning_option_id"] = *event.WinningOptionID
		}
		if err := tx.Model(&event).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mark market resolved: %w", err)
		}

		if err := tx.Where("event_id = ? AND status = ?", eventID, models.BetStatusActive).
			Find(&activeBets).Error; err != nil {
			return fmt.Errorf("failed to load bets: %w", err)
		}

		for i := range activeBets {
			bet := &activeBets[i]
			if isWinner(bet, &event) {
				bet.Status = models.BetStatusWon
				// The payout was captured as position value at trade time;
				// resolution pays it out as-is.
				winnings := bet.Shares
				profit := winnings.Sub(bet.Amount)
				if err := tx.Model(&models.User{}).Where("id = ?", bet.UserID).
					Updates(map[string]interface{}{
						"virtual_balance": gorm.Expr("virtual_balance + ?", winnings),
						"total_winnings":  gorm.Expr("total_winnings + ?", profit),
					}).Error; err != nil {
					return fmt.Errorf("failed to credit user %d: %w", bet.UserID, err)
				}
			} else {
				bet.Status = models.BetStatusLost
				if err := tx.Model(&models.User{}).Where("id = ?", bet.UserID).
					Update("total_losses", gorm.Expr("total_losses + ?", bet.Amount)).Error; err != nil {
					return fmt.Errorf("failed to record loss for user %d: %w", bet.UserID, err)
				}
			}
			if err := tx.Model(&models.Bet{}).Where("id = ?", bet.ID).
				Update("status", bet.Status).Error; err != nil {
				return fmt.Errorf("failed to settle bet %s: %w", bet.ID, err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return &event, activeBets, nil
}

// CancelMarket voids an unresolved market. Every active bet is marked
// REFUNDED with no balance movement: trading is credit-based, so nothing
// was ever debited.
func (s *ResolutionService) CancelMarket(ctx context.Context, eventID uint) error {
	event, activeBets, err := s.cancelTx(ctx, eventID)
	if err != nil {
		return err
	}

	notified := make(map[uint]bool)
	for _, bet := range activeBets {
		if notified[bet.UserID] {
			continue
		}
		notified[bet.UserID] = true
		s.notifications.Dispatch(ctx, bet.UserID, models.NotificationMarketCancelled, models.MarketCancelledPayload{
			EventID:    event.ID,
			EventTitle: event.Title,
		})
	}

	log.Printf("[Resolution] market %d cancelled, %d bets refunded", event.ID, len(activeBets))
	return nil
}

func (s *ResolutionService) cancelTx(ctx context.Context, eventID uint) (*models.Event, []models.Bet, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var event models.Event
	var activeBets []models.Bet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMarketNotFound
			}
			return fmt.Errorf("failed to load market: %w", err)
		}
		if event.Resolved {
			return ErrMarketResolved
		}

		now := time.Now()
		if err := tx.Model(&event).Updates(map[string]interface{}{
			"resolved":    true,
			"status":      models.EventStatusCancelled,
			"resolved_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel market: %w", err)
		}

		if err := tx.Where("event_id = ? AND status = ?", eventID, models.BetStatusActive).
			Find(&activeBets).Error; err != nil {
			return fmt.Errorf("failed to load bets: %w", err)
		}

		if err := tx.Model(&models.Bet{}).
			Where("event_id = ? AND status = ?", eventID, models.BetStatusActive).
			Update("status", models.BetStatusRefunded).Error; err != nil {
			return fmt.Errorf("failed to refund bets: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return &event, activeBets, nil
}
