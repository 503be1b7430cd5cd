package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"friends-market/internal/models"
)

func newResolutionService(db *gorm.DB) *ResolutionService {
	return NewResolutionService(db, NewNotificationService(db), NewMarketLock())
}

func reloadUser(t *testing.T, db *gorm.DB, userID uint) *models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &user
}

func TestResolveBinaryMarketSettlesAllBets(t *testing.T) {
	db := setupTestDB(t)
	bets := newBetService(db)
	resolution := newResolutionService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	event := createBinaryMarket(t, db)

	placeBet(t, bets, alice.ID, event.ID, models.BetSideYes, models.BetTypeBuy, "20", nil)
	placeBet(t, bets, bob.ID, event.ID, models.BetSideNo, models.BetTypeBuy, "20", nil)

	if err := resolution.ResolveBinaryMarket(context.Background(), event.ID, true); err != nil {
		t.Fatalf("ResolveBinaryMarket failed: %v", err)
	}

	updated := reloadEvent(t, db, event.ID)
	if !updated.Resolved || updated.Status != models.EventStatusResolved {
		t.Errorf("market not frozen: resolved=%v status=%s", updated.Resolved, updated.Status)
	}
	if updated.Outcome == nil || !*updated.Outcome {
		t.Error("outcome not recorded")
	}
	if updated.ResolvedAt == nil {
		t.Error("resolution timestamp not recorded")
	}

	// No bet may remain active, and winnings paid must equal the WON shares.
	var active int64
	db.Model(&models.Bet{}).Where("event_id = ? AND status = ?", event.ID, models.BetStatusActive).Count(&active)
	if active != 0 {
		t.Errorf("%d bets still active after resolution", active)
	}

	aliceAfter := reloadUser(t, db, alice.ID)
	// 1000 starting balance + 20 position value paid out.
	if !aliceAfter.VirtualBalance.Equal(decimal.NewFromInt(1020)) {
		t.Errorf("winner balance = %s, want 1020", aliceAfter.VirtualBalance)
	}
	// Winnings are profit: shares - stake = 0 in the parimutuel par payout.
	if !aliceAfter.TotalWinnings.Equal(decimal.Zero) {
		t.Errorf("winner total winnings = %s, want 0", aliceAfter.TotalWinnings)
	}

	bobAfter := reloadUser(t, db, bob.ID)
	if !bobAfter.VirtualBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("loser balance = %s, want 1000", bobAfter.VirtualBalance)
	}
	if !bobAfter.TotalLosses.Equal(decimal.NewFromInt(20)) {
		t.Errorf("loser total losses = %s, want 20", bobAfter.TotalLosses)
	}
}

func TestResolveMarketTwiceRejected(t *testing.T) {
	db := setupTestDB(t)
	resolution := newResolutionService(db)
	event := createBinaryMarket(t, db)

	if err := resolution.ResolveBinaryMarket(context.Background(), event.ID, false); err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	if err := resolution.ResolveBinaryMarket(context.Background(), event.ID, true); err != ErrMarketResolved {
		t.Errorf("expected ErrMarketResolved, got %v", err)
	}
}

func TestResolveMissingMarket(t *testing.T) {
	db := setupTestDB(t)
	resolution := newResolutionService(db)

	if err := resolution.ResolveBinaryMarket(context.Background(), 42, true); err != ErrMarketNotFound {
		t.Errorf("expected ErrMarketNotFound, got %v", err)
	}
}

func TestResolveMultipleMarketByWinningOption(t *testing.T) {
	db := setupTestDB(t)
	bets := newBetService(db)
	resolution := newResolutionService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	event := createMultipleMarket(t, db, "Ana", "Ben")

	placeBet(t, bets, alice.ID, event.ID, models.BetSideYes, models.BetTypeBuy, "30", &event.Options[0].ID)
	placeBet(t, bets, bob.ID, event.ID, models.BetSideYes, models.BetTypeBuy, "10", &event.Options[1].ID)

	winner := event.Options[0].ID
	if err := resolution.ResolveMultipleMarket(context.Background(), event.ID, winner); err != nil {
		t.Fatalf("ResolveMultipleMarket failed: %v", err)
	}

	updated := reloadEvent(t, db, event.ID)
	if updated.WinningOptionID == nil || *updated.WinningOptionID != winner {
		t.Error("winning option not recorded")
	}

	var aliceBet, bobBet models.Bet
	db.Where("user_id = ? AND event_id = ?", alice.ID, event.ID).First(&aliceBet)
	db.Where("user_id = ? AND event_id = ?", bob.ID, event.ID).First(&bobBet)
	if aliceBet.Status != models.BetStatusWon {
		t.Errorf("winning bet status = %s, want WON", aliceBet.Status)
	}
	if bobBet.Status != models.BetStatusLost {
		t.Errorf("losing bet status = %s, want LOST", bobBet.Status)
	}

	aliceAfter := reloadUser(t, db, alice.ID)
	if !aliceAfter.VirtualBalance.Equal(decimal.NewFromInt(1030)) {
		t.Errorf("winner balance = %s, want 1030", aliceAfter.VirtualBalance)
	}
}

func TestResolveMultipleMarketUnknownOption(t *testing.T) {
	db := setupTestDB(t)
	resolution := newResolutionService(db)
	event := createMultipleMarket(t, db, "Ana", "Ben")

	foreign := createMultipleMarket(t, db, "X", "Y")
	err := resolution.ResolveMultipleMarket(context.Background(), event.ID, foreign.Options[0].ID)
	if err != ErrOptionNotFound {
		t.Errorf("expected ErrOptionNotFound, got %v", err)
	}
}

func TestResolveWrongMarketType(t *testing.T) {
	db := setupTestDB(t)
	resolution := newResolutionService(db)

	binary := createBinaryMarket(t, db)
	multiple := createMultipleMarket(t, db, "Ana", "Ben")

	if err := resolution.ResolveMultipleMarket(context.Background(), binary.ID, multiple.Options[0].ID); err == nil {
		t.Error("expected an error resolving a binary market by option")
	}
	if err := resolution.ResolveBinaryMarket(context.Background(), multiple.ID, true); err == nil {
		t.Error("expected an error resolving a multiple market by outcome")
	}
}

func TestResolutionDispatchesNotifications(t *testing.T) {
	db := setupTestDB(t)
	bets := newBetService(db)
	resolution := newResolutionService(db)

	alice := createTestUser(t, db, "alice")
	event := createBinaryMarket(t, db)
	placeBet(t, bets, alice.ID, event.ID, models.BetSideYes, models.BetTypeBuy, "15", nil)

	if err := resolution.ResolveBinaryMarket(context.Background(), event.ID, true); err != nil {
		t.Fatalf("ResolveBinaryMarket failed: %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND kind = ?", alice.ID, models.NotificationMarketResolved).
		Count(&count)
	if count != 1 {
		t.Errorf("resolution notification count = %d, want 1", count)
	}
}

func TestCancelMarketRefundsWithoutBalanceChanges(t *testing.T) {
	db := setupTestDB(t)
	bets := newBetService(db)
	resolution := newResolutionService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	event := createBinaryMarket(t, db)

	placeBet(t, bets, alice.ID, event.ID, models.BetSideYes, models.BetTypeBuy, "25", nil)
	placeBet(t, bets, bob.ID, event.ID, models.BetSideNo, models.BetTypeBuy, "40", nil)

	if err := resolution.CancelMarket(context.Background(), event.ID); err != nil {
		t.Fatalf("CancelMarket failed: %v", err)
	}

	updated := reloadEvent(t, db, event.ID)
	if updated.Status != models.EventStatusCancelled || !updated.Resolved {
		t.Errorf("market not cancelled: status=%s resolved=%v", updated.Status, updated.Resolved)
	}

	var notRefunded int64
	db.Model(&models.Bet{}).Where("event_id = ? AND status != ?", event.ID, models.BetStatusRefunded).Count(&notRefunded)
	if notRefunded != 0 {
		t.Errorf("%d bets not refunded", notRefunded)
	}

	// Nothing was debited at trade time, so nothing moves on cancellation.
	for _, u := range []*models.User{alice, bob} {
		after := reloadUser(t, db, u.ID)
		if !after.VirtualBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("user %s balance = %s, want 1000", u.Username, after.VirtualBalance)
		}
	}
}

func TestCancelResolvedMarketRejected(t *testing.T) {
	db := setupTestDB(t)
	resolution := newResolutionService(db)
	event := createBinaryMarket(t, db)

	if err := resolution.ResolveBinaryMarket(context.Background(), event.ID, true); err != nil {
		t.Fatalf("resolution failed: %v", err)
	}
	if err := resolution.CancelMarket(context.Background(), event.ID); err != ErrMarketResolved {
		t.Errorf("expected ErrMarketResolved, got %v", err)
	}
}
