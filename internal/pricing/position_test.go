package pricing

import (
	"testing"

	"github.com/google/uuid"

	"friends-market/internal/models"
)

func binaryBuy(side, amount, price string) models.Bet {
	return models.Bet{
		Side:   side,
		Amount: d(amount),
		Price:  d(price),
		Shares: d(amount),
		Status: models.BetStatusActive,
	}
}

func binarySell(side, amount, price string) models.Bet {
	return models.Bet{
		Side:   side,
		Amount: d(amount),
		Price:  d(price),
		Shares: d(amount).Neg(),
		Status: models.BetStatusActive,
	}
}

func TestComputePositionSimpleBuy(t *testing.T) {
	bets := []models.Bet{binaryBuy(models.BetSideYes, "50", "60")}

	pos := ComputePosition(bets, nil)
	if pos == nil {
		t.Fatal("expected a position")
	}
	if pos.Side != models.BetSideYes {
		t.Errorf("side = %s, want YES", pos.Side)
	}
	if !pos.PositionValue.Equal(d("50")) {
		t.Errorf("position value = %s, want 50", pos.PositionValue)
	}
}

func TestComputePositionBuySellCancels(t *testing.T) {
	// Buy $30 then sell $30 on the same side: net position is gone.
	bets := []models.Bet{
		binaryBuy(models.BetSideYes, "30", "50"),
		binarySell(models.BetSideYes, "30", "62"),
	}

	if pos := ComputePosition(bets, nil); pos != nil {
		t.Errorf("expected nil position, got %+v", pos)
	}
}

func TestComputePositionPartialSell(t *testing.T) {
	bets := []models.Bet{
		binaryBuy(models.BetSideYes, "40", "50"),
		binarySell(models.BetSideYes, "15", "70"),
	}

	pos := ComputePosition(bets, nil)
	if pos == nil {
		t.Fatal("expected a position")
	}
	if !pos.PositionValue.Equal(d("25")) {
		t.Errorf("position value = %s, want 25", pos.PositionValue)
	}
	// Cost basis comes from buy legs only; the sell must not change it.
	if !pos.AveragePrice.Equal(d("100")) {
		t.Errorf("average price = %s, want 100", pos.AveragePrice)
	}
}

func TestComputePositionYesFirstTieBreak(t *testing.T) {
	bets := []models.Bet{
		binaryBuy(models.BetSideNo, "10", "50"),
		binaryBuy(models.BetSideYes, "10", "50"),
	}

	pos := ComputePosition(bets, nil)
	if pos == nil || pos.Side != models.BetSideYes {
		t.Errorf("expected the YES side to win the tie-break, got %+v", pos)
	}
}

func TestComputePositionScopedToOption(t *testing.T) {
	optA := uuid.New()
	optB := uuid.New()

	betA := binaryBuy(models.BetSideYes, "20", "33")
	betA.OptionID = &optA
	betB := binaryBuy(models.BetSideYes, "35", "33")
	betB.OptionID = &optB

	bets := []models.Bet{betA, betB}

	pos := ComputePosition(bets, &optA)
	if pos == nil {
		t.Fatal("expected a position for option A")
	}
	if !pos.PositionValue.Equal(d("20")) {
		t.Errorf("position value = %s, want 20", pos.PositionValue)
	}

	// Market-level scope (nil option) must not pick up option bets.
	if market := ComputePosition(bets, nil); market != nil {
		t.Errorf("expected nil market-level position, got %+v", market)
	}
}

func TestComputePositionIgnoresSettledBets(t *testing.T) {
	won := binaryBuy(models.BetSideYes, "100", "50")
	won.Status = models.BetStatusWon

	if pos := ComputePosition([]models.Bet{won}, nil); pos != nil {
		t.Errorf("expected nil position from settled bets, got %+v", pos)
	}
}

func TestPositionValueSellValidationSnapshot(t *testing.T) {
	bets := []models.Bet{
		binaryBuy(models.BetSideYes, "40", "50"),
		binarySell(models.BetSideYes, "10", "55"),
	}

	value := PositionValue(bets, nil, models.BetSideYes)
	if !value.Equal(d("30")) {
		t.Errorf("position value = %s, want 30", value)
	}

	if v := PositionValue(bets, nil, models.BetSideNo); !v.IsZero() {
		t.Errorf("NO side value = %s, want 0", v)
	}
}
