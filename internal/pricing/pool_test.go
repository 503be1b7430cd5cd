package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"friends-market/internal/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func poolBet(side string, shares string) models.Bet {
	return models.Bet{Side: side, Shares: d(shares), Status: models.BetStatusActive}
}

func TestPoolsFromBets(t *testing.T) {
	tests := []struct {
		name    string
		bets    []models.Bet
		wantYes string
		wantNo  string
	}{
		{"empty market", nil, "0", "0"},
		{"even market", []models.Bet{poolBet(models.BetSideYes, "50"), poolBet(models.BetSideNo, "50")}, "50", "50"},
		{"sell nets against buy", []models.Bet{poolBet(models.BetSideYes, "120"), poolBet(models.BetSideYes, "-45"), poolBet(models.BetSideNo, "30")}, "75", "30"},
		{"settled bets excluded", []models.Bet{poolBet(models.BetSideYes, "60"), {Side: models.BetSideNo, Shares: d("40"), Status: models.BetStatusLost}}, "60", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yes, no := PoolsFromBets(tt.bets)
			if !yes.Equal(d(tt.wantYes)) {
				t.Errorf("yes pool = %s, want %s", yes, tt.wantYes)
			}
			if !no.Equal(d(tt.wantNo)) {
				t.Errorf("no pool = %s, want %s", no, tt.wantNo)
			}
		})
	}
}

func TestPoolsFromBetsSurviveClamp(t *testing.T) {
	// A single $20 YES buy posts a clamped 95, but the pools stay 20/0.
	// The clamped price must never leak back into the derivation: a $20 NO
	// buy on top has to land the market at exactly 50.
	bets := []models.Bet{poolBet(models.BetSideYes, "20")}
	yes, no := PoolsFromBets(bets)
	if !yes.Equal(d("20")) || !no.Equal(d("0")) {
		t.Fatalf("pools = %s/%s, want 20/0", yes, no)
	}
	_, _, price := ApplyBet(yes, no, d("20"), models.BetSideNo)
	if !price.Equal(d("50")) {
		t.Errorf("price = %s, want 50", price)
	}
}

func TestApplyBetMovesPrice(t *testing.T) {
	// Even pools, $50 YES buy: price should rise above 50 but stay capped.
	yes, no, price := ApplyBet(d("50"), d("50"), d("50"), models.BetSideYes)
	if !yes.Equal(d("100")) || !no.Equal(d("50")) {
		t.Fatalf("pools = %s/%s, want 100/50", yes, no)
	}
	want := d("100").Div(d("150")).Mul(d("100"))
	if !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
}

func TestApplyBetClampsAtCeiling(t *testing.T) {
	// First bet into an empty market drives the raw price to 100; the
	// posted price must clamp to 95.
	_, _, price := ApplyBet(decimal.Zero, decimal.Zero, d("20"), models.BetSideYes)
	if !price.Equal(MaxPrice) {
		t.Errorf("price = %s, want %s", price, MaxPrice)
	}
}

func TestApplyBetClampsAtFloor(t *testing.T) {
	_, _, price := ApplyBet(decimal.Zero, decimal.Zero, d("20"), models.BetSideNo)
	if !price.Equal(MinPrice) {
		t.Errorf("price = %s, want %s", price, MinPrice)
	}
}

func TestBalancedBetsReturnToEven(t *testing.T) {
	// $20 YES then $20 NO: pools 20/20, price back to 50.
	yes, no, _ := ApplyBet(decimal.Zero, decimal.Zero, d("20"), models.BetSideYes)
	_, _, price := ApplyBet(yes, no, d("20"), models.BetSideNo)
	if !price.Equal(d("50")) {
		t.Errorf("price = %s, want 50", price)
	}
}

func TestRemovePayout(t *testing.T) {
	yes, no, price := RemovePayout(d("60"), d("40"), d("20"), models.BetSideYes)
	if !yes.Equal(d("40")) || !no.Equal(d("40")) {
		t.Fatalf("pools = %s/%s, want 40/40", yes, no)
	}
	if !price.Equal(d("50")) {
		t.Errorf("price = %s, want 50", price)
	}
}

func TestPoolPriceEmptyMarket(t *testing.T) {
	price := PoolPrice(decimal.Zero, decimal.Zero)
	if !price.Equal(d("50")) {
		t.Errorf("price = %s, want 50", price)
	}
}

func TestPriceBoundsUnderRandomWalk(t *testing.T) {
	// The posted price must stay within [5, 95] for any buy sequence.
	yes, no := decimal.Zero, decimal.Zero

	amounts := []string{"20", "5", "300", "1", "250", "13.37", "100"}
	for i, a := range amounts {
		side := models.BetSideYes
		if i%2 == 1 {
			side = models.BetSideNo
		}
		var price decimal.Decimal
		yes, no, price = ApplyBet(yes, no, d(a), side)

		if price.LessThan(MinPrice) || price.GreaterThan(MaxPrice) {
			t.Fatalf("step %d: price %s out of [5, 95]", i, price)
		}
	}
}
