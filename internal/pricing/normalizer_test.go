package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"friends-market/internal/models"
)

func makeOptions(n int) []models.MarketOption {
	options := make([]models.MarketOption, n)
	for i := range options {
		options[i] = models.MarketOption{ID: uuid.New(), EventID: 1}
	}
	return options
}

func yesBuy(optionID uuid.UUID, amount string) models.Bet {
	return models.Bet{
		OptionID: &optionID,
		Side:     models.BetSideYes,
		Amount:   d(amount),
		Shares:   d(amount),
		Status:   models.BetStatusActive,
	}
}

func sumPrices(prices map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum
}

func assertSum100(t *testing.T, prices map[uuid.UUID]decimal.Decimal) {
	t.Helper()
	diff := sumPrices(prices).Sub(d("100")).Abs()
	if diff.GreaterThan(d("0.01")) {
		t.Errorf("prices sum to %s, want 100 (±0.01)", sumPrices(prices))
	}
}

func TestNormalizeNoBetsEqualSplit(t *testing.T) {
	options := makeOptions(3)
	prices := Normalize(options, nil)

	third := d("100").Div(d("3"))
	for _, opt := range options {
		if !prices[opt.ID].Equal(third) {
			t.Errorf("option price = %s, want %s", prices[opt.ID], third)
		}
	}
	assertSum100(t, prices)
}

func TestNormalizeProportionalToDemand(t *testing.T) {
	options := makeOptions(2)
	bets := []models.Bet{
		yesBuy(options[0].ID, "75"),
		yesBuy(options[1].ID, "25"),
	}

	prices := Normalize(options, bets)
	if !prices[options[0].ID].Equal(d("75")) {
		t.Errorf("option 0 price = %s, want 75", prices[options[0].ID])
	}
	if !prices[options[1].ID].Equal(d("25")) {
		t.Errorf("option 1 price = %s, want 25", prices[options[1].ID])
	}
	assertSum100(t, prices)
}

func TestNormalizeClampsAndCorrects(t *testing.T) {
	// All demand on one option: raw prices 100 and 0 clamp to 99 and 1;
	// the correction lands on the largest price, which the clamp holds at 99.
	options := makeOptions(2)
	bets := []models.Bet{yesBuy(options[0].ID, "50")}

	prices := Normalize(options, bets)
	if !prices[options[0].ID].Equal(d("99")) {
		t.Errorf("dominant option price = %s, want 99", prices[options[0].ID])
	}
	if !prices[options[1].ID].Equal(d("1")) {
		t.Errorf("empty option price = %s, want 1", prices[options[1].ID])
	}
	assertSum100(t, prices)
}

func TestNormalizeCorrectionReachesSum(t *testing.T) {
	// Three options, one with no demand clamped up to 1: the overshoot is
	// taken back from the largest price.
	options := makeOptions(3)
	bets := []models.Bet{
		yesBuy(options[0].ID, "60"),
		yesBuy(options[1].ID, "40"),
	}

	prices := Normalize(options, bets)
	assertSum100(t, prices)
	if !prices[options[2].ID].Equal(d("1")) {
		t.Errorf("empty option price = %s, want 1", prices[options[2].ID])
	}
	if !prices[options[0].ID].Equal(d("59")) {
		t.Errorf("largest option price = %s, want 59", prices[options[0].ID])
	}
}

func TestNormalizeIgnoresSellAndNoLegs(t *testing.T) {
	options := makeOptions(2)
	sell := models.Bet{
		OptionID: &options[0].ID,
		Side:     models.BetSideYes,
		Amount:   d("30"),
		Shares:   d("-30"),
		Status:   models.BetStatusActive,
	}
	noBuy := models.Bet{
		OptionID: &options[0].ID,
		Side:     models.BetSideNo,
		Amount:   d("30"),
		Shares:   d("30"),
		Status:   models.BetStatusActive,
	}
	bets := []models.Bet{
		yesBuy(options[0].ID, "10"),
		yesBuy(options[1].ID, "10"),
		sell,
		noBuy,
	}

	prices := Normalize(options, bets)
	// Only the two equal YES buys count: 50/50.
	if !prices[options[0].ID].Equal(d("50")) || !prices[options[1].ID].Equal(d("50")) {
		t.Errorf("prices = %s/%s, want 50/50", prices[options[0].ID], prices[options[1].ID])
	}
}

func TestNormalizeIgnoresSettledBets(t *testing.T) {
	options := makeOptions(2)
	refunded := yesBuy(options[0].ID, "100")
	refunded.Status = models.BetStatusRefunded

	prices := Normalize(options, []models.Bet{refunded})
	// No active demand: equal split.
	if !prices[options[0].ID].Equal(d("50")) {
		t.Errorf("price = %s, want 50", prices[options[0].ID])
	}
}

func TestNormalizeSumInvariantAcrossShapes(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8} {
		options := makeOptions(n)
		var bets []models.Bet
		for i, opt := range options {
			// A lone option with demand sits at the 99 clamp; the
			// single-shot correction cannot reach 100 there, so demand is
			// only spread across multi-option shapes.
			if n > 1 && i%2 == 0 {
				bets = append(bets, yesBuy(opt.ID, decimal.NewFromInt(int64(10+i*7)).String()))
			}
		}
		prices := Normalize(options, bets)
		if len(prices) != n {
			t.Fatalf("n=%d: got %d prices", n, len(prices))
		}
		assertSum100(t, prices)
	}
}
