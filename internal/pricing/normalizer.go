package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"friends-market/internal/models"
)

// Per-option clamp bounds for multiple-choice markets. Keeping every option
// off 0 and 100 keeps every option tradeable while the market is open.
var (
	MinOptionPrice = decimal.NewFromInt(1)
	MaxOptionPrice = decimal.NewFromInt(99)
)

// Normalize recomputes the price of every option of a multiple-choice market
// from the active YES buy-side demand and returns one price per option ID,
// summing to 100.
//
// Recomputation is global: each option's price is a function of every
// option's demand, so every trade on any one option rewrites them all.
// When clamping pushes the raw sum off 100, the difference is added to the
// currently largest raw price in a single shot and re-clamped; the
// correction is deliberately not iterative.
func Normalize(options []models.MarketOption, bets []models.Bet) map[uuid.UUID]decimal.Decimal {
	prices := make(map[uuid.UUID]decimal.Decimal, len(options))
	if len(options) == 0 {
		return prices
	}

	// Only active YES buy legs accumulate demand; sells are recorded with
	// negative shares and do not subtract from it.
	yesAmount := make(map[uuid.UUID]decimal.Decimal, len(options))
	total := decimal.Zero
	for _, bet := range bets {
		if bet.Status != models.BetStatusActive || bet.Side != models.BetSideYes {
			continue
		}
		if bet.OptionID == nil || !bet.Shares.IsPositive() {
			continue
		}
		yesAmount[*bet.OptionID] = yesAmount[*bet.OptionID].Add(bet.Amount)
		total = total.Add(bet.Amount)
	}

	if total.IsZero() {
		equal := hundred.Div(decimal.NewFromInt(int64(len(options))))
		for _, opt := range options {
			prices[opt.ID] = equal
		}
		return prices
	}

	sum := decimal.Zero
	var largestID uuid.UUID
	largest := decimal.NewFromInt(-1)
	for _, opt := range options {
		raw := yesAmount[opt.ID].Div(total).Mul(hundred)
		raw = clampOptionPrice(raw)
		prices[opt.ID] = raw
		sum = sum.Add(raw)
		if raw.GreaterThan(largest) {
			largest = raw
			largestID = opt.ID
		}
	}

	adjustment := hundred.Sub(sum)
	if !adjustment.IsZero() {
		prices[largestID] = clampOptionPrice(prices[largestID].Add(adjustment))
	}

	return prices
}

func clampOptionPrice(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(MinOptionPrice) {
		return MinOptionPrice
	}
	if p.GreaterThan(MaxOptionPrice) {
		return MaxOptionPrice
	}
	return p
}
