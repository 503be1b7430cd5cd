package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"friends-market/internal/models"
)

// Position is a user's net holding on one side of a market or option
type Position struct {
	Side            string          `json:"side"`
	PositionValue   decimal.Decimal `json:"position_value"`
	AveragePrice    decimal.Decimal `json:"average_price"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
}

// ComputePosition derives a user's net position from their bet rows for one
// market (optionID nil) or one option. Returns nil when the user holds no
// positive position on either side.
//
// Because sells are stored with negative Shares, summing Shares per side
// nets buys against sells without special-casing. YES is checked before NO;
// if both sides somehow carry positive value the YES side wins the
// tie-break (a convention, not an invariant).
func ComputePosition(bets []models.Bet, optionID *uuid.UUID) *Position {
	for _, side := range []string{models.BetSideYes, models.BetSideNo} {
		value := decimal.Zero
		buyAmount := decimal.Zero
		buyShares := decimal.Zero

		for _, bet := range bets {
			if bet.Status != models.BetStatusActive || bet.Side != side {
				continue
			}
			if !sameOption(bet.OptionID, optionID) {
				continue
			}
			value = value.Add(bet.Shares)
			// Average entry price comes from buy legs only; sells do not
			// rewrite historical cost basis.
			if bet.Shares.IsPositive() {
				buyAmount = buyAmount.Add(bet.Amount)
				buyShares = buyShares.Add(bet.Shares)
			}
		}

		if !value.IsPositive() {
			continue
		}

		avgPrice := decimal.Zero
		if buyShares.IsPositive() {
			avgPrice = buyAmount.Div(buyShares).Mul(hundred)
		}

		payout := decimal.Zero
		if avgPrice.IsPositive() {
			payout = value.Div(avgPrice.Div(hundred))
		}

		return &Position{
			Side:            side,
			PositionValue:   value,
			AveragePrice:    avgPrice,
			PotentialPayout: payout,
		}
	}
	return nil
}

// PositionValue returns the user's net position value on one side, zero if
// none. Used by sell validation against a snapshot of existing bets.
func PositionValue(bets []models.Bet, optionID *uuid.UUID, side string) decimal.Decimal {
	value := decimal.Zero
	for _, bet := range bets {
		if bet.Status != models.BetStatusActive || bet.Side != side {
			continue
		}
		if !sameOption(bet.OptionID, optionID) {
			continue
		}
		value = value.Add(bet.Shares)
	}
	return value
}

func sameOption(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
