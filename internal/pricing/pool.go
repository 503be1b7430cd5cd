// Package pricing holds the pure market math: parimutuel pool pricing for
// binary markets, demand normalization for multiple-choice markets, the
// advisory trade-impact preview, and position accounting over bet rows.
// Nothing here touches storage; the services layer calls these inside its
// transactions.
package pricing

import (
	"github.com/shopspring/decimal"

	"friends-market/internal/models"
)

// Price clamp bounds for binary markets. An active market never trades at
// 0 or 100: the pool on the far side must stay economically meaningful.
var (
	MinPrice = decimal.NewFromInt(5)
	MaxPrice = decimal.NewFromInt(95)

	hundred  = decimal.NewFromInt(100)
	midPrice = decimal.NewFromInt(50)
)

// PoolsFromBets recovers the YES/NO pools from the market's active bet
// rows. Pools are never persisted; they are re-derived fresh at the start of
// every trade so there is no second source of truth to drift. The posted
// price is not a valid derivation source: clamping makes it lossy, so a
// clamped market would never rebalance correctly. Summing signed Shares per
// side is exact and nets sells against buys without special-casing.
func PoolsFromBets(bets []models.Bet) (yesPool, noPool decimal.Decimal) {
	for _, bet := range bets {
		if bet.Status != models.BetStatusActive {
			continue
		}
		if bet.Side == models.BetSideYes {
			yesPool = yesPool.Add(bet.Shares)
		} else {
			noPool = noPool.Add(bet.Shares)
		}
	}
	return yesPool, noPool
}

// ApplyBet adds a buy of amount on side to the pools and returns the new
// pools together with the new posted price, clamped to [MinPrice, MaxPrice].
//
// The trader's own execution price is the pre-trade price (parimutuel: no
// self-slippage); only the market's posted price going forward moves.
func ApplyBet(yesPool, noPool, amount decimal.Decimal, side string) (newYes, newNo, newPrice decimal.Decimal) {
	if side == models.BetSideYes {
		yesPool = yesPool.Add(amount)
	} else {
		noPool = noPool.Add(amount)
	}
	return yesPool, noPool, PoolPrice(yesPool, noPool)
}

// RemovePayout decrements the pools by a sell payout on side and returns the
// new pools and posted price. The price formula is the same as for buys,
// evaluated on the decremented pools.
func RemovePayout(yesPool, noPool, payout decimal.Decimal, side string) (newYes, newNo, newPrice decimal.Decimal) {
	if side == models.BetSideYes {
		yesPool = yesPool.Sub(payout)
	} else {
		noPool = noPool.Sub(payout)
	}
	return yesPool, noPool, PoolPrice(yesPool, noPool)
}

// PoolPrice converts a pool pair into a clamped yes price. An empty market
// (both pools zero) prices at 50.
func PoolPrice(yesPool, noPool decimal.Decimal) decimal.Decimal {
	total := yesPool.Add(noPool)
	if total.IsZero() {
		return midPrice
	}
	return ClampPrice(yesPool.Div(total).Mul(hundred))
}

// ClampPrice bounds a binary market price to [MinPrice, MaxPrice]
func ClampPrice(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(MinPrice) {
		return MinPrice
	}
	if p.GreaterThan(MaxPrice) {
		return MaxPrice
	}
	return p
}
