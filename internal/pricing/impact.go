package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"friends-market/internal/models"
)

// ImpactPreview is the advisory estimate shown before a trade is submitted.
// It is never authoritative: the executed trade is priced by the pool model
// inside the transaction, not by this estimate.
type ImpactPreview struct {
	EstimatedPosition     decimal.Decimal `json:"estimated_position"`
	EstimatedAveragePrice decimal.Decimal `json:"estimated_average_price"`
	PriceImpact           decimal.Decimal `json:"price_impact"`
	EstimatedFinalPrice   decimal.Decimal `json:"estimated_final_price"`
}

// PreviewImpact estimates execution price and price impact for a prospective
// buy. The liquidity parameter grows for markets trading far from 50,
// modeling thinner order flow at the extremes, and the resulting slippage is
// deliberately conservative relative to the exact parimutuel math.
func PreviewImpact(betAmount, startingPrice, totalLiquidity decimal.Decimal, side string) ImpactPreview {
	amount, _ := betAmount.Float64()
	start, _ := startingPrice.Float64()
	liquidity, _ := totalLiquidity.Float64()

	distanceFrom50 := math.Abs(start - 50)
	k := math.Max(30, liquidity*0.8) * (1 + distanceFrom50/200)
	slippage := math.Sqrt(amount/k*start*0.4) * 12

	execPrice := math.Min(95, start+slippage)

	// The posted price moves by 0.9x the slippage in the bet's direction.
	move := slippage * 0.9
	var finalPrice float64
	if side == models.BetSideYes {
		finalPrice = math.Min(95, start+move)
	} else {
		finalPrice = math.Max(5, start-move)
	}

	position := 0.0
	if execPrice > 0 {
		position = amount / (execPrice / 100)
	}

	round2 := func(v float64) decimal.Decimal {
		return decimal.NewFromFloat(v).Round(2)
	}

	return ImpactPreview{
		EstimatedPosition:     round2(position),
		EstimatedAveragePrice: round2(execPrice),
		PriceImpact:           round2(math.Abs(finalPrice - start)),
		EstimatedFinalPrice:   round2(finalPrice),
	}
}
