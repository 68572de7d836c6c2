// Package penalty prices temperature excursions.
package penalty

import (
	"time"

	"github.com/shopspring/decimal"

	"coldchain/internal/supplychain/models"
)

// AdjustedPrice returns the contract unit price reduced by the temperature
// penalties for the observed extremes. Each configured bound is applied on
// its own; an absent penalty factor counts as zero. Without bounds or without
// readings the unit price is returned unchanged. The result is never
// negative.
func AdjustedPrice(c *models.Contract, observedMin, observedMax *decimal.Decimal) decimal.Decimal {
	price := c.UnitPrice
	if !c.HasTemperatureBounds() || observedMin == nil || observedMax == nil {
		return price
	}

	if c.MinTemperature != nil {
		below := decimal.Max(decimal.Zero, c.MinTemperature.Sub(*observedMin))
		price = price.Sub(below.Mul(factor(c.MinPenaltyFactor)))
	}
	if c.MaxTemperature != nil {
		above := decimal.Max(decimal.Zero, observedMax.Sub(*c.MaxTemperature))
		price = price.Sub(above.Mul(factor(c.MaxPenaltyFactor)))
	}

	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// IsLate reports whether a delivery at deliveredAt missed the contracted
// arrival time. Contracts without an arrival time are never late.
func IsLate(c *models.Contract, deliveredAt time.Time) bool {
	return c.ArrivalDateTime != nil && deliveredAt.After(*c.ArrivalDateTime)
}

func factor(f *decimal.Decimal) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return *f
}
