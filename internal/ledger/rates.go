package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// ResolveRate returns the default unit price for a sale. Wholesale prices are
// always per piece whatever unit the caller passes. The boolean is false when
// no rate is configured, which callers must treat as "enter manually", not zero.
//
// The entry form calls it again whenever category, egg type, unit or the rate
// table change; it only suggests a value and never overrides an edited one.
func ResolveRate(rates models.RateTable, category models.SaleCategory, eggType models.EggType, unit models.SaleUnit) (decimal.Decimal, bool) {
	switch category {
	case models.CategoryWholesale:
		price, ok := rates.Wholesale[eggType]
		return price, ok
	case models.CategoryRetail:
		byUnit, ok := rates.Retail[eggType]
		if !ok {
			return decimal.Zero, false
		}
		price, ok := byUnit[unit]
		return price, ok
	default:
		return decimal.Zero, false
	}
}

// EffectiveUnit is the unit a sale is recorded in: wholesale is always piece.
func EffectiveUnit(category models.SaleCategory, unit models.SaleUnit) models.SaleUnit {
	if category == models.CategoryWholesale {
		return models.UnitPiece
	}
	return unit
}
