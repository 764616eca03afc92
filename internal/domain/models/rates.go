package models

import "github.com/shopspring/decimal"

// RateTable holds the configured default prices. Retail prices are per unit
// purchased in that unit; wholesale prices are per piece. Missing keys are unset.
type RateTable struct {
	Retail    map[EggType]map[SaleUnit]decimal.Decimal `json:"retail"`
	Wholesale map[EggType]decimal.Decimal              `json:"wholesale"`
}

// NewRateTable returns a table with every entry unset.
func NewRateTable() RateTable {
	return RateTable{
		Retail:    make(map[EggType]map[SaleUnit]decimal.Decimal),
		Wholesale: make(map[EggType]decimal.Decimal),
	}
}

// SetRetail sets the retail price of eggType sold in unit.
func (t *RateTable) SetRetail(eggType EggType, unit SaleUnit, price decimal.Decimal) {
	if t.Retail == nil {
		t.Retail = make(map[EggType]map[SaleUnit]decimal.Decimal)
	}
	if t.Retail[eggType] == nil {
		t.Retail[eggType] = make(map[SaleUnit]decimal.Decimal)
	}
	t.Retail[eggType][unit] = price
}

// SetWholesale sets the per-piece wholesale price of eggType.
func (t *RateTable) SetWholesale(eggType EggType, price decimal.Decimal) {
	if t.Wholesale == nil {
		t.Wholesale = make(map[EggType]decimal.Decimal)
	}
	t.Wholesale[eggType] = price
}

// UnitCosts is the fixed per-piece cost of each egg type used for profit.
// It is configured, not derived from purchase prices in the log.
type UnitCosts map[EggType]decimal.Decimal

// Cost returns the configured cost of eggType, zero when unset.
func (c UnitCosts) Cost(eggType EggType) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	return c[eggType]
}
