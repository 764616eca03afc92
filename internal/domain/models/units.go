package models

// SaleUnit identifies the denomination a sale quantity is entered in.
type SaleUnit string

const (
	UnitPiece    SaleUnit = "piece"
	UnitFourPack SaleUnit = "four_pack"
	UnitDozen    SaleUnit = "dozen"
	UnitCase     SaleUnit = "case"
	UnitHundred  SaleUnit = "hundred"
)

// unitMultipliers maps each sale unit to the number of pieces it holds.
var unitMultipliers = map[SaleUnit]int64{
	UnitPiece:    1,
	UnitFourPack: 4,
	UnitDozen:    12,
	UnitCase:     30,
	UnitHundred:  100,
}

// SaleUnits lists the supported units in display order.
func SaleUnits() []SaleUnit {
	return []SaleUnit{UnitPiece, UnitFourPack, UnitDozen, UnitCase, UnitHundred}
}

// Multiplier returns the piece count of one unit and whether the unit is known.
func (u SaleUnit) Multiplier() (int64, bool) {
	m, ok := unitMultipliers[u]
	return m, ok
}

// Valid reports whether u is part of the unit table.
func (u SaleUnit) Valid() bool {
	_, ok := unitMultipliers[u]
	return ok
}
