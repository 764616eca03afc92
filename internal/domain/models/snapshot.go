package models

import "github.com/shopspring/decimal"

// LedgerSnapshot is the state derived from the full transaction log.
type LedgerSnapshot struct {
	Stock        map[EggType]decimal.Decimal `json:"stock"`
	Cash         decimal.Decimal             `json:"cash"`
	CustomerDue  decimal.Decimal             `json:"customer_due"`
	SupplierDue  decimal.Decimal             `json:"supplier_due"`
	TodaySales   decimal.Decimal             `json:"today_sales"`
	TodayExpense decimal.Decimal             `json:"today_expense"`
	TodayProfit  decimal.Decimal             `json:"today_profit"`
}

// DashboardView is the snapshot as shown to a role. TodayProfit is nil when
// the role may not see it.
type DashboardView struct {
	Stock        map[EggType]decimal.Decimal `json:"stock"`
	Cash         decimal.Decimal             `json:"cash"`
	CustomerDue  decimal.Decimal             `json:"customer_due"`
	SupplierDue  decimal.Decimal             `json:"supplier_due"`
	TodaySales   decimal.Decimal             `json:"today_sales"`
	TodayExpense decimal.Decimal             `json:"today_expense"`
	TodayProfit  *decimal.Decimal            `json:"today_profit"`
	ProfitMasked bool                        `json:"profit_masked"`
}
