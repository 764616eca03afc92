package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// Aggregate folds the full log into a snapshot. The fold is order independent;
// only the today figures look at each record's date. Missing numbers count as
// zero and unknown record types are skipped, so one bad record never blocks
// the rest. Stock and cash are not clamped.
//
// The snapshot is rebuilt from scratch on every call; logs are expected to be
// small enough for a linear pass per change.
func Aggregate(log []models.TransactionRecord, today time.Time, costs models.UnitCosts) models.LedgerSnapshot {
	snap := models.LedgerSnapshot{
		Stock: make(map[models.EggType]decimal.Decimal, len(models.EggTypes())),
	}
	for _, eggType := range models.EggTypes() {
		snap.Stock[eggType] = decimal.Zero
	}

	for _, rec := range log {
		isToday := SameDay(rec.Date, today)

		switch rec.Type {
		case models.TransactionBuy:
			addStock(snap.Stock, rec.EggType, rec.QuantityInPieces)
			snap.Cash = snap.Cash.Sub(rec.PaidAmount)
			snap.SupplierDue = snap.SupplierDue.Add(rec.DueAmount)
		case models.TransactionSell:
			addStock(snap.Stock, rec.EggType, rec.QuantityInPieces.Neg())
			snap.Cash = snap.Cash.Add(rec.PaidAmount)
			snap.CustomerDue = snap.CustomerDue.Add(rec.DueAmount)
			if isToday {
				cost := rec.QuantityInPieces.Mul(costs.Cost(rec.EggType))
				snap.TodaySales = snap.TodaySales.Add(rec.Amount)
				snap.TodayProfit = snap.TodayProfit.Add(rec.Amount.Sub(cost))
			}
		case models.TransactionExpense:
			snap.Cash = snap.Cash.Sub(rec.Amount)
			if isToday {
				snap.TodayExpense = snap.TodayExpense.Add(rec.Amount)
				snap.TodayProfit = snap.TodayProfit.Sub(rec.Amount)
			}
		}
	}

	return snap
}

func addStock(stock map[models.EggType]decimal.Decimal, eggType models.EggType, delta decimal.Decimal) {
	if eggType == "" {
		return
	}
	stock[eggType] = stock[eggType].Add(delta)
}
