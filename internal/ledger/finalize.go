package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// Finalize validates a draft and computes its quantity, amount, paid and due
// fields. No partial record is returned on error. ID and CreatedAt are left
// for the store to assign.
func Finalize(draft models.Draft, rates models.RateTable) (models.TransactionRecord, error) {
	if draft.Date.IsZero() {
		return models.TransactionRecord{}, invalid("date", "is required")
	}

	record := models.TransactionRecord{
		Type: draft.Type,
		Date: CalendarDate(draft.Date),
	}

	var err error
	switch draft.Type {
	case models.TransactionExpense:
		err = finalizeExpense(&record, draft)
	case models.TransactionBuy:
		err = finalizeBuy(&record, draft)
	case models.TransactionSell:
		err = finalizeSell(&record, draft, rates)
	default:
		err = invalid("type", "must be one of sell, buy, expense")
	}
	if err != nil {
		return models.TransactionRecord{}, err
	}

	return record, nil
}

func finalizeExpense(record *models.TransactionRecord, draft models.Draft) error {
	amount, supplied, err := parseNumber("amount", draft.Amount)
	if err != nil {
		return err
	}
	if !supplied || !amount.IsPositive() {
		return invalid("amount", "must be a positive number")
	}

	record.Description = strings.TrimSpace(draft.Description)
	record.Amount = amount
	record.PaidAmount = amount
	record.DueAmount = decimal.Zero
	record.QuantityInPieces = decimal.Zero
	return nil
}

func finalizeBuy(record *models.TransactionRecord, draft models.Draft) error {
	if !draft.EggType.Valid() {
		return invalid("egg_type", "unknown egg type")
	}
	quantity, err := requirePositive("quantity", draft.Quantity)
	if err != nil {
		return err
	}
	rate, err := requirePositive("rate", draft.Rate)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(draft.CustomerName)
	if name == "" {
		return invalid("customer_name", "supplier name is required")
	}

	record.EggType = draft.EggType
	record.Unit = models.UnitPiece
	record.Quantity = quantity
	record.QuantityInPieces = quantity
	record.Rate = rate
	record.CustomerName = name
	record.Amount = quantity.Mul(rate)

	return settle(record, draft.PaidAmount)
}

func finalizeSell(record *models.TransactionRecord, draft models.Draft, rates models.RateTable) error {
	if !draft.EggType.Valid() {
		return invalid("egg_type", "unknown egg type")
	}

	category := draft.Category
	if category == "" {
		category = models.CategoryRetail
	}
	if !category.Valid() {
		return invalid("category", "must be retail or wholesale")
	}

	unit := EffectiveUnit(category, draft.Unit)
	multiplier, ok := unit.Multiplier()
	if !ok {
		return invalid("unit", "unknown sale unit")
	}

	quantity, err := requirePositive("quantity", draft.Quantity)
	if err != nil {
		return err
	}

	var rate decimal.Decimal
	if strings.TrimSpace(draft.Rate) == "" {
		resolved, ok := ResolveRate(rates, category, draft.EggType, unit)
		if !ok {
			return invalid("rate", "no default rate configured, enter it manually")
		}
		rate = resolved
	} else {
		rate, err = requirePositive("rate", draft.Rate)
		if err != nil {
			return err
		}
	}
	if !rate.IsPositive() {
		return invalid("rate", "must be a positive number")
	}

	name := strings.TrimSpace(draft.CustomerName)
	if category == models.CategoryWholesale && name == "" {
		return invalid("customer_name", "buyer name is required for wholesale")
	}

	subtotal := quantity.Mul(rate)
	discount, _, err := parseNumber("discount", draft.Discount)
	if err != nil {
		return err
	}
	if discount.IsNegative() {
		return invalid("discount", "must not be negative")
	}
	if discount.GreaterThan(subtotal) {
		return invalid("discount", "exceeds subtotal")
	}

	record.EggType = draft.EggType
	record.Category = category
	record.Unit = unit
	record.Quantity = quantity
	record.QuantityInPieces = quantity.Mul(decimal.NewFromInt(multiplier))
	record.Rate = rate
	record.Discount = discount
	record.CustomerName = name
	record.Amount = subtotal.Sub(discount)

	return settle(record, draft.PaidAmount)
}

// settle applies the paid amount, defaulting to a full settlement. Overpayment
// leaves a negative due, which is an advance, not an error.
func settle(record *models.TransactionRecord, rawPaid string) error {
	paid, supplied, err := parseNumber("paid_amount", rawPaid)
	if err != nil {
		return err
	}
	if !supplied {
		paid = record.Amount
	}
	if paid.IsNegative() {
		return invalid("paid_amount", "must not be negative")
	}

	record.PaidAmount = paid
	record.DueAmount = record.Amount.Sub(paid)
	return nil
}

func requirePositive(field, raw string) (decimal.Decimal, error) {
	value, supplied, err := parseNumber(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !supplied {
		return decimal.Zero, invalid(field, "is required")
	}
	if !value.IsPositive() {
		return decimal.Zero, invalid(field, "must be a positive number")
	}
	return value, nil
}

// parseNumber parses form text. Empty input is "not supplied" and yields zero.
func parseNumber(field, raw string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, true, invalid(field, "must be numeric")
	}
	return value, true, nil
}

// CalendarDate truncates t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day, each read in
// its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
