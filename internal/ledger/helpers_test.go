package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/ledger"
)

var (
	today     = time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func mustFinalize(t *testing.T, draft models.Draft, rates models.RateTable) models.TransactionRecord {
	t.Helper()
	rec, err := ledger.Finalize(draft, rates)
	require.NoError(t, err)
	return rec
}

func sellDraft(eggType models.EggType, unit models.SaleUnit, qty, rate string, date time.Time) models.Draft {
	return models.Draft{
		Type:     models.TransactionSell,
		Date:     date,
		EggType:  eggType,
		Category: models.CategoryRetail,
		Unit:     unit,
		Quantity: qty,
		Rate:     rate,
	}
}

func buyDraft(eggType models.EggType, qty, rate, paid string, date time.Time) models.Draft {
	return models.Draft{
		Type:         models.TransactionBuy,
		Date:         date,
		EggType:      eggType,
		Quantity:     qty,
		Rate:         rate,
		PaidAmount:   paid,
		CustomerName: "Poultry Co",
	}
}

func expenseDraft(amount string, date time.Time) models.Draft {
	return models.Draft{
		Type:        models.TransactionExpense,
		Date:        date,
		Amount:      amount,
		Description: models.ExpenseTransport,
	}
}
