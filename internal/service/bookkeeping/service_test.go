package bookkeeping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/eggledger/internal/auth"
	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/ledger"
	"github.com/mamadbah2/eggledger/internal/repository/memory"
)

var clock = time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC)

type stubMirror struct {
	ids []string
	err error
}

func (m *stubMirror) MirrorTransaction(_ context.Context, rec models.TransactionRecord) error {
	m.ids = append(m.ids, rec.ID)
	return m.err
}

type failingStore struct {
	*memory.Store
}

func (failingStore) InsertTransaction(context.Context, models.TransactionRecord) (models.TransactionRecord, error) {
	return models.TransactionRecord{}, errors.New("network down")
}

func newTestService(t *testing.T) (*Service, *memory.Store, *stubMirror) {
	t.Helper()
	store := memory.New(func() time.Time { return clock })
	mirror := &stubMirror{}

	svc := NewService(Dependencies{
		Transactions: store,
		Settings:     store,
		Scheme:       auth.PlaintextScheme{},
		Tokens:       auth.NewTokenIssuer("test-secret", time.Hour, func() time.Time { return clock }),
		Mirror:       mirror,
		UnitCosts:    models.UnitCosts{models.EggWhite: decimal.RequireFromString("0.5")},
		Location:     time.UTC,
	}, nil)
	svc.now = func() time.Time { return clock }

	ctx := context.Background()
	require.NoError(t, svc.SeedSecrets(ctx, "owner-pass", "shop-pass"))

	rates := models.NewRateTable()
	rates.SetRetail(models.EggWhite, models.UnitDozen, decimal.NewFromInt(10))
	require.NoError(t, svc.UpdateRates(ctx, models.RoleAdmin, rates))

	return svc, store, mirror
}

func TestLogin_SubAdminCannotDelete(t *testing.T) {
	// GIVEN: the subadmin password is entered
	// WHEN: that session tries to delete a record
	// THEN: the delete is rejected and the record survives
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "shop-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSubAdmin, session.Role)
	assert.NotEmpty(t, session.Token)
	assert.False(t, session.Capabilities.DeleteRecords)

	rec, err := svc.Append(ctx, session.Role, models.Draft{Type: models.TransactionExpense, Amount: "10"})
	require.NoError(t, err)

	err = svc.Delete(ctx, session.Role, rec.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	log, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestLogin_Rejections(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "guess")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	session, err := svc.Login(context.Background(), "owner-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.Role)
}

func TestAppend_SellDefaultsAndDashboard(t *testing.T) {
	svc, _, mirror := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Append(ctx, models.RoleSubAdmin, models.Draft{
		Type:     models.TransactionSell,
		EggType:  models.EggWhite,
		Unit:     models.UnitDozen,
		Quantity: "2",
	})
	require.NoError(t, err)
	assert.True(t, rec.Rate.Equal(decimal.NewFromInt(10)), "rate from the table")
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, rec.DueAmount.IsZero())
	assert.Equal(t, "2025-03-10", rec.Date.Format("2006-01-02"), "date defaults to today")
	assert.Equal(t, []string{rec.ID}, mirror.ids)

	admin, err := svc.Dashboard(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, admin.TodayProfit)
	assert.True(t, admin.TodayProfit.Equal(decimal.NewFromInt(8)), "20 - 24*0.5")
	assert.True(t, admin.Stock[models.EggWhite].Equal(decimal.NewFromInt(-24)))
	assert.True(t, admin.Cash.Equal(decimal.NewFromInt(20)))

	sub, err := svc.Dashboard(ctx, models.RoleSubAdmin)
	require.NoError(t, err)
	assert.Nil(t, sub.TodayProfit)
	assert.True(t, sub.ProfitMasked)

	_, err = svc.Dashboard(ctx, models.RoleGuest)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestAppend_SubAdminRateOverride(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	draft := models.Draft{
		Type:     models.TransactionSell,
		EggType:  models.EggWhite,
		Unit:     models.UnitDozen,
		Quantity: "1",
		Rate:     "12",
	}

	_, err := svc.Append(ctx, models.RoleSubAdmin, draft)
	var aErr *auth.AuthorizationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, auth.ActionOverrideRate, aErr.Action)

	draft.Rate = "10.00"
	_, err = svc.Append(ctx, models.RoleSubAdmin, draft)
	assert.NoError(t, err, "matching the default is not an override")

	draft.Rate = "12"
	rec, err := svc.Append(ctx, models.RoleAdmin, draft)
	require.NoError(t, err)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(12)))
}

func TestAppend_GuestAndValidation(t *testing.T) {
	svc, store, mirror := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, models.RoleGuest, models.Draft{Type: models.TransactionExpense, Amount: "10"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Append(ctx, models.RoleAdmin, models.Draft{
		Type:     models.TransactionSell,
		EggType:  models.EggCountry,
		Category: models.CategoryWholesale,
		Quantity: "50",
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	log, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, log)
	assert.Empty(t, mirror.ids)
}

func TestAppend_FailedStoreLeavesSnapshotUntouched(t *testing.T) {
	svc, store, mirror := newTestService(t)
	ctx := context.Background()

	svc.transactions = failingStore{Store: store}
	_, err := svc.Append(ctx, models.RoleAdmin, models.Draft{Type: models.TransactionExpense, Amount: "10"})
	require.Error(t, err)
	assert.Empty(t, mirror.ids)

	svc.transactions = store
	view, err := svc.Dashboard(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, view.Cash.IsZero())
}

func TestAppend_MirrorFailureIsNotFatal(t *testing.T) {
	svc, _, mirror := newTestService(t)
	mirror.err = errors.New("quota exceeded")

	_, err := svc.Append(context.Background(), models.RoleAdmin, models.Draft{Type: models.TransactionExpense, Amount: "10"})
	assert.NoError(t, err)
}

func TestDelete_SnapshotEqualsNeverAdded(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, models.RoleAdmin, models.Draft{
		Type: models.TransactionBuy, EggType: models.EggBrown, Quantity: "100", Rate: "8", PaidAmount: "500", CustomerName: "Poultry Co",
	})
	require.NoError(t, err)
	before, err := svc.Dashboard(ctx, models.RoleAdmin)
	require.NoError(t, err)

	extra, err := svc.Append(ctx, models.RoleAdmin, models.Draft{Type: models.TransactionExpense, Amount: "150"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, models.RoleAdmin, extra.ID))

	after, err := svc.Dashboard(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, before.Cash.Equal(after.Cash))
	assert.True(t, before.SupplierDue.Equal(decimal.NewFromInt(300)))
	assert.True(t, before.SupplierDue.Equal(after.SupplierDue))
	assert.True(t, before.TodayProfit.Equal(*after.TodayProfit))

	assert.ErrorIs(t, svc.Delete(ctx, models.RoleAdmin, extra.ID), ErrTransactionNotFound)
}

func TestHistory_TodaySells(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, models.RoleAdmin, models.Draft{
		Type: models.TransactionSell, EggType: models.EggWhite, Unit: models.UnitDozen, Quantity: "1", Date: clock.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	todaySell, err := svc.Append(ctx, models.RoleAdmin, models.Draft{
		Type: models.TransactionSell, EggType: models.EggWhite, Unit: models.UnitDozen, Quantity: "1",
	})
	require.NoError(t, err)
	_, err = svc.Append(ctx, models.RoleAdmin, models.Draft{Type: models.TransactionExpense, Amount: "5"})
	require.NoError(t, err)

	got, err := svc.History(ctx, models.RoleSubAdmin, ledger.HistoryFilter{Date: ledger.DateToday, Type: ledger.TypeSell})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, todaySell.ID, got[0].ID)

	all, err := svc.History(ctx, models.RoleAdmin, ledger.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.History(ctx, models.RoleGuest, ledger.HistoryFilter{})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestDefaultRate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	price, err := svc.DefaultRate(ctx, models.RoleSubAdmin, models.CategoryRetail, models.EggWhite, models.UnitDozen)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(10)))

	price, err = svc.DefaultRate(ctx, models.RoleSubAdmin, models.CategoryWholesale, models.EggWhite, models.UnitDozen)
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestSettings_RatesAndSecrets(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	replacement := models.NewRateTable()
	replacement.SetWholesale(models.EggBrown, decimal.RequireFromString("0.7"))

	assert.ErrorIs(t, svc.UpdateRates(ctx, models.RoleSubAdmin, replacement), auth.ErrForbidden)
	require.NoError(t, svc.UpdateRates(ctx, models.RoleAdmin, replacement))

	rates, err := svc.Rates(ctx, models.RoleSubAdmin)
	require.NoError(t, err)
	assert.Empty(t, rates.Retail, "replaced wholesale, not merged")
	assert.True(t, rates.Wholesale[models.EggBrown].Equal(decimal.RequireFromString("0.7")))

	bad := models.NewRateTable()
	bad.SetRetail(models.EggWhite, models.SaleUnit("crate"), decimal.NewFromInt(1))
	assert.ErrorIs(t, svc.UpdateRates(ctx, models.RoleAdmin, bad), ledger.ErrValidation)

	require.NoError(t, svc.UpdateAdminPassword(ctx, models.RoleAdmin, "new-owner"))
	assert.ErrorIs(t, svc.UpdateSubAdminPassword(ctx, models.RoleAdmin, ""), ledger.ErrValidation)
	assert.ErrorIs(t, svc.UpdateSubAdminPassword(ctx, models.RoleSubAdmin, "x"), auth.ErrForbidden)

	_, err = svc.Login(ctx, "owner-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	session, err := svc.Login(ctx, "new-owner")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.Role)
	session, err = svc.Login(ctx, "shop-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSubAdmin, session.Role, "subadmin secret untouched")
}

func TestSeedSecrets_KeepsExisting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedSecrets(ctx, "other", "other-shop"))

	session, err := svc.Login(ctx, "owner-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.Role)
}
