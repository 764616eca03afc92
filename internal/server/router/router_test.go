package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/eggledger/internal/auth"
	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/repository/memory"
	"github.com/mamadbah2/eggledger/internal/server/handlers"
	"github.com/mamadbah2/eggledger/internal/service/bookkeeping"
)

type stubReports struct {
	calls int
}

func (s *stubReports) SendDailyReport(context.Context) error {
	s.calls++
	return nil
}

type testServer struct {
	engine  *gin.Engine
	store   *memory.Store
	reports *stubReports
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.New(time.Now)
	tokens := auth.NewTokenIssuer("router-secret", time.Hour, time.Now)
	svc := bookkeeping.NewService(bookkeeping.Dependencies{
		Transactions: store,
		Settings:     store,
		Scheme:       auth.PlaintextScheme{},
		Tokens:       tokens,
		UnitCosts:    models.UnitCosts{models.EggWhite: decimal.RequireFromString("0.5")},
		Location:     time.UTC,
	}, nil)
	require.NoError(t, svc.SeedSecrets(context.Background(), "owner-pass", "shop-pass"))

	reports := &stubReports{}
	engine := New(handlers.NewLedgerHandler(svc, reports, nil), tokens, nil, nil)
	return &testServer{engine: engine, store: store, reports: reports}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session bookkeeping.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"password": "shop-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "subadmin", body["role"])
}

func TestGuestIsLimitedToLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/capabilities", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "guest", body["role"])

	for _, path := range []string{"/api/dashboard", "/api/transactions", "/api/settings/rates"} {
		rec := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/dashboard", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Basic abc")
	out := httptest.NewRecorder()
	srv.engine.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestSubAdminSaleFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "owner-pass")
	sub := srv.login(t, "shop-pass")

	rec := srv.do(t, http.MethodPut, "/api/settings/rates", sub, gin.H{"retail": gin.H{"white": gin.H{"dozen": "10"}}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/settings/rates", admin, gin.H{"retail": gin.H{"white": gin.H{"dozen": "10"}}})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/rates/resolve?egg_type=white&unit=dozen", sub, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", decodeBody(t, rec)["rate"])

	rec = srv.do(t, http.MethodPost, "/api/transactions", sub, gin.H{
		"type": "sell", "egg_type": "white", "unit": "dozen", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, "20", created["amount"])
	assert.Equal(t, "20", created["paid_amount"])
	assert.Equal(t, "0", created["due_amount"])

	rec = srv.do(t, http.MethodPost, "/api/transactions", sub, gin.H{
		"type": "sell", "egg_type": "white", "unit": "dozen", "quantity": "1", "rate": "8",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/dashboard", sub, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody(t, rec)
	assert.Equal(t, true, view["profit_masked"])
	assert.Nil(t, view["today_profit"])
	assert.Equal(t, "20", view["today_sales"])

	rec = srv.do(t, http.MethodGet, "/api/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeBody(t, rec)
	assert.Equal(t, false, view["profit_masked"])
	assert.Equal(t, "8", view["today_profit"])
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "owner-pass")

	rec := srv.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"type": "expense", "amount": "-5", "description": "fuel",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", decodeBody(t, rec)["field"])

	rec = srv.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"type": "expense", "amount": "5", "date": "10/03/2025",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date", decodeBody(t, rec)["field"])

	rec = srv.do(t, http.MethodGet, "/api/transactions?type=gift", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryAndDelete(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "owner-pass")
	sub := srv.login(t, "shop-pass")

	rec := srv.do(t, http.MethodPost, "/api/transactions", admin, gin.H{
		"type": "expense", "amount": "150", "description": "transport",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = srv.do(t, http.MethodGet, "/api/transactions?date=today&type=expense", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["count"])

	rec = srv.do(t, http.MethodDelete, "/api/transactions/"+id, sub, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/transactions/"+id, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/transactions/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/transactions", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["count"])
}

func TestPasswordRotation(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "owner-pass")

	rec := srv.do(t, http.MethodPut, "/api/settings/subadmin-password", admin, gin.H{"password": "counter-2"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"password": "shop-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	srv.login(t, "counter-2")
}

func TestRunDailyReport(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "owner-pass")
	sub := srv.login(t, "shop-pass")

	rec := srv.do(t, http.MethodPost, "/api/reports/daily", sub, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, srv.reports.calls)

	rec = srv.do(t, http.MethodPost, "/api/reports/daily", admin, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, srv.reports.calls)
}
