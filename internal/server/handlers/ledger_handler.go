package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/auth"
	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/ledger"
	"github.com/mamadbah2/eggledger/internal/service/bookkeeping"
)

const dateLayout = "2006-01-02"

// Bookkeeper is the set of operations the HTTP layer can perform.
type Bookkeeper interface {
	Login(ctx context.Context, password string) (bookkeeping.Session, error)
	Dashboard(ctx context.Context, role models.Role) (models.DashboardView, error)
	History(ctx context.Context, role models.Role, filter ledger.HistoryFilter) ([]models.TransactionRecord, error)
	DefaultRate(ctx context.Context, role models.Role, category models.SaleCategory, eggType models.EggType, unit models.SaleUnit) (*decimal.Decimal, error)
	Append(ctx context.Context, role models.Role, draft models.Draft) (models.TransactionRecord, error)
	Delete(ctx context.Context, role models.Role, id string) error
	Rates(ctx context.Context, role models.Role) (models.RateTable, error)
	UpdateRates(ctx context.Context, role models.Role, rates models.RateTable) error
	UpdateAdminPassword(ctx context.Context, role models.Role, password string) error
	UpdateSubAdminPassword(ctx context.Context, role models.Role, password string) error
}

// ReportRunner generates and delivers the daily report on demand.
type ReportRunner interface {
	SendDailyReport(ctx context.Context) error
}

// LedgerHandler serves the bookkeeping API.
type LedgerHandler struct {
	svc     Bookkeeper
	reports ReportRunner
	logger  *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter. reports may be nil.
func NewLedgerHandler(svc Bookkeeper, reports ReportRunner, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, reports: reports, logger: logger}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

// formValue accepts either a JSON string or a JSON number and keeps the text.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	*v = formValue(b)
	return nil
}

type draftRequest struct {
	Type         string    `json:"type" binding:"required"`
	Date         string    `json:"date"`
	EggType      string    `json:"egg_type"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	Quantity     formValue `json:"quantity"`
	Rate         formValue `json:"rate"`
	Discount     formValue `json:"discount"`
	PaidAmount   formValue `json:"paid_amount"`
	Amount       formValue `json:"amount"`
	CustomerName string    `json:"customer_name"`
	Description  string    `json:"description"`
}

func (r draftRequest) toDraft() (models.Draft, error) {
	draft := models.Draft{
		Type:         models.TransactionType(r.Type),
		EggType:      models.EggType(r.EggType),
		Category:     models.SaleCategory(r.Category),
		Unit:         models.SaleUnit(r.Unit),
		Quantity:     string(r.Quantity),
		Rate:         string(r.Rate),
		Discount:     string(r.Discount),
		PaidAmount:   string(r.PaidAmount),
		Amount:       string(r.Amount),
		CustomerName: r.CustomerName,
		Description:  r.Description,
	}
	if d := strings.TrimSpace(r.Date); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			return models.Draft{}, &ledger.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		draft.Date = parsed
	}
	return draft, nil
}

// Login exchanges a password for a session token.
func (h *LedgerHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Capabilities describes what the caller's role may do.
func (h *LedgerHandler) Capabilities(c *gin.Context) {
	role := RoleFrom(c)
	c.JSON(http.StatusOK, gin.H{"role": role, "capabilities": auth.CapabilitiesFor(role)})
}

// Dashboard returns the masked snapshot.
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	view, err := h.svc.Dashboard(c.Request.Context(), RoleFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListTransactions returns the filtered history.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	filter, err := ledger.ParseHistoryFilter(c.Query("date"), c.Query("type"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	records, err := h.svc.History(c.Request.Context(), RoleFrom(c), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": records, "count": len(records)})
}

// CreateTransaction finalizes and stores a draft.
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transaction payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	rec, err := h.svc.Append(c.Request.Context(), RoleFrom(c), draft)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// DeleteTransaction removes a record by id.
func (h *LedgerHandler) DeleteTransaction(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), RoleFrom(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResolveRate returns the default price for the sale parameters.
func (h *LedgerHandler) ResolveRate(c *gin.Context) {
	category := models.SaleCategory(c.DefaultQuery("category", string(models.CategoryRetail)))
	eggType := models.EggType(c.Query("egg_type"))
	unit := models.SaleUnit(c.DefaultQuery("unit", string(models.UnitPiece)))

	price, err := h.svc.DefaultRate(c.Request.Context(), RoleFrom(c), category, eggType, unit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"egg_type": eggType,
		"unit":     ledger.EffectiveUnit(category, unit),
		"rate":     price,
	})
}

// GetRates returns the configured rate table.
func (h *LedgerHandler) GetRates(c *gin.Context) {
	rates, err := h.svc.Rates(c.Request.Context(), RoleFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// PutRates replaces the rate table.
func (h *LedgerHandler) PutRates(c *gin.Context) {
	var rates models.RateTable
	if err := c.ShouldBindJSON(&rates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate table"})
		return
	}
	if err := h.svc.UpdateRates(c.Request.Context(), RoleFrom(c), rates); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PutAdminPassword replaces the admin secret.
func (h *LedgerHandler) PutAdminPassword(c *gin.Context) {
	h.putPassword(c, h.svc.UpdateAdminPassword)
}

// PutSubAdminPassword replaces the subadmin secret.
func (h *LedgerHandler) PutSubAdminPassword(c *gin.Context) {
	h.putPassword(c, h.svc.UpdateSubAdminPassword)
}

func (h *LedgerHandler) putPassword(c *gin.Context, update func(context.Context, models.Role, string) error) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if err := update(c.Request.Context(), RoleFrom(c), req.Password); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RunDailyReport triggers the daily report immediately.
func (h *LedgerHandler) RunDailyReport(c *gin.Context) {
	if err := auth.Authorize(RoleFrom(c), auth.ActionRunReport); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reporting disabled"})
		return
	}
	if err := h.reports.SendDailyReport(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusAccepted)
}
