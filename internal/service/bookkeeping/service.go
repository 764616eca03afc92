package bookkeeping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/auth"
	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/ledger"
)

// ErrTransactionNotFound is returned when deleting an unknown record.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionStore owns the append/delete-only transaction log.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error)
	ListTransactions(ctx context.Context) ([]models.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// SettingsStore owns the rate table and the two secrets.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveRates(ctx context.Context, rates models.RateTable) error
	SetAdminPassword(ctx context.Context, stored string) error
	SetSubAdminPassword(ctx context.Context, stored string) error
}

// Mirror receives a copy of every confirmed append.
type Mirror interface {
	MirrorTransaction(ctx context.Context, rec models.TransactionRecord) error
}

// TokenIssuer signs session tokens for a role.
type TokenIssuer interface {
	Issue(role models.Role) (string, error)
}

// Dependencies groups the collaborators of Service. Mirror is optional.
type Dependencies struct {
	Transactions TransactionStore
	Settings     SettingsStore
	Scheme       auth.Scheme
	Tokens       TokenIssuer
	Mirror       Mirror
	UnitCosts    models.UnitCosts
	Location     *time.Location
}

// Session is the outcome of a successful login.
type Session struct {
	Role         models.Role         `json:"role"`
	Token        string              `json:"token"`
	Capabilities models.Capabilities `json:"capabilities"`
}

// Service gates and orchestrates every ledger operation.
type Service struct {
	transactions TransactionStore
	settings     SettingsStore
	scheme       auth.Scheme
	tokens       TokenIssuer
	mirror       Mirror
	costs        models.UnitCosts
	location     *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires a bookkeeping service.
func NewService(deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	scheme := deps.Scheme
	if scheme == nil {
		scheme = auth.PlaintextScheme{}
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	return &Service{
		transactions: deps.Transactions,
		settings:     deps.Settings,
		scheme:       scheme,
		tokens:       deps.Tokens,
		mirror:       deps.Mirror,
		costs:        deps.UnitCosts,
		location:     location,
		logger:       logger,
		now:          time.Now,
	}
}

// Today is the current time in the business timezone.
func (s *Service) Today() time.Time {
	return s.now().In(s.location)
}

// Login resolves password to a role and issues a session token.
func (s *Service) Login(ctx context.Context, password string) (Session, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("load settings: %w", err)
	}

	role, err := auth.Authenticate(s.scheme.Verifier(settings.AdminPassword, settings.SubAdminPassword), password)
	if err != nil {
		s.logger.Info("login rejected")
		return Session{}, err
	}

	token, err := s.tokens.Issue(role)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("login accepted", zap.String("role", string(role)))
	return Session{Role: role, Token: token, Capabilities: auth.CapabilitiesFor(role)}, nil
}

// SnapshotAt folds the whole log with day as "today". It returns the
// snapshot and the number of records folded.
func (s *Service) SnapshotAt(ctx context.Context, day time.Time) (models.LedgerSnapshot, int, error) {
	log, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return models.LedgerSnapshot{}, 0, fmt.Errorf("load transactions: %w", err)
	}
	return ledger.Aggregate(log, day, s.costs), len(log), nil
}

// Dashboard returns the current snapshot as role may see it.
func (s *Service) Dashboard(ctx context.Context, role models.Role) (models.DashboardView, error) {
	if err := auth.Authorize(role, auth.ActionViewDashboard); err != nil {
		return models.DashboardView{}, err
	}
	snap, _, err := s.SnapshotAt(ctx, s.Today())
	if err != nil {
		return models.DashboardView{}, err
	}
	return auth.MaskSnapshot(role, snap)
}

// History returns the log narrowed by filter, most recent first.
func (s *Service) History(ctx context.Context, role models.Role, filter ledger.HistoryFilter) ([]models.TransactionRecord, error) {
	if err := auth.Authorize(role, auth.ActionViewHistory); err != nil {
		return nil, err
	}
	log, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return ledger.FilterHistory(log, filter, s.Today()), nil
}

// DefaultRate returns the suggested sale price, nil when none is configured.
func (s *Service) DefaultRate(ctx context.Context, role models.Role, category models.SaleCategory, eggType models.EggType, unit models.SaleUnit) (*decimal.Decimal, error) {
	if err := auth.Authorize(role, auth.ActionCreateRecord); err != nil {
		return nil, err
	}
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	price, ok := ledger.ResolveRate(settings.Rates, category, eggType, unit)
	if !ok {
		return nil, nil
	}
	return &price, nil
}

// Append finalizes draft and stores it. Nothing is stored when validation or
// authorization fails, and the snapshot only changes once the store confirms.
func (s *Service) Append(ctx context.Context, role models.Role, draft models.Draft) (models.TransactionRecord, error) {
	if err := auth.Authorize(role, auth.ActionCreateRecord); err != nil {
		return models.TransactionRecord{}, err
	}

	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("load settings: %w", err)
	}

	if draft.Date.IsZero() {
		draft.Date = s.Today()
	}

	if draft.Type == models.TransactionSell && !auth.Can(role, auth.ActionOverrideRate) {
		if err := checkRateUnchanged(role, draft, settings.Rates); err != nil {
			return models.TransactionRecord{}, err
		}
	}

	rec, err := ledger.Finalize(draft, settings.Rates)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	stored, err := s.transactions.InsertTransaction(ctx, rec)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("store transaction: %w", err)
	}

	s.logger.Info("transaction recorded",
		zap.String("id", stored.ID),
		zap.String("type", string(stored.Type)),
		zap.String("amount", stored.Amount.String()),
		zap.String("due", stored.DueAmount.String()),
		zap.String("role", string(role)))

	if s.mirror != nil {
		if err := s.mirror.MirrorTransaction(ctx, stored); err != nil {
			s.logger.Warn("mirror transaction failed", zap.String("id", stored.ID), zap.Error(err))
		}
	}

	return stored, nil
}

// checkRateUnchanged rejects a sale rate that differs from the configured
// default. A blank rate is always fine; Finalize fills it in.
func checkRateUnchanged(role models.Role, draft models.Draft, rates models.RateTable) error {
	raw := strings.TrimSpace(draft.Rate)
	if raw == "" {
		return nil
	}
	category := draft.Category
	if category == "" {
		category = models.CategoryRetail
	}
	resolved, ok := ledger.ResolveRate(rates, category, draft.EggType, ledger.EffectiveUnit(category, draft.Unit))
	entered, err := decimal.NewFromString(raw)
	if err != nil {
		// Let Finalize report the malformed number.
		return nil
	}
	if ok && resolved.Equal(entered) {
		return nil
	}
	return &auth.AuthorizationError{Role: role, Action: auth.ActionOverrideRate}
}

// Delete removes a record. The next snapshot simply omits it.
func (s *Service) Delete(ctx context.Context, role models.Role, id string) error {
	if err := auth.Authorize(role, auth.ActionDeleteRecord); err != nil {
		return err
	}
	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.Info("transaction deleted", zap.String("id", id))
	return nil
}

// Rates returns the configured rate table.
func (s *Service) Rates(ctx context.Context, role models.Role) (models.RateTable, error) {
	if err := auth.Authorize(role, auth.ActionViewDashboard); err != nil {
		return models.RateTable{}, err
	}
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return models.RateTable{}, fmt.Errorf("load settings: %w", err)
	}
	return settings.Rates, nil
}

// UpdateRates replaces the whole rate table.
func (s *Service) UpdateRates(ctx context.Context, role models.Role, rates models.RateTable) error {
	if err := auth.Authorize(role, auth.ActionEditSettings); err != nil {
		return err
	}
	if err := validateRates(rates); err != nil {
		return err
	}
	if err := s.settings.SaveRates(ctx, rates); err != nil {
		return fmt.Errorf("save rates: %w", err)
	}
	s.logger.Info("rate table updated")
	return nil
}

func validateRates(rates models.RateTable) error {
	for eggType, byUnit := range rates.Retail {
		if !eggType.Valid() {
			return &ledger.ValidationError{Field: "rates.retail", Reason: fmt.Sprintf("unknown egg type %q", eggType)}
		}
		for unit, price := range byUnit {
			if !unit.Valid() {
				return &ledger.ValidationError{Field: "rates.retail", Reason: fmt.Sprintf("unknown unit %q", unit)}
			}
			if !price.IsPositive() {
				return &ledger.ValidationError{Field: "rates.retail", Reason: fmt.Sprintf("%s/%s must be positive", eggType, unit)}
			}
		}
	}
	for eggType, price := range rates.Wholesale {
		if !eggType.Valid() {
			return &ledger.ValidationError{Field: "rates.wholesale", Reason: fmt.Sprintf("unknown egg type %q", eggType)}
		}
		if !price.IsPositive() {
			return &ledger.ValidationError{Field: "rates.wholesale", Reason: fmt.Sprintf("%s must be positive", eggType)}
		}
	}
	return nil
}

// UpdateAdminPassword replaces the admin secret only.
func (s *Service) UpdateAdminPassword(ctx context.Context, role models.Role, password string) error {
	return s.updateSecret(ctx, role, "admin_password", password, s.settings.SetAdminPassword)
}

// UpdateSubAdminPassword replaces the subadmin secret only.
func (s *Service) UpdateSubAdminPassword(ctx context.Context, role models.Role, password string) error {
	return s.updateSecret(ctx, role, "subadmin_password", password, s.settings.SetSubAdminPassword)
}

func (s *Service) updateSecret(ctx context.Context, role models.Role, field, password string, save func(context.Context, string) error) error {
	if err := auth.Authorize(role, auth.ActionEditSettings); err != nil {
		return err
	}
	if password == "" {
		return &ledger.ValidationError{Field: field, Reason: "must not be empty"}
	}
	stored, err := s.scheme.Encode(password)
	if err != nil {
		return err
	}
	if err := save(ctx, stored); err != nil {
		return fmt.Errorf("save %s: %w", field, err)
	}
	s.logger.Info("secret updated", zap.String("field", field))
	return nil
}

// SeedSecrets stores the given passwords for any secret that is still unset.
func (s *Service) SeedSecrets(ctx context.Context, adminPassword, subAdminPassword string) error {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.AdminPassword == "" && adminPassword != "" {
		if err := s.seed(ctx, adminPassword, s.settings.SetAdminPassword); err != nil {
			return err
		}
		s.logger.Info("admin password seeded")
	}
	if settings.SubAdminPassword == "" && subAdminPassword != "" {
		if err := s.seed(ctx, subAdminPassword, s.settings.SetSubAdminPassword); err != nil {
			return err
		}
		s.logger.Info("subadmin password seeded")
	}
	return nil
}

func (s *Service) seed(ctx context.Context, password string, save func(context.Context, string) error) error {
	stored, err := s.scheme.Encode(password)
	if err != nil {
		return err
	}
	return save(ctx, stored)
}
