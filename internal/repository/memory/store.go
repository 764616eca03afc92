// Package memory is an in-process transaction log and settings store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// ErrNotFound is returned when deleting an unknown record.
var ErrNotFound = models.ErrRecordNotFound

// Store keeps records in arrival order. Listing returns newest first.
type Store struct {
	mu       sync.RWMutex
	records  []models.TransactionRecord
	settings models.Settings
	reports  []models.DailyReport
	now      func() time.Time
	newID    func() string
}

// New returns an empty store. now may be nil.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		settings: models.Settings{Rates: models.NewRateTable()},
		now:      now,
		newID:    uuid.NewString,
	}
}

// InsertTransaction assigns an id and creation time and appends rec.
func (s *Store) InsertTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.TransactionRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.newID()
	rec.CreatedAt = s.now().UTC()
	s.records = append(s.records, rec)
	return rec, nil
}

// ListTransactions returns every record, most recent first.
func (s *Store) ListTransactions(ctx context.Context) ([]models.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TransactionRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// DeleteTransaction removes the record with id.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// LoadSettings returns a copy of the settings document.
func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return models.Settings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.settings
	out.Rates = copyRates(s.settings.Rates)
	return out, nil
}

// SaveRates replaces the whole rate table.
func (s *Store) SaveRates(ctx context.Context, rates models.RateTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Rates = copyRates(rates)
	return nil
}

// SetAdminPassword updates only the admin secret.
func (s *Store) SetAdminPassword(ctx context.Context, stored string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.AdminPassword = stored
	return nil
}

// SetSubAdminPassword updates only the subadmin secret.
func (s *Store) SetSubAdminPassword(ctx context.Context, stored string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.SubAdminPassword = stored
	return nil
}

// SaveDailyReport records a report.
func (s *Store) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	return nil
}

// DailyReports returns the saved reports in insertion order.
func (s *Store) DailyReports() []models.DailyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.DailyReport(nil), s.reports...)
}

func copyRates(in models.RateTable) models.RateTable {
	out := models.NewRateTable()
	for eggType, byUnit := range in.Retail {
		for unit, price := range byUnit {
			out.SetRetail(eggType, unit, price)
		}
	}
	for eggType, price := range in.Wholesale {
		out.SetWholesale(eggType, price)
	}
	return out
}
