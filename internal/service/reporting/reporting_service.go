package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/ledger"
)

const dateLayout = "2006-01-02"

// SnapshotSource folds the current log for a given business day.
type SnapshotSource interface {
	SnapshotAt(ctx context.Context, day time.Time) (models.LedgerSnapshot, int, error)
}

// ReportStore persists daily reports.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Service builds end-of-day summaries from the ledger snapshot.
type Service struct {
	source SnapshotSource
	store  ReportStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(source SnapshotSource, store ReportStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, store: store, logger: logger, now: time.Now}
}

// GenerateDailyReport snapshots the ledger for day and stores the result.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	snap, count, err := s.source.SnapshotAt(ctx, day)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("snapshot ledger: %w", err)
	}

	stock := make(map[string]string, len(snap.Stock))
	for eggType, qty := range snap.Stock {
		stock[string(eggType)] = qty.String()
	}

	report := models.DailyReport{
		Date:         ledger.CalendarDate(day),
		Stock:        stock,
		Cash:         snap.Cash.StringFixed(2),
		CustomerDue:  snap.CustomerDue.StringFixed(2),
		SupplierDue:  snap.SupplierDue.StringFixed(2),
		SalesAmount:  snap.TodaySales.StringFixed(2),
		Expenses:     snap.TodayExpense.StringFixed(2),
		Profit:       snap.TodayProfit.StringFixed(2),
		Transactions: count,
		CreatedAt:    s.now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveDailyReport(ctx, report); err != nil {
			return models.DailyReport{}, fmt.Errorf("save daily report: %w", err)
		}
	}

	s.logger.Info("daily report generated",
		zap.String("date", report.Date.Format(dateLayout)),
		zap.String("sales", report.SalesAmount),
		zap.String("profit", report.Profit))
	return report, nil
}

// FormatReport renders a report as a chat message.
func FormatReport(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report %s\n", report.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Sales: %s\n", report.SalesAmount)
	fmt.Fprintf(&b, "Expenses: %s\n", report.Expenses)
	fmt.Fprintf(&b, "Profit: %s\n", report.Profit)
	fmt.Fprintf(&b, "Cash: %s\n", report.Cash)
	fmt.Fprintf(&b, "Receivables: %s | Payables: %s\n", report.CustomerDue, report.SupplierDue)
	b.WriteString("Stock:")
	for _, eggType := range models.EggTypes() {
		qty, ok := report.Stock[string(eggType)]
		if !ok {
			qty = decimal.Zero.String()
		}
		fmt.Fprintf(&b, " %s=%s", eggType, qty)
	}
	return b.String()
}
