package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/eggledger/internal/config"
	"github.com/mamadbah2/eggledger/internal/domain/models"
)

const (
	dateFormat        = "2006-01-02"
	timestampFormat   = "2006-01-02 15:04:05"
	transactionsRange = "Transactions!A:P"
)

// RowWriter appends one row to a sheet range.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository implements RowWriter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// Mirror copies confirmed transactions into a spreadsheet for the owner's bookkeeping.
type Mirror struct {
	writer RowWriter
}

// NewMirror wraps a row writer.
func NewMirror(writer RowWriter) *Mirror {
	return &Mirror{writer: writer}
}

// MirrorTransaction appends rec as one row of the Transactions sheet.
func (m *Mirror) MirrorTransaction(ctx context.Context, rec models.TransactionRecord) error {
	return m.writer.WriteRow(ctx, transactionsRange, TransactionRow(rec))
}

// TransactionRow lays out a record in the sheet's column order.
func TransactionRow(rec models.TransactionRecord) []interface{} {
	return []interface{}{
		rec.ID,
		rec.CreatedAt.Format(timestampFormat),
		rec.Date.Format(dateFormat),
		string(rec.Type),
		string(rec.EggType),
		string(rec.Category),
		string(rec.Unit),
		rec.Quantity.String(),
		rec.QuantityInPieces.String(),
		rec.Rate.String(),
		rec.Discount.String(),
		rec.Amount.String(),
		rec.PaidAmount.String(),
		rec.DueAmount.String(),
		rec.CustomerName,
		rec.Description,
	}
}
