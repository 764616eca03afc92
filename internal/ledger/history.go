package ledger

import (
	"fmt"
	"time"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// DateScope narrows history by business date.
type DateScope string

const (
	DateToday DateScope = "today"
	DateAll   DateScope = "all"
)

// TypeScope narrows history by record type.
type TypeScope string

const (
	TypeAll     TypeScope = "all"
	TypeSell    TypeScope = TypeScope(models.TransactionSell)
	TypeBuy     TypeScope = TypeScope(models.TransactionBuy)
	TypeExpense TypeScope = TypeScope(models.TransactionExpense)
)

// HistoryFilter is a date scope ANDed with a type scope.
type HistoryFilter struct {
	Date DateScope
	Type TypeScope
}

// ParseHistoryFilter reads query values; empty values mean "all".
func ParseHistoryFilter(date, typ string) (HistoryFilter, error) {
	f := HistoryFilter{Date: DateAll, Type: TypeAll}

	switch DateScope(date) {
	case "", DateAll:
	case DateToday:
		f.Date = DateToday
	default:
		return f, invalid("date", fmt.Sprintf("unknown scope %q", date))
	}

	switch TypeScope(typ) {
	case "", TypeAll:
	case TypeSell, TypeBuy, TypeExpense:
		f.Type = TypeScope(typ)
	default:
		return f, invalid("type", fmt.Sprintf("unknown scope %q", typ))
	}

	return f, nil
}

// FilterHistory keeps the records matching f, preserving log order.
func FilterHistory(log []models.TransactionRecord, f HistoryFilter, today time.Time) []models.TransactionRecord {
	out := make([]models.TransactionRecord, 0, len(log))
	for _, rec := range log {
		if f.Date == DateToday && !SameDay(rec.Date, today) {
			continue
		}
		if f.Type != "" && f.Type != TypeAll && models.TransactionType(f.Type) != rec.Type {
			continue
		}
		out = append(out, rec)
	}
	return out
}
