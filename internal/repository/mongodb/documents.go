package mongodb

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// transactionDocument is the stored shape of a record. Numbers are written as
// decimal strings; reads also accept numeric BSON types written by other tools.
type transactionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Type      string             `bson:"type"`
	Date      time.Time          `bson:"date"`
	CreatedAt time.Time          `bson:"created_at"`

	EggType      string `bson:"egg_type"`
	Category     string `bson:"category"`
	Unit         string `bson:"unit"`
	CustomerName string `bson:"customer_name"`
	Description  string `bson:"description"`

	Quantity         bson.RawValue `bson:"quantity"`
	QuantityInPieces bson.RawValue `bson:"quantity_in_pieces"`
	Rate             bson.RawValue `bson:"rate"`
	Discount         bson.RawValue `bson:"discount"`
	Amount           bson.RawValue `bson:"amount"`
	PaidAmount       bson.RawValue `bson:"paid_amount"`
	DueAmount        bson.RawValue `bson:"due_amount"`
}

func toTransactionDocument(rec models.TransactionRecord) transactionDocument {
	return transactionDocument{
		Type:             string(rec.Type),
		Date:             rec.Date,
		CreatedAt:        rec.CreatedAt,
		EggType:          string(rec.EggType),
		Category:         string(rec.Category),
		Unit:             string(rec.Unit),
		CustomerName:     rec.CustomerName,
		Description:      rec.Description,
		Quantity:         decimalValue(rec.Quantity),
		QuantityInPieces: decimalValue(rec.QuantityInPieces),
		Rate:             decimalValue(rec.Rate),
		Discount:         decimalValue(rec.Discount),
		Amount:           decimalValue(rec.Amount),
		PaidAmount:       decimalValue(rec.PaidAmount),
		DueAmount:        decimalValue(rec.DueAmount),
	}
}

// toRecord converts the document, zeroing numbers that cannot be read and
// reporting which fields those were.
func (d transactionDocument) toRecord() (models.TransactionRecord, []string) {
	var skewed []string
	read := func(field string, v bson.RawValue) decimal.Decimal {
		value, ok := decimalFromRaw(v)
		if !ok {
			skewed = append(skewed, field)
		}
		return value
	}

	rec := models.TransactionRecord{
		Type:             models.TransactionType(d.Type),
		Date:             d.Date.UTC(),
		CreatedAt:        d.CreatedAt.UTC(),
		EggType:          models.EggType(d.EggType),
		Category:         models.SaleCategory(d.Category),
		Unit:             models.SaleUnit(d.Unit),
		CustomerName:     d.CustomerName,
		Description:      d.Description,
		Quantity:         read("quantity", d.Quantity),
		QuantityInPieces: read("quantity_in_pieces", d.QuantityInPieces),
		Rate:             read("rate", d.Rate),
		Discount:         read("discount", d.Discount),
		Amount:           read("amount", d.Amount),
		PaidAmount:       read("paid_amount", d.PaidAmount),
		DueAmount:        read("due_amount", d.DueAmount),
	}
	if !d.ID.IsZero() {
		rec.ID = d.ID.Hex()
	}
	return rec, skewed
}

func decimalValue(d decimal.Decimal) bson.RawValue {
	t, data, err := bson.MarshalValue(d.String())
	if err != nil {
		return bson.RawValue{}
	}
	return bson.RawValue{Type: t, Value: data}
}

// decimalFromRaw reads a stored number. Missing and null values are zero and
// valid; anything unreadable is zero and invalid.
func decimalFromRaw(v bson.RawValue) (decimal.Decimal, bool) {
	switch v.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return decimal.Zero, true
	case bson.TypeString:
		s, ok := v.StringValueOK()
		if !ok || s == "" {
			return decimal.Zero, ok
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case bson.TypeDouble:
		f, ok := v.DoubleOK()
		if !ok {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(f), true
	case bson.TypeInt32:
		i, ok := v.Int32OK()
		if !ok {
			return decimal.Zero, false
		}
		return decimal.NewFromInt32(i), true
	case bson.TypeInt64:
		i, ok := v.Int64OK()
		if !ok {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(i), true
	case bson.TypeDecimal128:
		d128, ok := v.Decimal128OK()
		if !ok {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

type settingsDocument struct {
	ID               string        `bson:"_id"`
	Rates            ratesDocument `bson:"rates"`
	AdminPassword    string        `bson:"admin_password"`
	SubAdminPassword string        `bson:"subadmin_password"`
}

type ratesDocument struct {
	Retail    map[string]map[string]string `bson:"retail"`
	Wholesale map[string]string            `bson:"wholesale"`
}

func toRatesDocument(rates models.RateTable) ratesDocument {
	doc := ratesDocument{
		Retail:    make(map[string]map[string]string, len(rates.Retail)),
		Wholesale: make(map[string]string, len(rates.Wholesale)),
	}
	for eggType, byUnit := range rates.Retail {
		units := make(map[string]string, len(byUnit))
		for unit, price := range byUnit {
			units[string(unit)] = price.String()
		}
		doc.Retail[string(eggType)] = units
	}
	for eggType, price := range rates.Wholesale {
		doc.Wholesale[string(eggType)] = price.String()
	}
	return doc
}

// toSettings drops rate entries that do not parse; they read as unset.
func (d settingsDocument) toSettings() models.Settings {
	rates := models.NewRateTable()
	for eggType, byUnit := range d.Rates.Retail {
		for unit, raw := range byUnit {
			if price, err := decimal.NewFromString(raw); err == nil {
				rates.SetRetail(models.EggType(eggType), models.SaleUnit(unit), price)
			}
		}
	}
	for eggType, raw := range d.Rates.Wholesale {
		if price, err := decimal.NewFromString(raw); err == nil {
			rates.SetWholesale(models.EggType(eggType), price)
		}
	}
	return models.Settings{
		Rates:            rates,
		AdminPassword:    d.AdminPassword,
		SubAdminPassword: d.SubAdminPassword,
	}
}
