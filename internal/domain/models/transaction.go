package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates the three kinds of business events.
type TransactionType string

const (
	TransactionSell    TransactionType = "sell"
	TransactionBuy     TransactionType = "buy"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionSell, TransactionBuy, TransactionExpense:
		return true
	}
	return false
}

// EggType is the product category being traded.
type EggType string

const (
	EggWhite   EggType = "white"
	EggBrown   EggType = "brown"
	EggCountry EggType = "country"
)

// EggTypes lists the product categories in display order.
func EggTypes() []EggType {
	return []EggType{EggWhite, EggBrown, EggCountry}
}

// Valid reports whether e is a known egg type.
func (e EggType) Valid() bool {
	switch e {
	case EggWhite, EggBrown, EggCountry:
		return true
	}
	return false
}

// SaleCategory selects the pricing mode of a sale.
type SaleCategory string

const (
	CategoryRetail    SaleCategory = "retail"
	CategoryWholesale SaleCategory = "wholesale"
)

// Valid reports whether c is a known sale category.
func (c SaleCategory) Valid() bool {
	return c == CategoryRetail || c == CategoryWholesale
}

// Fixed expense categories offered by the entry form. Descriptions are free
// text, so an expense may carry any other value as well.
const (
	ExpenseTransport = "transport"
	ExpensePackaging = "packaging"
	ExpenseWages     = "wages"
	ExpenseUtilities = "utilities"
)

// ExpenseCategories lists the fixed expense descriptions.
func ExpenseCategories() []string {
	return []string{ExpenseTransport, ExpensePackaging, ExpenseWages, ExpenseUtilities}
}

// TransactionRecord is one finalized event of the log. Amount, PaidAmount and
// DueAmount are fixed at creation and never recomputed.
type TransactionRecord struct {
	ID        string          `json:"id"`
	Type      TransactionType `json:"type"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`

	EggType          EggType         `json:"egg_type,omitempty"`
	Category         SaleCategory    `json:"category,omitempty"`
	Unit             SaleUnit        `json:"unit,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	QuantityInPieces decimal.Decimal `json:"quantity_in_pieces"`
	Rate             decimal.Decimal `json:"rate"`
	Discount         decimal.Decimal `json:"discount"`
	CustomerName     string          `json:"customer_name,omitempty"`

	Description string `json:"description,omitempty"`

	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	DueAmount  decimal.Decimal `json:"due_amount"`
}

// Draft is the raw entry-form input for a record before finalization.
// Numeric fields carry the text the operator typed; empty means "not supplied".
type Draft struct {
	Type         TransactionType `json:"type"`
	Date         time.Time       `json:"date"`
	EggType      EggType         `json:"egg_type"`
	Category     SaleCategory    `json:"category"`
	Unit         SaleUnit        `json:"unit"`
	Quantity     string          `json:"quantity"`
	Rate         string          `json:"rate"`
	Discount     string          `json:"discount"`
	PaidAmount   string          `json:"paid_amount"`
	Amount       string          `json:"amount"`
	CustomerName string          `json:"customer_name"`
	Description  string          `json:"description"`
}
