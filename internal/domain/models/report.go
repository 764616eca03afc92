package models

import "time"

// DailyReport is the end-of-day ledger summary stored in MongoDB.
// Monetary values are decimal strings.
type DailyReport struct {
	Date         time.Time         `bson:"date" json:"date"`
	Stock        map[string]string `bson:"stock" json:"stock"`
	Cash         string            `bson:"cash" json:"cash"`
	CustomerDue  string            `bson:"customer_due" json:"customer_due"`
	SupplierDue  string            `bson:"supplier_due" json:"supplier_due"`
	SalesAmount  string            `bson:"sales_amount" json:"sales_amount"`
	Expenses     string            `bson:"expenses" json:"expenses"`
	Profit       string            `bson:"profit" json:"profit"`
	Transactions int               `bson:"transactions" json:"transactions"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
}
