// Package render turns a receipt into a downloadable document.
package render

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Line struct {
	Name   string
	Amount decimal.Decimal
}

// Document is everything printed on a receipt.
type Document struct {
	ReceiptNumber    string
	GeneratedAt      time.Time
	PaymentReference string
	Mode             string
	TransactionID    string
	PaidAt           time.Time
	Amount           decimal.Decimal
	Currency         string

	InvoiceNumber  string
	AcademicYear   string
	Semester       int
	InvoiceTotal   decimal.Decimal
	InvoicePaid    decimal.Decimal
	InvoiceBalance decimal.Decimal

	StudentName string
	USN         string
	Department  string

	Lines []Line
}

type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
	ContentType() string
	Ext() string
}
