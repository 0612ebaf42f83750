// file: internals/features/finance/invoices/service/invoice_status.go
package service

import (
	"github.com/shopspring/decimal"

	"collegefee_backend/internals/features/finance/invoices/model"
)

// DeriveStatus applies the balance rule. Overdue and cancelled are set by
// the sweep and by admins, never derived here.
func DeriveStatus(paid, balance decimal.Decimal) model.InvoiceStatus {
	switch {
	case !balance.IsPositive():
		return model.InvoiceStatusPaid
	case paid.IsPositive():
		return model.InvoiceStatusPartial
	default:
		return model.InvoiceStatusPending
	}
}
