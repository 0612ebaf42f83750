// file: internals/features/finance/invoices/service/invoice_number.go
package service

import (
	"fmt"
	"regexp"
	"strconv"

	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/invoices/model"
)

const (
	invoicePrefix      = "INV"
	FirstInvoiceNumber = "INV000001"
)

var invoiceNumberRe = regexp.MustCompile(`^INV(\d{6,})$`)

// ParseInvoiceSeq returns the numeric part of INV######, ok=false when malformed.
func ParseInvoiceSeq(number string) (int64, bool) {
	m := invoiceNumberRe.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", invoicePrefix, seq)
}

// NextInvoiceNumber is highest well-formed number + 1; INV000001 when none parse.
// Only INV followed by digits is considered, so any number of legacy or
// malformed numbers cannot hide the real maximum.
func NextInvoiceNumber(tx *gorm.DB) (string, error) {
	var numbers []string
	err := tx.Model(&model.InvoiceModel{}).
		Where("SUBSTR(invoice_number, 1, ?) = ?", len(invoicePrefix), invoicePrefix).
		Where("LENGTH(invoice_number) >= ?", len(FirstInvoiceNumber)).
		Where("LTRIM(SUBSTR(invoice_number, ?), ?) = ''", len(invoicePrefix)+1, "0123456789").
		Order("LENGTH(invoice_number) DESC, invoice_number DESC").
		Limit(5).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return "", err
	}
	for _, n := range numbers {
		if seq, ok := ParseInvoiceSeq(n); ok {
			return FormatInvoiceNumber(seq + 1), nil
		}
	}
	return FirstInvoiceNumber, nil
}
