// file: internals/features/finance/reports/service/report_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	payModel "collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
)

var openStatuses = []invoiceModel.InvoiceStatus{
	invoiceModel.InvoiceStatusPending,
	invoiceModel.InvoiceStatusPartial,
	invoiceModel.InvoiceStatusOverdue,
}

/* ===================== Outstanding ===================== */

type OutstandingFilter struct {
	Department   string
	Semester     *int
	AcademicYear string
	OverdueOnly  bool
	Offset       int
	Limit        int
}

type OutstandingRow struct {
	InvoiceID     uuid.UUID                  `json:"invoice_id"`
	InvoiceNumber string                     `json:"invoice_number"`
	StudentID     uuid.UUID                  `json:"student_id"`
	StudentName   string                     `json:"student_name"`
	StudentUSN    string                     `json:"student_usn"`
	Department    string                     `json:"department"`
	Semester      int                        `json:"semester"`
	AcademicYear  string                     `json:"academic_year"`
	Total         decimal.Decimal            `json:"total_amount"`
	Paid          decimal.Decimal            `json:"paid_amount"`
	Balance       decimal.Decimal            `json:"balance_amount"`
	Status        invoiceModel.InvoiceStatus `json:"status"`
	DueDate       time.Time                  `json:"due_date"`
}

type OutstandingTotals struct {
	Invoices int64           `json:"invoices"`
	Balance  decimal.Decimal `json:"balance_amount"`
}

func outstandingQuery(db *gorm.DB, f OutstandingFilter) *gorm.DB {
	q := db.Table("invoices AS i").
		Joins("JOIN students AS s ON s.student_id = i.invoice_student_id").
		Where("i.invoice_status IN ?", openStatuses).
		Where("i.invoice_balance_amount > 0")
	if f.OverdueOnly {
		q = q.Where("i.invoice_status = ?", invoiceModel.InvoiceStatusOverdue)
	}
	if f.Department != "" {
		q = q.Where("s.student_department = ?", f.Department)
	}
	if f.Semester != nil {
		q = q.Where("i.invoice_semester = ?", *f.Semester)
	}
	if f.AcademicYear != "" {
		q = q.Where("i.invoice_academic_year = ?", f.AcademicYear)
	}
	return q
}

// Outstanding lists open invoices with a positive balance, oldest due date first.
func Outstanding(ctx context.Context, db *gorm.DB, f OutstandingFilter) ([]OutstandingRow, OutstandingTotals, error) {
	var totals OutstandingTotals
	if err := outstandingQuery(db.WithContext(ctx), f).
		Select("COUNT(*) AS invoices, COALESCE(SUM(i.invoice_balance_amount), 0) AS balance").
		Scan(&totals).Error; err != nil {
		return nil, totals, helper.Internal(err, "sum outstanding")
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	rows := []OutstandingRow{}
	if err := outstandingQuery(db.WithContext(ctx), f).
		Select(`i.invoice_id AS invoice_id, i.invoice_number AS invoice_number,
			s.student_id AS student_id, s.student_name AS student_name, s.student_usn AS student_usn,
			s.student_department AS department, i.invoice_semester AS semester,
			i.invoice_academic_year AS academic_year, i.invoice_total_amount AS total,
			i.invoice_paid_amount AS paid, i.invoice_balance_amount AS balance,
			i.invoice_status AS status, i.invoice_due_date AS due_date`).
		Order("i.invoice_due_date ASC, i.invoice_number ASC").
		Offset(f.Offset).Limit(f.Limit).
		Scan(&rows).Error; err != nil {
		return nil, totals, helper.Internal(err, "list outstanding")
	}
	return rows, totals, nil
}

/* ===================== Collections ===================== */

type CollectionFilter struct {
	Department string
	From       *time.Time
	To         *time.Time
}

type ModeTotal struct {
	Mode   payModel.PaymentMode `json:"mode"`
	Count  int64                `json:"count"`
	Amount decimal.Decimal      `json:"amount"`
}

type CollectionSummary struct {
	ByMode   []ModeTotal     `json:"by_mode"`
	Count    int64           `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
	Refunded decimal.Decimal `json:"refunded_amount"`
	Net      decimal.Decimal `json:"net_amount"`
}

func paymentsQuery(db *gorm.DB, f CollectionFilter) *gorm.DB {
	q := db.Table("payments AS p")
	if f.Department != "" {
		q = q.Joins("JOIN students AS s ON s.student_id = p.payment_student_id").
			Where("s.student_department = ?", f.Department)
	}
	if f.From != nil {
		q = q.Where("p.payment_paid_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("p.payment_paid_at < ?", *f.To)
	}
	return q
}

// Collections totals money received by mode. Refunded payments count as
// collected and their refunds are reported separately.
func Collections(ctx context.Context, db *gorm.DB, f CollectionFilter) (*CollectionSummary, error) {
	out := &CollectionSummary{ByMode: []ModeTotal{}}
	if err := paymentsQuery(db.WithContext(ctx), f).
		Select("p.payment_mode AS mode, COUNT(*) AS count, COALESCE(SUM(p.payment_amount), 0) AS amount").
		Where("p.payment_status IN ?", []payModel.PaymentStatus{payModel.PaymentStatusSuccess, payModel.PaymentStatusRefunded}).
		Group("p.payment_mode").
		Order("p.payment_mode ASC").
		Scan(&out.ByMode).Error; err != nil {
		return nil, helper.Internal(err, "sum collections")
	}
	for _, m := range out.ByMode {
		out.Count += m.Count
		out.Amount = out.Amount.Add(m.Amount)
	}

	var refunded struct{ Amount decimal.Decimal }
	if err := paymentsQuery(db.WithContext(ctx), f).
		Select("COALESCE(SUM(p.payment_refunded_amount), 0) AS amount").
		Where("p.payment_status = ?", payModel.PaymentStatusRefunded).
		Scan(&refunded).Error; err != nil {
		return nil, helper.Internal(err, "sum refunds")
	}
	out.Refunded = refunded.Amount
	out.Net = out.Amount.Sub(out.Refunded)
	return out, nil
}

/* ===================== Department ===================== */

type StatusTotal struct {
	Status  invoiceModel.InvoiceStatus `json:"status"`
	Count   int64                      `json:"count"`
	Billed  decimal.Decimal            `json:"billed_amount"`
	Balance decimal.Decimal            `json:"balance_amount"`
}

type DepartmentSummary struct {
	Department   string          `json:"department"`
	AcademicYear string          `json:"academic_year,omitempty"`
	Students     int64           `json:"students"`
	Invoices     int64           `json:"invoices"`
	Billed       decimal.Decimal `json:"billed_amount"`
	Collected    decimal.Decimal `json:"collected_amount"`
	Outstanding  decimal.Decimal `json:"outstanding_amount"`
	ByStatus     []StatusTotal   `json:"by_status"`
}

// Department compares billed, collected and outstanding amounts for one
// department. Cancelled invoices are left out of the totals.
func Department(ctx context.Context, db *gorm.DB, department, academicYear string) (*DepartmentSummary, error) {
	if department == "" {
		return nil, helper.Validation("department is required")
	}
	out := &DepartmentSummary{Department: department, AcademicYear: academicYear, ByStatus: []StatusTotal{}}

	if err := db.WithContext(ctx).Table("students").
		Where("student_department = ?", department).
		Count(&out.Students).Error; err != nil {
		return nil, helper.Internal(err, "count students")
	}

	q := db.WithContext(ctx).Table("invoices AS i").
		Joins("JOIN students AS s ON s.student_id = i.invoice_student_id").
		Where("s.student_department = ?", department)
	if academicYear != "" {
		q = q.Where("i.invoice_academic_year = ?", academicYear)
	}
	if err := q.Select(`i.invoice_status AS status, COUNT(*) AS count,
			COALESCE(SUM(i.invoice_total_amount), 0) AS billed,
			COALESCE(SUM(i.invoice_balance_amount), 0) AS balance`).
		Group("i.invoice_status").
		Order("i.invoice_status ASC").
		Scan(&out.ByStatus).Error; err != nil {
		return nil, helper.Internal(err, "department invoices")
	}

	for _, st := range out.ByStatus {
		if st.Status == invoiceModel.InvoiceStatusCancelled {
			continue
		}
		out.Invoices += st.Count
		out.Billed = out.Billed.Add(st.Billed)
		out.Outstanding = out.Outstanding.Add(st.Balance)
	}
	out.Collected = out.Billed.Sub(out.Outstanding)
	return out, nil
}
