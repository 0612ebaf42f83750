package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	studentModel "collegefee_backend/internals/features/users/students/model"
)

// Dec parses a literal amount and panics on typos.
func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type StudentOpts struct {
	Department    string
	AdmissionMode string
	Semester      int
	Phone         string
}

var seq int

// Student inserts a user plus profile.
func Student(t testing.TB, db *gorm.DB, o StudentOpts) *studentModel.StudentModel {
	t.Helper()
	seq++
	if o.Department == "" {
		o.Department = "CSE"
	}
	if o.AdmissionMode == "" {
		o.AdmissionMode = "KCET"
	}
	if o.Semester == 0 {
		o.Semester = 1
	}
	u := &studentModel.UserModel{
		UserEmail:    fmt.Sprintf("student%d-%s@college.test", seq, uuid.NewString()[:8]),
		UserFullName: fmt.Sprintf("Student %d", seq),
		UserRole:     "student",
	}
	if o.Phone != "" {
		u.UserPhone = &o.Phone
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	s := &studentModel.StudentModel{
		StudentUserID:        u.UserID,
		StudentName:          u.UserFullName,
		StudentUSN:           fmt.Sprintf("1XX%s%04d", o.Department, seq),
		StudentDepartment:    o.Department,
		StudentAdmissionMode: o.AdmissionMode,
		StudentSemester:      o.Semester,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	s.User = u
	return s
}

// Line is one invoice component for Invoice.
type Line struct {
	Name   string
	Amount string
}

// Invoice inserts an open invoice whose components keep the given order.
func Invoice(t testing.TB, db *gorm.DB, studentID uuid.UUID, lines ...Line) *invoiceModel.InvoiceModel {
	t.Helper()
	seq++
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(Dec(l.Amount))
	}
	inv := &invoiceModel.InvoiceModel{
		InvoiceNumber:       fmt.Sprintf("INV%06d", seq),
		InvoiceStudentID:    studentID,
		InvoiceAcademicYear: "2025-26",
		InvoiceSemester:     seq,
		InvoiceType:         invoiceModel.InvoiceTypeAnnual,
		InvoiceTotalAmount:  total,
		InvoicePaidAmount:   decimal.Zero,
		InvoiceBalance:      total,
		InvoiceStatus:       invoiceModel.InvoiceStatusPending,
		InvoiceDueDate:      time.Now().UTC().AddDate(0, 1, 0).Truncate(24 * time.Hour),
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	for i, l := range lines {
		c := invoiceModel.InvoiceComponentModel{
			InvoiceComponentInvoiceID: inv.InvoiceID,
			InvoiceComponentName:      l.Name,
			InvoiceComponentAmount:    Dec(l.Amount),
			InvoiceComponentPaid:      decimal.Zero,
			InvoiceComponentBalance:   Dec(l.Amount),
			InvoiceComponentPosition:  i,
		}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("create invoice component: %v", err)
		}
		inv.Components = append(inv.Components, c)
	}
	return inv
}

// ReloadInvoice reads the invoice and its components back.
func ReloadInvoice(t testing.TB, db *gorm.DB, id uuid.UUID) *invoiceModel.InvoiceModel {
	t.Helper()
	var inv invoiceModel.InvoiceModel
	err := db.Preload("Components", func(q *gorm.DB) *gorm.DB {
		return q.Order("invoice_component_position ASC")
	}).Where("invoice_id = ?", id).Take(&inv).Error
	if err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	return &inv
}
