// file: internals/features/finance/invoices/service/invoice_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collegefee_backend/internals/features/finance/invoices/model"
	paymentModel "collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
)

type InvoiceLine struct {
	Name   string
	Amount decimal.Decimal
}

type GenerateInput struct {
	StudentID    uuid.UUID
	AcademicYear string
	Semester     int
	InvoiceType  string
	AssignmentID *uuid.UUID
	Lines        []InvoiceLine
	DueDate      *time.Time
	Now          time.Time
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sumLines(lines []InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total.Round(2)
}

func buildComponents(invoiceID uuid.UUID, lines []InvoiceLine) []model.InvoiceComponentModel {
	out := make([]model.InvoiceComponentModel, 0, len(lines))
	for i, l := range lines {
		amt := l.Amount.Round(2)
		out = append(out, model.InvoiceComponentModel{
			InvoiceComponentInvoiceID: invoiceID,
			InvoiceComponentName:      l.Name,
			InvoiceComponentAmount:    amt,
			InvoiceComponentPaid:      decimal.Zero,
			InvoiceComponentBalance:   amt,
			InvoiceComponentPosition:  i,
		})
	}
	return out
}

/* ===================== Generation ===================== */

// Generate creates the invoice for (student, academic year, semester) or, when
// one exists without payments, replaces its components and totals.
// Must run inside the caller's transaction.
func Generate(tx *gorm.DB, in GenerateInput) (*model.InvoiceModel, error) {
	if in.StudentID == uuid.Nil || strings.TrimSpace(in.AcademicYear) == "" {
		return nil, helper.Validation("student and academic_year are required")
	}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.Name) == "" {
			return nil, helper.Validation("invoice line name is required")
		}
		if l.Amount.IsNegative() {
			return nil, helper.Validation("invoice line %q has a negative amount", l.Name)
		}
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	due := dateOnly(in.Now)
	if in.DueDate != nil && !in.DueDate.IsZero() {
		due = dateOnly(*in.DueDate)
	}
	total := sumLines(in.Lines)

	var existing model.InvoiceModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("invoice_student_id = ? AND invoice_academic_year = ? AND invoice_semester = ?",
			in.StudentID, in.AcademicYear, in.Semester).
		Take(&existing).Error
	switch {
	case err == nil:
		return replaceInvoice(tx, &existing, in, total, due)
	case !helper.IsNotFound(err):
		return nil, helper.Internal(err, "load existing invoice")
	}

	inv := &model.InvoiceModel{
		InvoiceStudentID:    in.StudentID,
		InvoiceAcademicYear: in.AcademicYear,
		InvoiceSemester:     in.Semester,
		InvoiceAssignmentID: in.AssignmentID,
		InvoiceType:         in.InvoiceType,
		InvoiceTotalAmount:  total,
		InvoicePaidAmount:   decimal.Zero,
		InvoiceBalance:      total,
		InvoiceStatus:       DeriveStatus(decimal.Zero, total),
		InvoiceDueDate:      due,
	}
	if err := createWithNumber(tx, inv); err != nil {
		return nil, err
	}

	comps := buildComponents(inv.InvoiceID, in.Lines)
	if len(comps) > 0 {
		if err := tx.Create(&comps).Error; err != nil {
			return nil, helper.Internal(err, "create invoice components")
		}
	}
	inv.Components = comps
	return inv, nil
}

// createWithNumber retries on a number collision with a concurrent generator.
func createWithNumber(tx *gorm.DB, inv *model.InvoiceModel) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		lastErr = tx.Transaction(func(stx *gorm.DB) error {
			number, err := NextInvoiceNumber(stx)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number
			return stx.Create(inv).Error
		})
		if lastErr == nil {
			return nil
		}
		if !helper.IsUniqueViolation(lastErr) {
			return helper.Internal(lastErr, "create invoice")
		}
		inv.InvoiceID = uuid.Nil
	}
	return helper.Internal(lastErr, "allocate invoice number")
}

func replaceInvoice(tx *gorm.DB, inv *model.InvoiceModel, in GenerateInput, total decimal.Decimal, due time.Time) (*model.InvoiceModel, error) {
	if inv.InvoicePaidAmount.IsPositive() {
		return nil, helper.Duplicate("invoice %s already has recorded payments", inv.InvoiceNumber).
			WithData("invoice_id", inv.InvoiceID)
	}
	// open sessions may carry allocations against the current components
	var pending int64
	if err := tx.Model(&paymentModel.PaymentModel{}).
		Where("payment_invoice_id = ? AND payment_status = ?", inv.InvoiceID, paymentModel.PaymentStatusPending).
		Count(&pending).Error; err != nil {
		return nil, helper.Internal(err, "count pending payments")
	}
	if pending > 0 {
		return nil, helper.Duplicate("invoice %s has %d payment session(s) in progress", inv.InvoiceNumber, pending).
			WithData("invoice_id", inv.InvoiceID)
	}
	if err := tx.Where("invoice_component_invoice_id = ?", inv.InvoiceID).
		Delete(&model.InvoiceComponentModel{}).Error; err != nil {
		return nil, helper.Internal(err, "clear invoice components")
	}
	comps := buildComponents(inv.InvoiceID, in.Lines)
	if len(comps) > 0 {
		if err := tx.Create(&comps).Error; err != nil {
			return nil, helper.Internal(err, "create invoice components")
		}
	}

	inv.InvoiceType = in.InvoiceType
	if in.AssignmentID != nil {
		inv.InvoiceAssignmentID = in.AssignmentID
	}
	inv.InvoiceTotalAmount = total
	inv.InvoiceBalance = total
	inv.InvoiceStatus = DeriveStatus(inv.InvoicePaidAmount, total)
	inv.InvoiceDueDate = due
	if err := tx.Model(&model.InvoiceModel{}).Where("invoice_id = ?", inv.InvoiceID).Updates(map[string]any{
		"invoice_type":           inv.InvoiceType,
		"invoice_assignment_id":  inv.InvoiceAssignmentID,
		"invoice_total_amount":   total,
		"invoice_balance_amount": total,
		"invoice_status":         inv.InvoiceStatus,
		"invoice_due_date":       due,
	}).Error; err != nil {
		return nil, helper.Internal(err, "update invoice")
	}
	inv.Components = comps
	return inv, nil
}

/* ===================== Custom fee structures ===================== */

type CustomStructureInput struct {
	StudentID    uuid.UUID
	AcademicYear string
	Lines        []model.CustomFeeLine
	CreatedBy    *uuid.UUID
}

// SaveCustomStructure upserts the single custom structure of a student.
func SaveCustomStructure(ctx context.Context, db *gorm.DB, in CustomStructureInput) (*model.CustomFeeStructureModel, error) {
	if strings.TrimSpace(in.AcademicYear) == "" {
		return nil, helper.Validation("academic_year is required")
	}
	if len(in.Lines) == 0 {
		return nil, helper.Validation("custom fee structure needs at least one component")
	}
	seen := map[string]bool{}
	total := decimal.Zero
	lines := make([]model.CustomFeeLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return nil, helper.Validation("component name is required")
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, helper.Validation("component %q listed twice", name)
		}
		seen[key] = true
		if l.Amount.IsNegative() {
			return nil, helper.Validation("component %q has a negative amount", name)
		}
		amt := l.Amount.Round(2)
		total = total.Add(amt)
		lines = append(lines, model.CustomFeeLine{Name: name, Amount: amt})
	}

	var out model.CustomFeeStructureModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("custom_fee_student_id = ?", in.StudentID).Take(&out).Error
		if err != nil && !helper.IsNotFound(err) {
			return helper.Internal(err, "load custom structure")
		}
		out.CustomFeeStudentID = in.StudentID
		out.CustomFeeAcademicYear = in.AcademicYear
		out.CustomFeeLines = datatypesLines(lines)
		out.CustomFeeTotalAmount = total
		if in.CreatedBy != nil {
			out.CustomFeeCreatedBy = in.CreatedBy
		}
		if err := tx.Save(&out).Error; err != nil {
			return helper.Internal(err, "save custom structure")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func GetCustomStructure(ctx context.Context, db *gorm.DB, studentID uuid.UUID) (*model.CustomFeeStructureModel, error) {
	var out model.CustomFeeStructureModel
	err := db.WithContext(ctx).Where("custom_fee_student_id = ?", studentID).Take(&out).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("custom fee structure not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load custom structure")
	}
	return &out, nil
}

// GenerateFromCustom invoices the student's custom structure; total equals the structure total.
func GenerateFromCustom(tx *gorm.DB, s *model.CustomFeeStructureModel, semester int, due *time.Time, now time.Time) (*model.InvoiceModel, error) {
	var lines []InvoiceLine
	for _, l := range s.CustomFeeLines.Data() {
		lines = append(lines, InvoiceLine{Name: l.Name, Amount: l.Amount})
	}
	return Generate(tx, GenerateInput{
		StudentID:    s.CustomFeeStudentID,
		AcademicYear: s.CustomFeeAcademicYear,
		Semester:     semester,
		InvoiceType:  model.InvoiceTypeCustom,
		Lines:        lines,
		DueDate:      due,
		Now:          now,
	})
}

/* ===================== Money movement ===================== */

// ApplyPayment moves amount from balance to paid in a single UPDATE.
func ApplyPayment(tx *gorm.DB, invoiceID uuid.UUID, amount decimal.Decimal) error {
	res := tx.Model(&model.InvoiceModel{}).Where("invoice_id = ?", invoiceID).Updates(map[string]any{
		"invoice_paid_amount":    gorm.Expr("invoice_paid_amount + ?", amount),
		"invoice_balance_amount": gorm.Expr("invoice_balance_amount - ?", amount),
		"invoice_status": gorm.Expr("CASE WHEN invoice_balance_amount - ? <= 0 THEN ? ELSE ? END",
			amount, model.InvoiceStatusPaid, model.InvoiceStatusPartial),
	})
	if res.Error != nil {
		return helper.Internal(res.Error, "apply payment to invoice")
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("invoice not found")
	}
	return nil
}

// ApplyRefund reverses ApplyPayment for amount and re-derives the status.
func ApplyRefund(tx *gorm.DB, invoiceID uuid.UUID, amount decimal.Decimal) error {
	res := tx.Model(&model.InvoiceModel{}).Where("invoice_id = ?", invoiceID).Updates(map[string]any{
		"invoice_paid_amount":    gorm.Expr("invoice_paid_amount - ?", amount),
		"invoice_balance_amount": gorm.Expr("invoice_balance_amount + ?", amount),
		"invoice_status": gorm.Expr("CASE WHEN invoice_balance_amount + ? <= 0 THEN ? WHEN invoice_paid_amount - ? > 0 THEN ? ELSE ? END",
			amount, model.InvoiceStatusPaid, amount, model.InvoiceStatusPartial, model.InvoiceStatusPending),
	})
	if res.Error != nil {
		return helper.Internal(res.Error, "apply refund to invoice")
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("invoice not found")
	}
	return nil
}

// ApplyComponentPayment consumes amount from one component's balance.
func ApplyComponentPayment(tx *gorm.DB, componentID uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.InvoiceComponentModel{}).
		Where("invoice_component_id = ?", componentID).
		Updates(map[string]any{
			"invoice_component_paid_amount":    gorm.Expr("invoice_component_paid_amount + ?", amount),
			"invoice_component_balance_amount": gorm.Expr("invoice_component_balance_amount - ?", amount),
		}).Error
}

// LockComponents loads the invoice's components in allocation order.
func LockComponents(tx *gorm.DB, invoiceID uuid.UUID) ([]model.InvoiceComponentModel, error) {
	var rows []model.InvoiceComponentModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("invoice_component_invoice_id = ?", invoiceID).
		Order("invoice_component_position ASC, invoice_component_id ASC").
		Find(&rows).Error
	return rows, err
}

/* ===================== Sweeps & admin changes ===================== */

// MarkOverdue flips open invoices whose due date has passed.
func MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Where("invoice_status IN ? AND invoice_due_date < ?",
			[]model.InvoiceStatus{model.InvoiceStatusPending, model.InvoiceStatusPartial}, dateOnly(now)).
		Update("invoice_status", model.InvoiceStatusOverdue)
	if res.Error != nil {
		return 0, helper.Internal(res.Error, "mark overdue")
	}
	return res.RowsAffected, nil
}

type PatchInput struct {
	Status  *model.InvoiceStatus
	DueDate *time.Time
}

// PatchInvoice lets admins set the externally managed states and the due date.
func PatchInvoice(ctx context.Context, db *gorm.DB, id uuid.UUID, in PatchInput) (*model.InvoiceModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.InvoiceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("invoice_id = ?", id).Take(&inv).Error; err != nil {
			if helper.IsNotFound(err) {
				return helper.NotFound("invoice not found")
			}
			return helper.Internal(err, "load invoice")
		}
		updates := map[string]any{}
		if in.DueDate != nil {
			updates["invoice_due_date"] = dateOnly(*in.DueDate)
		}
		if in.Status != nil {
			switch *in.Status {
			case model.InvoiceStatusOverdue:
				if !inv.InvoiceBalance.IsPositive() || inv.InvoiceStatus == model.InvoiceStatusCancelled {
					return helper.Validation("only open invoices can be marked overdue")
				}
			case model.InvoiceStatusCancelled:
				if inv.InvoicePaidAmount.IsPositive() {
					return helper.Validation("invoice with recorded payments cannot be cancelled")
				}
			default:
				return helper.Validation("status can only be set to overdue or cancelled")
			}
			updates["invoice_status"] = *in.Status
		}
		if len(updates) == 0 {
			return helper.Validation("nothing to update")
		}
		if err := tx.Model(&model.InvoiceModel{}).Where("invoice_id = ?", id).Updates(updates).Error; err != nil {
			return helper.Internal(err, "update invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetInvoice(ctx, db, id)
}
