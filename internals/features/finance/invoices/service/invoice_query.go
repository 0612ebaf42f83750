// file: internals/features/finance/invoices/service/invoice_query.go
package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/invoices/model"
	helper "collegefee_backend/internals/helpers"
)

type ListFilter struct {
	StudentID    *uuid.UUID
	Status       string
	AcademicYear string
	Department   string
	Offset       int
	Limit        int
}

func datatypesLines(lines []model.CustomFeeLine) datatypes.JSONType[[]model.CustomFeeLine] {
	return datatypes.NewJSONType(lines)
}

func componentsByPosition(q *gorm.DB) *gorm.DB {
	return q.Order("invoice_component_position ASC, invoice_component_id ASC")
}

func GetInvoice(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.InvoiceModel, error) {
	var inv model.InvoiceModel
	err := db.WithContext(ctx).
		Preload("Components", componentsByPosition).
		Preload("Student").
		Where("invoice_id = ?", id).
		Take(&inv).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("invoice not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load invoice")
	}
	return &inv, nil
}

// GetInvoiceForStudent enforces ownership: another student's invoice is forbidden.
func GetInvoiceForStudent(ctx context.Context, db *gorm.DB, id, studentID uuid.UUID) (*model.InvoiceModel, error) {
	inv, err := GetInvoice(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStudentID != studentID {
		return nil, helper.Forbidden("invoice does not belong to this student")
	}
	return inv, nil
}

func ListInvoices(ctx context.Context, db *gorm.DB, f ListFilter) ([]model.InvoiceModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.InvoiceModel{})
	if f.StudentID != nil {
		q = q.Where("invoice_student_id = ?", *f.StudentID)
	}
	if f.Status != "" {
		q = q.Where("invoice_status = ?", f.Status)
	}
	if f.AcademicYear != "" {
		q = q.Where("invoice_academic_year = ?", f.AcademicYear)
	}
	if f.Department != "" {
		q = q.Where("invoice_student_id IN (?)",
			db.Table("students").Select("student_id").Where("student_department = ?", f.Department))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.Internal(err, "count invoices")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var rows []model.InvoiceModel
	if err := q.Preload("Student").
		Order("invoice_created_at DESC, invoice_number DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, helper.Internal(err, "list invoices")
	}
	return rows, total, nil
}

func ListComponents(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) ([]model.InvoiceComponentModel, error) {
	var rows []model.InvoiceComponentModel
	if err := componentsByPosition(db.WithContext(ctx).Where("invoice_component_invoice_id = ?", invoiceID)).
		Find(&rows).Error; err != nil {
		return nil, helper.Internal(err, "list invoice components")
	}
	return rows, nil
}
