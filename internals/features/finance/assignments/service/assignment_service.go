// file: internals/features/finance/assignments/service/assignment_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/assignments/model"
	feeModel "collegefee_backend/internals/features/finance/fees/model"
	feeSvc "collegefee_backend/internals/features/finance/fees/service"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	invoiceSvc "collegefee_backend/internals/features/finance/invoices/service"
	helper "collegefee_backend/internals/helpers"
)

// ErrDuplicateAssignment: the student already has an assignment for the academic year.
var ErrDuplicateAssignment = errors.New("duplicate fee assignment")

type AssignInput struct {
	StudentID    uuid.UUID
	TemplateID   uuid.UUID
	AcademicYear string
	Semester     int
	Type         model.AssignmentType
	Overrides    map[uuid.UUID]decimal.Decimal
	AssignedBy   *uuid.UUID
	DueDate      *time.Time
	Now          time.Time
}

type AssignResult struct {
	Assignment model.FeeAssignmentModel
	Invoice    *invoiceModel.InvoiceModel
}

// ApplyOverrides prices each line with its override when present. Overrides
// replace the component amount, they are never added to it.
func ApplyOverrides(lines []feeSvc.Line, overrides map[uuid.UUID]decimal.Decimal) ([]invoiceSvc.InvoiceLine, error) {
	known := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		known[l.ComponentID] = true
	}
	for id, amt := range overrides {
		if !known[id] {
			return nil, helper.Validation("override for component %s which is not in the template", id)
		}
		if amt.IsNegative() {
			return nil, helper.Validation("override for component %s must not be negative", id)
		}
	}

	out := make([]invoiceSvc.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		amt := l.Amount
		if o, ok := overrides[l.ComponentID]; ok {
			amt = o
		}
		out = append(out, invoiceSvc.InvoiceLine{Name: l.Name, Amount: amt.Round(2)})
	}
	return out, nil
}

func encodeOverrides(in map[uuid.UUID]decimal.Decimal) datatypes.JSONType[model.Overrides] {
	out := model.Overrides{}
	for k, v := range in {
		out[k.String()] = v.Round(2)
	}
	return datatypes.NewJSONType(out)
}

func duplicateAssignment() error {
	return &helper.AppError{
		Kind:    helper.KindDuplicate,
		Message: "student already has a fee assignment for this academic year",
		Err:     ErrDuplicateAssignment,
	}
}

// Assign records the assignment and generates its invoice in one transaction.
func Assign(ctx context.Context, db *gorm.DB, in AssignInput) (*AssignResult, error) {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if in.Type == "" {
		in.Type = model.AssignmentIndividual
	}

	var out AssignResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tpl feeModel.FeeTemplateModel
		if err := tx.Where("fee_template_id = ?", in.TemplateID).Take(&tpl).Error; err != nil {
			if helper.IsNotFound(err) {
				return helper.NotFound("fee template not found")
			}
			return helper.Internal(err, "load template")
		}
		if !tpl.FeeTemplateIsActive {
			return helper.Validation("fee template %q is inactive", tpl.FeeTemplateName)
		}
		year := in.AcademicYear
		if year == "" {
			year = tpl.FeeTemplateAcademicYear
		}

		var studentCount int64
		if err := tx.Table("students").Where("student_id = ?", in.StudentID).Count(&studentCount).Error; err != nil {
			return helper.Internal(err, "check student")
		}
		if studentCount == 0 {
			return helper.NotFound("student not found")
		}

		lines, err := feeSvc.TemplateLines(tx, tpl.FeeTemplateID)
		if err != nil {
			return err
		}
		invLines, err := ApplyOverrides(lines, in.Overrides)
		if err != nil {
			return err
		}

		a := model.FeeAssignmentModel{
			FeeAssignmentStudentID:    in.StudentID,
			FeeAssignmentAcademicYear: year,
			FeeAssignmentTemplateID:   tpl.FeeTemplateID,
			FeeAssignmentType:         in.Type,
			FeeAssignmentSemester:     in.Semester,
			FeeAssignmentOverrides:    encodeOverrides(in.Overrides),
			FeeAssignmentAssignedBy:   in.AssignedBy,
			FeeAssignmentAssignedAt:   in.Now,
			FeeAssignmentIsActive:     true,
		}
		if err := tx.Create(&a).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return duplicateAssignment()
			}
			return helper.Internal(err, "create assignment")
		}

		inv, err := invoiceSvc.Generate(tx, invoiceSvc.GenerateInput{
			StudentID:    in.StudentID,
			AcademicYear: year,
			Semester:     in.Semester,
			InvoiceType:  string(tpl.FeeTemplateFeeType),
			AssignmentID: &a.FeeAssignmentID,
			Lines:        invLines,
			DueDate:      in.DueDate,
			Now:          in.Now,
		})
		if err != nil {
			return err
		}
		out = AssignResult{Assignment: a, Invoice: inv}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AutoAssign picks the best matching template for the student's cohort.
func AutoAssign(ctx context.Context, db *gorm.DB, studentID uuid.UUID, academicYear string, assignedBy *uuid.UUID) (*AssignResult, error) {
	var st struct {
		AdmissionMode string `gorm:"column:student_admission_mode"`
		Department    string `gorm:"column:student_department"`
	}
	err := db.WithContext(ctx).Table("students").
		Select("student_admission_mode, student_department").
		Where("student_id = ?", studentID).
		Take(&st).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("student not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load student")
	}
	tpl, err := feeSvc.MatchTemplate(ctx, db, academicYear, st.AdmissionMode, st.Department)
	if err != nil {
		return nil, err
	}
	return Assign(ctx, db, AssignInput{
		StudentID:    studentID,
		TemplateID:   tpl.FeeTemplateID,
		AcademicYear: academicYear,
		Type:         model.AssignmentAuto,
		AssignedBy:   assignedBy,
	})
}

func Deactivate(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	res := db.WithContext(ctx).Model(&model.FeeAssignmentModel{}).
		Where("fee_assignment_id = ?", id).
		Update("fee_assignment_is_active", false)
	if res.Error != nil {
		return helper.Internal(res.Error, "deactivate assignment")
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("assignment not found")
	}
	return nil
}

type ListFilter struct {
	AcademicYear string
	TemplateID   *uuid.UUID
	StudentID    *uuid.UUID
	Offset       int
	Limit        int
}

func List(ctx context.Context, db *gorm.DB, f ListFilter) ([]model.FeeAssignmentModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.FeeAssignmentModel{})
	if f.AcademicYear != "" {
		q = q.Where("fee_assignment_academic_year = ?", f.AcademicYear)
	}
	if f.TemplateID != nil {
		q = q.Where("fee_assignment_template_id = ?", *f.TemplateID)
	}
	if f.StudentID != nil {
		q = q.Where("fee_assignment_student_id = ?", *f.StudentID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.Internal(err, "count assignments")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var rows []model.FeeAssignmentModel
	if err := q.Order("fee_assignment_assigned_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.Internal(err, "list assignments")
	}
	return rows, total, nil
}
