// file: internals/features/finance/assignments/dto/assignment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"collegefee_backend/internals/features/finance/assignments/model"
	invoiceDTO "collegefee_backend/internals/features/finance/invoices/dto"
)

type AssignRequest struct {
	StudentID    uuid.UUID                     `json:"student_id" validate:"required"`
	TemplateID   uuid.UUID                     `json:"template_id" validate:"required"`
	AcademicYear string                        `json:"academic_year" validate:"omitempty,max=16"`
	Semester     int                           `json:"semester" validate:"gte=0,lte=12"`
	Overrides    map[uuid.UUID]decimal.Decimal `json:"overrides"`
	DueDate      *string                       `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type BulkAssignRequest struct {
	TemplateID    uuid.UUID `json:"template_id" validate:"required"`
	AcademicYear  string    `json:"academic_year" validate:"omitempty,max=16"`
	Semester      int       `json:"semester" validate:"gte=0,lte=12"`
	AdmissionMode string    `json:"admission_mode" validate:"omitempty,max=32"`
	Department    string    `json:"department" validate:"omitempty,max=64"`
	DryRun        bool      `json:"dry_run"`
	DueDate       *string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type AutoAssignRequest struct {
	StudentID    uuid.UUID `json:"student_id" validate:"required"`
	AcademicYear string    `json:"academic_year" validate:"required,max=16"`
}

type AssignmentResponse struct {
	AssignmentID uuid.UUID                    `json:"assignment_id"`
	StudentID    uuid.UUID                    `json:"student_id"`
	TemplateID   uuid.UUID                    `json:"template_id"`
	AcademicYear string                       `json:"academic_year"`
	Semester     int                          `json:"semester,omitempty"`
	Type         string                       `json:"assignment_type"`
	Overrides    model.Overrides              `json:"overrides,omitempty"`
	AssignedBy   *uuid.UUID                   `json:"assigned_by,omitempty"`
	AssignedAt   time.Time                    `json:"assigned_at"`
	IsActive     bool                         `json:"is_active"`
	Invoice      *invoiceDTO.InvoiceResponse `json:"invoice,omitempty"`
}

func ToAssignmentResponse(m model.FeeAssignmentModel) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID: m.FeeAssignmentID,
		StudentID:    m.FeeAssignmentStudentID,
		TemplateID:   m.FeeAssignmentTemplateID,
		AcademicYear: m.FeeAssignmentAcademicYear,
		Semester:     m.FeeAssignmentSemester,
		Type:         string(m.FeeAssignmentType),
		Overrides:    m.FeeAssignmentOverrides.Data(),
		AssignedBy:   m.FeeAssignmentAssignedBy,
		AssignedAt:   m.FeeAssignmentAssignedAt,
		IsActive:     m.FeeAssignmentIsActive,
	}
}

func ToAssignmentResponses(rows []model.FeeAssignmentModel) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToAssignmentResponse(r))
	}
	return out
}
