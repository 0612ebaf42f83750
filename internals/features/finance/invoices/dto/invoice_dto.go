// file: internals/features/finance/invoices/dto/invoice_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"collegefee_backend/internals/features/finance/invoices/model"
)

/* ===================== Requests ===================== */

type PatchInvoiceRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=overdue cancelled"`
	DueDate *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type CustomFeeLineRequest struct {
	Name   string          `json:"name" validate:"required,max=120"`
	Amount decimal.Decimal `json:"amount"`
}

type CustomFeeRequest struct {
	AcademicYear string                 `json:"academic_year" validate:"required,max=16"`
	Components   []CustomFeeLineRequest `json:"components" validate:"required,min=1,dive"`
}

func (r CustomFeeRequest) Lines() []model.CustomFeeLine {
	out := make([]model.CustomFeeLine, 0, len(r.Components))
	for _, c := range r.Components {
		out = append(out, model.CustomFeeLine{Name: c.Name, Amount: c.Amount})
	}
	return out
}

type CustomInvoiceRequest struct {
	Semester int     `json:"semester" validate:"gte=0,lte=12"`
	DueDate  *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func ParseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

/* ===================== Responses ===================== */

type InvoiceComponentResponse struct {
	ComponentID uuid.UUID       `json:"component_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Balance     decimal.Decimal `json:"balance_amount"`
}

type InvoiceResponse struct {
	InvoiceID     uuid.UUID                  `json:"invoice_id"`
	InvoiceNumber string                     `json:"invoice_number"`
	StudentID     uuid.UUID                  `json:"student_id"`
	StudentName   string                     `json:"student_name,omitempty"`
	StudentUSN    string                     `json:"student_usn,omitempty"`
	AcademicYear  string                     `json:"academic_year"`
	Semester      int                        `json:"semester,omitempty"`
	InvoiceType   string                     `json:"invoice_type"`
	TotalAmount   decimal.Decimal            `json:"total_amount"`
	PaidAmount    decimal.Decimal            `json:"paid_amount"`
	Balance       decimal.Decimal            `json:"balance_amount"`
	Status        string                     `json:"status"`
	DueDate       string                     `json:"due_date"`
	CreatedAt     time.Time                  `json:"created_at"`
	Components    []InvoiceComponentResponse `json:"components,omitempty"`
}

func ToComponentResponses(rows []model.InvoiceComponentModel) []InvoiceComponentResponse {
	out := make([]InvoiceComponentResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, InvoiceComponentResponse{
			ComponentID: c.InvoiceComponentID,
			Name:        c.InvoiceComponentName,
			Amount:      c.InvoiceComponentAmount,
			PaidAmount:  c.InvoiceComponentPaid,
			Balance:     c.InvoiceComponentBalance,
		})
	}
	return out
}

func ToInvoiceResponse(m model.InvoiceModel) InvoiceResponse {
	out := InvoiceResponse{
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		StudentID:     m.InvoiceStudentID,
		AcademicYear:  m.InvoiceAcademicYear,
		Semester:      m.InvoiceSemester,
		InvoiceType:   m.InvoiceType,
		TotalAmount:   m.InvoiceTotalAmount,
		PaidAmount:    m.InvoicePaidAmount,
		Balance:       m.InvoiceBalance,
		Status:        string(m.InvoiceStatus),
		DueDate:       m.InvoiceDueDate.Format("2006-01-02"),
		CreatedAt:     m.InvoiceCreatedAt,
	}
	if m.Student != nil {
		out.StudentName = m.Student.StudentName
		out.StudentUSN = m.Student.StudentUSN
	}
	if len(m.Components) > 0 {
		out.Components = ToComponentResponses(m.Components)
	}
	return out
}

func ToInvoiceResponses(rows []model.InvoiceModel) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToInvoiceResponse(r))
	}
	return out
}
