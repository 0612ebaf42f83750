// file: internals/features/finance/fees/dto/fee_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"collegefee_backend/internals/features/finance/fees/model"
	svc "collegefee_backend/internals/features/finance/fees/service"
)

/* ===================== Requests ===================== */

type ComponentRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
}

func (r ComponentRequest) ToInput() svc.ComponentInput {
	return svc.ComponentInput{Name: r.Name, Amount: r.Amount, Description: r.Description}
}

type TemplateLineRequest struct {
	ComponentID    uuid.UUID        `json:"component_id" validate:"required"`
	AmountOverride *decimal.Decimal `json:"amount_override"`
}

func (r TemplateLineRequest) ToInput() svc.TemplateLineInput {
	out := svc.TemplateLineInput{ComponentID: r.ComponentID}
	if r.AmountOverride != nil {
		out.Override = decimal.NewNullDecimal(*r.AmountOverride)
	}
	return out
}

type TemplateRequest struct {
	Name          string                `json:"name" validate:"required,max=150"`
	AdmissionMode *string               `json:"admission_mode" validate:"omitempty,max=32"`
	Department    *string               `json:"department" validate:"omitempty,max=64"`
	FeeType       string                `json:"fee_type" validate:"omitempty,oneof=annual semester one-time"`
	AcademicYear  string                `json:"academic_year" validate:"required,max=16"`
	IsActive      *bool                 `json:"is_active"`
	Lines         []TemplateLineRequest `json:"lines" validate:"dive"`
}

func (r TemplateRequest) ToInput() svc.TemplateInput {
	in := svc.TemplateInput{
		Name:          r.Name,
		AdmissionMode: r.AdmissionMode,
		Department:    r.Department,
		FeeType:       model.FeeType(r.FeeType),
		AcademicYear:  r.AcademicYear,
		IsActive:      r.IsActive,
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, l.ToInput())
	}
	return in
}

type TemplatePatchRequest struct {
	Name          string  `json:"name" validate:"omitempty,max=150"`
	AdmissionMode *string `json:"admission_mode" validate:"omitempty,max=32"`
	Department    *string `json:"department" validate:"omitempty,max=64"`
	FeeType       string  `json:"fee_type" validate:"omitempty,oneof=annual semester one-time"`
	AcademicYear  string  `json:"academic_year" validate:"omitempty,max=16"`
	IsActive      *bool   `json:"is_active"`
}

func (r TemplatePatchRequest) ToInput() svc.TemplateInput {
	return svc.TemplateInput{
		Name:          r.Name,
		AdmissionMode: r.AdmissionMode,
		Department:    r.Department,
		FeeType:       model.FeeType(r.FeeType),
		AcademicYear:  r.AcademicYear,
		IsActive:      r.IsActive,
	}
}

// OverrideRequest: null amount_override clears the override.
type OverrideRequest struct {
	AmountOverride *decimal.Decimal `json:"amount_override"`
}

/* ===================== Responses ===================== */

type TemplateLineResponse struct {
	ComponentID     uuid.UUID        `json:"component_id"`
	ComponentName   string           `json:"component_name"`
	BaseAmount      decimal.Decimal  `json:"base_amount"`
	AmountOverride  *decimal.Decimal `json:"amount_override"`
	EffectiveAmount decimal.Decimal  `json:"effective_amount"`
}

type TemplateResponse struct {
	TemplateID    uuid.UUID              `json:"template_id"`
	Name          string                 `json:"name"`
	AdmissionMode *string                `json:"admission_mode,omitempty"`
	Department    *string                `json:"department,omitempty"`
	FeeType       string                 `json:"fee_type"`
	AcademicYear  string                 `json:"academic_year"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	IsActive      bool                   `json:"is_active"`
	CreatedAt     time.Time              `json:"created_at"`
	Lines         []TemplateLineResponse `json:"lines,omitempty"`
}

func ToTemplateResponse(t model.FeeTemplateModel) TemplateResponse {
	out := TemplateResponse{
		TemplateID:    t.FeeTemplateID,
		Name:          t.FeeTemplateName,
		AdmissionMode: t.FeeTemplateAdmissionMode,
		Department:    t.FeeTemplateDepartment,
		FeeType:       string(t.FeeTemplateFeeType),
		AcademicYear:  t.FeeTemplateAcademicYear,
		TotalAmount:   t.FeeTemplateTotalAmount,
		IsActive:      t.FeeTemplateIsActive,
		CreatedAt:     t.FeeTemplateCreatedAt,
	}
	for _, l := range t.Lines {
		line := TemplateLineResponse{
			ComponentID:     l.FeeTemplateComponentComponentID,
			EffectiveAmount: l.EffectiveAmount(),
		}
		if l.Component != nil {
			line.ComponentName = l.Component.FeeComponentName
			line.BaseAmount = l.Component.FeeComponentAmount
		}
		if l.FeeTemplateComponentOverride.Valid {
			v := l.FeeTemplateComponentOverride.Decimal
			line.AmountOverride = &v
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}

func ToTemplateResponses(rows []model.FeeTemplateModel) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToTemplateResponse(r))
	}
	return out
}
