// file: internals/features/finance/fees/model/fee_template_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FeeType string

const (
	FeeTypeAnnual   FeeType = "annual"
	FeeTypeSemester FeeType = "semester"
	FeeTypeOneTime  FeeType = "one-time"
)

func (t FeeType) Valid() bool {
	switch t {
	case FeeTypeAnnual, FeeTypeSemester, FeeTypeOneTime:
		return true
	}
	return false
}

/* ===================== Fee template ===================== */

type FeeTemplateModel struct {
	FeeTemplateID            uuid.UUID       `gorm:"column:fee_template_id;type:uuid;primaryKey" json:"fee_template_id"`
	FeeTemplateName          string          `gorm:"column:fee_template_name;size:150;not null" json:"fee_template_name"`
	FeeTemplateAdmissionMode *string         `gorm:"column:fee_template_admission_mode;size:32;index" json:"fee_template_admission_mode,omitempty"`
	FeeTemplateDepartment    *string         `gorm:"column:fee_template_department;size:64;index" json:"fee_template_department,omitempty"`
	FeeTemplateFeeType       FeeType         `gorm:"column:fee_template_fee_type;type:varchar(16);not null;default:'annual'" json:"fee_template_fee_type"`
	FeeTemplateAcademicYear  string          `gorm:"column:fee_template_academic_year;size:16;not null;index" json:"fee_template_academic_year"`
	FeeTemplateTotalAmount   decimal.Decimal `gorm:"column:fee_template_total_amount;type:numeric(12,2);not null;default:0" json:"fee_template_total_amount"`
	FeeTemplateIsActive      bool            `gorm:"column:fee_template_is_active;not null;default:true" json:"fee_template_is_active"`

	FeeTemplateCreatedAt time.Time `gorm:"column:fee_template_created_at;autoCreateTime" json:"fee_template_created_at"`
	FeeTemplateUpdatedAt time.Time `gorm:"column:fee_template_updated_at;autoUpdateTime" json:"fee_template_updated_at"`

	Lines []FeeTemplateComponentModel `gorm:"foreignKey:FeeTemplateComponentTemplateID;references:FeeTemplateID" json:"lines,omitempty"`
}

func (FeeTemplateModel) TableName() string { return "fee_templates" }

func (m *FeeTemplateModel) BeforeCreate(tx *gorm.DB) error {
	if m.FeeTemplateID == uuid.Nil {
		m.FeeTemplateID = uuid.New()
	}
	return nil
}

/* ===================== Template ↔ component ===================== */

type FeeTemplateComponentModel struct {
	FeeTemplateComponentID          uuid.UUID           `gorm:"column:fee_template_component_id;type:uuid;primaryKey" json:"fee_template_component_id"`
	FeeTemplateComponentTemplateID  uuid.UUID           `gorm:"column:fee_template_component_template_id;type:uuid;not null;uniqueIndex:uq_template_component" json:"fee_template_component_template_id"`
	FeeTemplateComponentComponentID uuid.UUID           `gorm:"column:fee_template_component_component_id;type:uuid;not null;uniqueIndex:uq_template_component" json:"fee_template_component_component_id"`
	FeeTemplateComponentOverride    decimal.NullDecimal `gorm:"column:fee_template_component_amount_override;type:numeric(12,2)" json:"fee_template_component_amount_override"`

	Component *FeeComponentModel `gorm:"foreignKey:FeeTemplateComponentComponentID;references:FeeComponentID" json:"component,omitempty"`
}

func (FeeTemplateComponentModel) TableName() string { return "fee_template_components" }

func (m *FeeTemplateComponentModel) BeforeCreate(tx *gorm.DB) error {
	if m.FeeTemplateComponentID == uuid.Nil {
		m.FeeTemplateComponentID = uuid.New()
	}
	return nil
}

// EffectiveAmount is the override when set, otherwise the component's base amount.
func (m FeeTemplateComponentModel) EffectiveAmount() decimal.Decimal {
	if m.FeeTemplateComponentOverride.Valid {
		return m.FeeTemplateComponentOverride.Decimal
	}
	if m.Component == nil {
		return decimal.Zero
	}
	return m.Component.FeeComponentAmount
}
