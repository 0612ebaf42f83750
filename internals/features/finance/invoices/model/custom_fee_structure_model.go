// file: internals/features/finance/invoices/model/custom_fee_structure_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CustomFeeLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// CustomFeeStructureModel is a per-student fee breakdown that bypasses templates.
type CustomFeeStructureModel struct {
	CustomFeeID           uuid.UUID                            `gorm:"column:custom_fee_id;type:uuid;primaryKey" json:"custom_fee_id"`
	CustomFeeStudentID    uuid.UUID                            `gorm:"column:custom_fee_student_id;type:uuid;not null;uniqueIndex" json:"custom_fee_student_id"`
	CustomFeeAcademicYear string                               `gorm:"column:custom_fee_academic_year;size:16;not null" json:"custom_fee_academic_year"`
	CustomFeeLines        datatypes.JSONType[[]CustomFeeLine] `gorm:"column:custom_fee_components" json:"custom_fee_components"`
	CustomFeeTotalAmount  decimal.Decimal                      `gorm:"column:custom_fee_total_amount;type:numeric(12,2);not null;default:0" json:"custom_fee_total_amount"`
	CustomFeeCreatedBy    *uuid.UUID                           `gorm:"column:custom_fee_created_by;type:uuid" json:"custom_fee_created_by,omitempty"`

	CustomFeeCreatedAt time.Time `gorm:"column:custom_fee_created_at;autoCreateTime" json:"custom_fee_created_at"`
	CustomFeeUpdatedAt time.Time `gorm:"column:custom_fee_updated_at;autoUpdateTime" json:"custom_fee_updated_at"`
}

func (CustomFeeStructureModel) TableName() string { return "custom_fee_structures" }

func (m *CustomFeeStructureModel) BeforeCreate(tx *gorm.DB) error {
	if m.CustomFeeID == uuid.Nil {
		m.CustomFeeID = uuid.New()
	}
	return nil
}
