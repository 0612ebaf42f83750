// file: internals/features/finance/fees/model/fee_component_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* ===================== Fee component ===================== */

type FeeComponentModel struct {
	FeeComponentID          uuid.UUID       `gorm:"column:fee_component_id;type:uuid;primaryKey" json:"fee_component_id"`
	FeeComponentName        string          `gorm:"column:fee_component_name;size:120;not null;uniqueIndex" json:"fee_component_name"`
	FeeComponentAmount      decimal.Decimal `gorm:"column:fee_component_amount;type:numeric(12,2);not null" json:"fee_component_amount"`
	FeeComponentDescription *string         `gorm:"column:fee_component_description;type:text" json:"fee_component_description,omitempty"`

	FeeComponentCreatedAt time.Time `gorm:"column:fee_component_created_at;autoCreateTime" json:"fee_component_created_at"`
	FeeComponentUpdatedAt time.Time `gorm:"column:fee_component_updated_at;autoUpdateTime" json:"fee_component_updated_at"`
}

func (FeeComponentModel) TableName() string { return "fee_components" }

func (m *FeeComponentModel) BeforeCreate(tx *gorm.DB) error {
	if m.FeeComponentID == uuid.Nil {
		m.FeeComponentID = uuid.New()
	}
	return nil
}
