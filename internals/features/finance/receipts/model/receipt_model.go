// file: internals/features/finance/receipts/model/receipt_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptModel is written once per successful payment and never updated
// except for the stored document key.
type ReceiptModel struct {
	ReceiptID          uuid.UUID       `gorm:"column:receipt_id;type:uuid;primaryKey" json:"receipt_id"`
	ReceiptPaymentID   uuid.UUID       `gorm:"column:receipt_payment_id;type:uuid;not null;uniqueIndex" json:"receipt_payment_id"`
	ReceiptNumber      string          `gorm:"column:receipt_number;size:24;not null;uniqueIndex" json:"receipt_number"`
	ReceiptAmount      decimal.Decimal `gorm:"column:receipt_amount;type:numeric(12,2);not null" json:"receipt_amount"`
	ReceiptDocumentKey *string         `gorm:"column:receipt_document_key;type:text" json:"receipt_document_key,omitempty"`
	ReceiptGeneratedAt time.Time       `gorm:"column:receipt_generated_at;not null" json:"receipt_generated_at"`
}

func (ReceiptModel) TableName() string { return "receipts" }

func (m *ReceiptModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReceiptID == uuid.Nil {
		m.ReceiptID = uuid.New()
	}
	return nil
}
