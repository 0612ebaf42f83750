// file: internals/features/finance/payments/model/payment_model.go
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string
type PaymentMode string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

const (
	PaymentModeGateway     PaymentMode = "gateway"
	PaymentModeCash        PaymentMode = "cash"
	PaymentModeDemandDraft PaymentMode = "demand_draft"
	PaymentModeWire        PaymentMode = "wire"
)

// OfflineModes are the modes an admin may record by hand.
var OfflineModes = []PaymentMode{PaymentModeCash, PaymentModeDemandDraft, PaymentModeWire}

func (m PaymentMode) IsOffline() bool {
	for _, o := range OfflineModes {
		if m == o {
			return true
		}
	}
	return false
}

var transitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusSuccess: {PaymentStatusRefunded},
}

var ErrInvalidTransition = errors.New("invalid payment status transition")

// CanTransition reports whether from -> to is a legal payment lifecycle step.
func CanTransition(from, to PaymentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

/* ===================== Payment ===================== */

type PaymentModel struct {
	PaymentID            uuid.UUID           `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	PaymentInvoiceID     uuid.UUID           `gorm:"column:payment_invoice_id;type:uuid;not null;index:idx_payment_invoice_status,priority:1" json:"payment_invoice_id"`
	PaymentStudentID     uuid.UUID           `gorm:"column:payment_student_id;type:uuid;not null;index" json:"payment_student_id"`
	PaymentAmount        decimal.Decimal     `gorm:"column:payment_amount;type:numeric(12,2);not null" json:"payment_amount"`
	PaymentMode          PaymentMode         `gorm:"column:payment_mode;type:varchar(16);not null;default:'gateway'" json:"payment_mode"`
	PaymentStatus        PaymentStatus       `gorm:"column:payment_status;type:varchar(16);not null;default:'pending';index:idx_payment_invoice_status,priority:2" json:"payment_status"`
	PaymentTransactionID *string             `gorm:"column:payment_transaction_id;size:120;index" json:"payment_transaction_id,omitempty"`
	PaymentReference     string              `gorm:"column:payment_reference;size:40;not null;uniqueIndex" json:"payment_reference"`
	PaymentIsPartial     bool                `gorm:"column:payment_is_partial;not null;default:false" json:"payment_is_partial"`
	PaymentCheckoutURL   *string             `gorm:"column:payment_checkout_url;type:text" json:"payment_checkout_url,omitempty"`
	PaymentGatewayToken  *string             `gorm:"column:payment_gateway_token;type:text" json:"-"`
	PaymentExpiresAt     *time.Time          `gorm:"column:payment_expires_at" json:"payment_expires_at,omitempty"`
	PaymentPaidAt        *time.Time          `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`
	PaymentRefundAmount  decimal.NullDecimal `gorm:"column:payment_refunded_amount;type:numeric(12,2)" json:"payment_refunded_amount"`
	PaymentRefundReason  *string             `gorm:"column:payment_refund_reason;type:text" json:"payment_refund_reason,omitempty"`
	PaymentRefundedAt    *time.Time          `gorm:"column:payment_refunded_at" json:"payment_refunded_at,omitempty"`
	PaymentRecordedBy    *uuid.UUID          `gorm:"column:payment_recorded_by;type:uuid" json:"payment_recorded_by,omitempty"`
	PaymentNote          *string             `gorm:"column:payment_note;type:text" json:"payment_note,omitempty"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime;index" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`

	Components []PaymentComponentModel `gorm:"foreignKey:PaymentComponentPaymentID;references:PaymentID" json:"components,omitempty"`
}

func (PaymentModel) TableName() string { return "payments" }

func (m *PaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	if m.PaymentReference == "" {
		m.PaymentReference = ReferenceFor(m.PaymentID)
	}
	return nil
}

/* ===================== Allocation rows ===================== */

// PaymentComponentModel records how much of a payment went to one invoice component.
type PaymentComponentModel struct {
	PaymentComponentID                 uuid.UUID       `gorm:"column:payment_component_id;type:uuid;primaryKey" json:"payment_component_id"`
	PaymentComponentPaymentID          uuid.UUID       `gorm:"column:payment_component_payment_id;type:uuid;not null;index" json:"payment_component_payment_id"`
	PaymentComponentInvoiceComponentID uuid.UUID       `gorm:"column:payment_component_invoice_component_id;type:uuid;not null;index" json:"payment_component_invoice_component_id"`
	PaymentComponentName               string          `gorm:"column:payment_component_name;size:120;not null" json:"payment_component_name"`
	PaymentComponentAmount             decimal.Decimal `gorm:"column:payment_component_amount_allocated;type:numeric(12,2);not null" json:"payment_component_amount_allocated"`

	PaymentComponentCreatedAt time.Time `gorm:"column:payment_component_created_at;autoCreateTime" json:"payment_component_created_at"`
}

func (PaymentComponentModel) TableName() string { return "payment_components" }

func (m *PaymentComponentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentComponentID == uuid.Nil {
		m.PaymentComponentID = uuid.New()
	}
	return nil
}
