// file: internals/features/finance/payments/model/payment_gateway_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  payment_gateway_events: one row per webhook delivery, kept for replay and audit.
  Many rows per payment; payment id is NULL when the session is unknown.
*/

type GatewayEventStatus string

const (
	GatewayEventReceived  GatewayEventStatus = "received"
	GatewayEventProcessed GatewayEventStatus = "processed"
	GatewayEventIgnored   GatewayEventStatus = "ignored"
	GatewayEventFailed    GatewayEventStatus = "failed"
)

type PaymentGatewayEventModel struct {
	GatewayEventID        uuid.UUID          `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`
	GatewayEventPaymentID *uuid.UUID         `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"gateway_event_payment_id,omitempty"`
	GatewayEventProvider  string             `gorm:"column:gateway_event_provider;size:32;not null" json:"gateway_event_provider"`
	GatewayEventType      string             `gorm:"column:gateway_event_type;size:64;not null" json:"gateway_event_type"`
	GatewayEventSessionID string             `gorm:"column:gateway_event_session_id;size:120;index" json:"gateway_event_session_id"`
	GatewayEventPayload   datatypes.JSON     `gorm:"column:gateway_event_payload" json:"gateway_event_payload"`
	GatewayEventStatus    GatewayEventStatus `gorm:"column:gateway_event_status;type:varchar(16);not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError     *string            `gorm:"column:gateway_event_error;type:text" json:"gateway_event_error,omitempty"`

	GatewayEventReceivedAt time.Time `gorm:"column:gateway_event_received_at;autoCreateTime" json:"gateway_event_received_at"`
}

func (PaymentGatewayEventModel) TableName() string { return "payment_gateway_events" }

func (m *PaymentGatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.GatewayEventID == uuid.Nil {
		m.GatewayEventID = uuid.New()
	}
	return nil
}
