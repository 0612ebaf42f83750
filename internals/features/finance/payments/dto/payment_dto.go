package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"collegefee_backend/internals/features/finance/payments/model"
	"collegefee_backend/internals/features/finance/payments/service"
)

/* ===================== Requests ===================== */

// CheckoutRequest: amount omitted means the full outstanding balance.
type CheckoutRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type ComponentPick struct {
	ComponentID uuid.UUID       `json:"component_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type ComponentPaymentRequest struct {
	ComponentPayments []ComponentPick `json:"component_payments" validate:"required,min=1,dive"`
}

func (r ComponentPaymentRequest) Selections() []service.ComponentSelection {
	out := make([]service.ComponentSelection, 0, len(r.ComponentPayments))
	for _, p := range r.ComponentPayments {
		out = append(out, service.ComponentSelection{ComponentID: p.ComponentID, Amount: p.Amount})
	}
	return out
}

type OfflinePaymentRequest struct {
	InvoiceID     uuid.UUID       `json:"invoice_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Mode          string          `json:"mode" validate:"required,oneof=cash demand_draft wire"`
	TransactionID *string         `json:"transaction_id" validate:"omitempty,max=120"`
	Note          *string         `json:"note" validate:"omitempty,max=1000"`
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason" validate:"omitempty,max=500"`
}

/* ===================== Responses ===================== */

type AllocationResponse struct {
	InvoiceComponentID uuid.UUID       `json:"invoice_component_id"`
	ComponentName      string          `json:"component_name"`
	AmountAllocated    decimal.Decimal `json:"amount_allocated"`
}

type PaymentResponse struct {
	PaymentID        uuid.UUID            `json:"payment_id"`
	InvoiceID        uuid.UUID            `json:"invoice_id"`
	StudentID        uuid.UUID            `json:"student_id"`
	Amount           decimal.Decimal      `json:"amount"`
	Mode             model.PaymentMode    `json:"mode"`
	Status           model.PaymentStatus  `json:"status"`
	Reference        string               `json:"payment_reference"`
	TransactionID    *string              `json:"transaction_id,omitempty"`
	IsPartial        bool                 `json:"is_partial_payment"`
	CheckoutURL      *string              `json:"checkout_url,omitempty"`
	ExpiresAt        *time.Time           `json:"expires_at,omitempty"`
	PaidAt           *time.Time           `json:"paid_at,omitempty"`
	RefundedAmount   *decimal.Decimal     `json:"refunded_amount,omitempty"`
	RefundReason     *string              `json:"refund_reason,omitempty"`
	RefundedAt       *time.Time           `json:"refunded_at,omitempty"`
	Note             *string              `json:"note,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	ComponentDetails []AllocationResponse `json:"component_payment_details"`
}

func ToAllocationResponses(rows []model.PaymentComponentModel) []AllocationResponse {
	out := make([]AllocationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, AllocationResponse{
			InvoiceComponentID: r.PaymentComponentInvoiceComponentID,
			ComponentName:      r.PaymentComponentName,
			AmountAllocated:    r.PaymentComponentAmount,
		})
	}
	return out
}

func ToPaymentResponse(m model.PaymentModel) PaymentResponse {
	out := PaymentResponse{
		PaymentID:        m.PaymentID,
		InvoiceID:        m.PaymentInvoiceID,
		StudentID:        m.PaymentStudentID,
		Amount:           m.PaymentAmount,
		Mode:             m.PaymentMode,
		Status:           m.PaymentStatus,
		Reference:        m.PaymentReference,
		TransactionID:    m.PaymentTransactionID,
		IsPartial:        m.PaymentIsPartial,
		PaidAt:           m.PaymentPaidAt,
		RefundReason:     m.PaymentRefundReason,
		RefundedAt:       m.PaymentRefundedAt,
		Note:             m.PaymentNote,
		CreatedAt:        m.PaymentCreatedAt,
		ComponentDetails: ToAllocationResponses(m.Components),
	}
	if m.PaymentRefundAmount.Valid {
		v := m.PaymentRefundAmount.Decimal
		out.RefundedAmount = &v
	}
	// checkout link only matters while the session can still be paid
	if m.PaymentStatus == model.PaymentStatusPending {
		out.CheckoutURL = m.PaymentCheckoutURL
		out.ExpiresAt = m.PaymentExpiresAt
	}
	return out
}

func ToPaymentResponses(rows []model.PaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToPaymentResponse(r))
	}
	return out
}

type GatewayEventResponse struct {
	EventID    uuid.UUID                `json:"event_id"`
	PaymentID  *uuid.UUID               `json:"payment_id,omitempty"`
	Provider   string                   `json:"provider"`
	Type       string                   `json:"type"`
	SessionID  string                   `json:"session_id"`
	Status     model.GatewayEventStatus `json:"status"`
	Error      *string                  `json:"error,omitempty"`
	ReceivedAt time.Time                `json:"received_at"`
}

func ToGatewayEventResponses(rows []model.PaymentGatewayEventModel) []GatewayEventResponse {
	out := make([]GatewayEventResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, GatewayEventResponse{
			EventID:    r.GatewayEventID,
			PaymentID:  r.GatewayEventPaymentID,
			Provider:   r.GatewayEventProvider,
			Type:       r.GatewayEventType,
			SessionID:  r.GatewayEventSessionID,
			Status:     r.GatewayEventStatus,
			Error:      r.GatewayEventError,
			ReceivedAt: r.GatewayEventReceivedAt,
		})
	}
	return out
}
