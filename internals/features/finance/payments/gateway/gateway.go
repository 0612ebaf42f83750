// Package gateway is the boundary to the card payment provider.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
	EventSessionFailed    = "checkout.session.failed"
)

type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionComplete SessionStatus = "complete"
	SessionExpired  SessionStatus = "expired"
	SessionFailed   SessionStatus = "failed"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Payer struct {
	Name  string
	Email string
	Phone string
}

type SessionRequest struct {
	OrderID     string // becomes the session id
	PaymentID   uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Amount      decimal.Decimal
	Currency    string
	IsPartial   bool
	Payer       Payer
	SuccessURL  string
	CancelURL   string
	TTL         time.Duration
}

type Session struct {
	ID        string
	URL       string
	Token     string
	ExpiresAt time.Time
}

// Event is a verified webhook delivery. Type is one of the Event* constants
// or the provider's raw status when it has no meaning for reconciliation.
type Event struct {
	Provider  string
	Type      string
	SessionID string
	PaymentID *uuid.UUID
	IsPartial bool
	Amount    decimal.Decimal
	Payload   []byte
}

type SessionInfo struct {
	ID     string
	Status SessionStatus
	Amount decimal.Decimal
}

type RefundResult struct {
	ID     string
	Amount decimal.Decimal
}

// Gateway is implemented by the Midtrans adapter and by Fake in tests.
type Gateway interface {
	Name() string
	// AmountScale is the number of decimal places the provider accepts.
	AmountScale() int32
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	Refund(ctx context.Context, sessionID string, amount decimal.Decimal, reason string) (*RefundResult, error)
}
