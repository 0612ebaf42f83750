package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fake is an in-memory Gateway for tests and local development.
// Its webhook payloads are JSON FakeEvent bodies signed with Secret.
type Fake struct {
	Secret string
	Err    error // returned by CreateSession and Refund when set
	Scale  int32

	mu       sync.Mutex
	sessions map[string]*SessionInfo
	Refunds  []RefundResult
}

type FakeEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	PaymentID string `json:"payment_id,omitempty"`
	IsPartial bool   `json:"is_partial_payment,omitempty"`
}

func NewFake(secret string) *Fake {
	return &Fake{Secret: secret, Scale: 2, sessions: map[string]*SessionInfo{}}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) AmountScale() int32 { return f.Scale }

func (f *Fake) CreateSession(ctx context.Context, in SessionRequest) (*Session, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[in.OrderID] = &SessionInfo{ID: in.OrderID, Status: SessionOpen, Amount: in.Amount}
	return &Session{
		ID:        in.OrderID,
		URL:       "https://pay.example.test/" + in.OrderID,
		Token:     "tok_" + in.OrderID,
		ExpiresAt: time.Now().Add(in.TTL),
	}, nil
}

// SetStatus moves a session as the provider would.
func (f *Fake) SetStatus(sessionID string, st SessionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		s.Status = st
		return
	}
	f.sessions[sessionID] = &SessionInfo{ID: sessionID, Status: st}
}

func (f *Fake) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	if signature == "" || signature != f.Secret {
		return nil, ErrInvalidSignature
	}
	var fe FakeEvent
	if err := json.Unmarshal(payload, &fe); err != nil {
		return nil, err
	}
	ev := &Event{Provider: f.Name(), Type: fe.Type, SessionID: fe.SessionID, IsPartial: fe.IsPartial, Payload: payload}
	if id, err := uuid.Parse(fe.PaymentID); err == nil {
		ev.PaymentID = &id
	}
	return ev, nil
}

func (f *Fake) RetrieveSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("fake: no such session")
	}
	cp := *s
	return &cp, nil
}

func (f *Fake) Refund(ctx context.Context, sessionID string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := RefundResult{ID: "rf_" + sessionID, Amount: amount}
	f.Refunds = append(f.Refunds, r)
	return &r, nil
}
