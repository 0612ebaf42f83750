package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

/* =========================================================
   Midtrans adapter: Snap for sessions, Core API for status & refunds
========================================================= */

type Midtrans struct {
	serverKey string
	snap      snap.Client
	core      coreapi.Client
}

func NewMidtrans(serverKey string, useProduction bool) *Midtrans {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	m := &Midtrans{serverKey: serverKey}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

func (m *Midtrans) Name() string { return "midtrans" }

// AmountScale is 0: gross_amount is sent in whole units.
func (m *Midtrans) AmountScale() int32 { return 0 }

// grossAmount converts to whole currency units; Midtrans rejects fractions.
func grossAmount(amount decimal.Decimal) (int64, error) {
	if !amount.Equal(amount.Truncate(0)) {
		return 0, fmt.Errorf("midtrans: amount %s has a fractional part", amount)
	}
	return amount.IntPart(), nil
}

func (m *Midtrans) CreateSession(ctx context.Context, in SessionRequest) (*Session, error) {
	if m.serverKey == "" {
		return nil, fmt.Errorf("midtrans: server key is not configured")
	}
	gross, err := grossAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	now := time.Now()

	first, last := splitName(in.Payer.Name)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{OrderID: in.OrderID, GrossAmt: gross},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: in.Payer.Email,
			Phone: in.Payer.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    in.InvoiceID.String(),
			Price: gross,
			Qty:   1,
			Name:  truncate(in.Description, 50),
		}},
		Expiry: &snap.ExpiryDetails{
			StartTime: now.Format("2006-01-02 15:04:05 -0700"),
			Unit:      "minute",
			Duration:  int64(ttl / time.Minute),
		},
		CustomField1: in.PaymentID.String(),
		CustomField2: strconv.FormatBool(in.IsPartial),
	}
	if in.SuccessURL != "" {
		req.Callbacks = &snap.Callbacks{Finish: in.SuccessURL}
	}

	resp, merr := m.snap.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans snap: %s", merr.GetMessage())
	}
	return &Session{
		ID:        in.OrderID,
		URL:       resp.RedirectURL,
		Token:     resp.Token,
		ExpiresAt: now.Add(ttl),
	}, nil
}

type midtransNotif struct {
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, refund, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
	CustomField1      string `json:"custom_field1"`
	CustomField2      string `json:"custom_field2"`
}

// Signature is SHA512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// VerifyWebhook checks the signature carried in the body; a non-empty
// header signature must match it too.
func (m *Midtrans) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	var n midtransNotif
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, ErrInvalidSignature
	}
	got := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if got == "" || m.serverKey == "" {
		return nil, ErrInvalidSignature
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, m.serverKey)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return nil, ErrInvalidSignature
	}
	if hs := strings.ToLower(strings.TrimSpace(signature)); hs != "" && hs != want {
		return nil, ErrInvalidSignature
	}

	ev := &Event{
		Provider:  m.Name(),
		Type:      mapMidtransStatus(n.TransactionStatus, n.FraudStatus),
		SessionID: n.OrderID,
		IsPartial: n.CustomField2 == "true",
		Payload:   payload,
	}
	if amt, err := decimal.NewFromString(n.GrossAmount); err == nil {
		ev.Amount = amt
	}
	if id, err := uuid.Parse(n.CustomField1); err == nil {
		ev.PaymentID = &id
	}
	return ev, nil
}

func mapMidtransStatus(status, fraud string) string {
	switch strings.ToLower(status) {
	case "settlement":
		return EventSessionCompleted
	case "capture":
		switch strings.ToLower(fraud) {
		case "accept", "":
			return EventSessionCompleted
		case "challenge":
			return "capture.challenge"
		}
		return EventSessionFailed
	case "expire", "cancel":
		return EventSessionExpired
	case "deny", "failure":
		return EventSessionFailed
	}
	return strings.ToLower(status)
}

func (m *Midtrans) RetrieveSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	resp, merr := m.core.CheckTransaction(sessionID)
	if merr != nil {
		// 404 from Core API: no transaction yet, the payer never opened Snap.
		if merr.StatusCode == 404 {
			return &SessionInfo{ID: sessionID, Status: SessionOpen}, nil
		}
		return nil, fmt.Errorf("midtrans status: %s", merr.GetMessage())
	}
	info := &SessionInfo{ID: sessionID}
	if amt, err := decimal.NewFromString(resp.GrossAmount); err == nil {
		info.Amount = amt
	}
	switch mapMidtransStatus(resp.TransactionStatus, resp.FraudStatus) {
	case EventSessionCompleted:
		info.Status = SessionComplete
	case EventSessionExpired:
		info.Status = SessionExpired
	case EventSessionFailed:
		info.Status = SessionFailed
	default:
		info.Status = SessionOpen
	}
	return info, nil
}

func (m *Midtrans) Refund(ctx context.Context, sessionID string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	gross, err := grossAmount(amount)
	if err != nil {
		return nil, err
	}
	key := "RF-" + strings.ToUpper(uuid.New().String()[:8])
	_, merr := m.core.RefundTransaction(sessionID, &coreapi.RefundReq{
		RefundKey: key,
		Amount:    gross,
		Reason:    truncate(reason, 255),
	})
	if merr != nil {
		return nil, fmt.Errorf("midtrans refund: %s", merr.GetMessage())
	}
	return &RefundResult{ID: key, Amount: amount}, nil
}

/* =========================================================
   Utils
========================================================= */

// truncate keeps the first n characters.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if i := strings.LastIndex(full, " "); i > 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}
