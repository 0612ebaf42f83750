package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"collegefee_backend/internals/constants"
	"collegefee_backend/internals/features/finance/payments/gateway"
	"collegefee_backend/internals/features/finance/payments/model"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type WebhookResult struct {
	Status    model.GatewayEventStatus `json:"status"`
	EventType string                   `json:"event_type"`
	PaymentID string                   `json:"payment_id,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
}

func findByTransaction(db *gorm.DB, sessionID string) (*model.PaymentModel, error) {
	var p model.PaymentModel
	err := db.Where("payment_transaction_id = ?", sessionID).
		Order("payment_created_at DESC").
		Take(&p).Error
	if helper.IsNotFound(err) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, helper.Internal(err, "find payment by session")
	}
	return &p, nil
}

// HandleWebhook verifies and applies one gateway delivery. Only a bad
// signature is an error; every other outcome is acknowledged and logged so
// the sender stops retrying.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	ev, err := r.Gateway.VerifyWebhook(payload, signature)
	if err != nil {
		r.Log.Warn("webhook signature rejected", zap.String("provider", r.Gateway.Name()), zap.Error(err))
		return nil, helper.Signature("invalid webhook signature")
	}
	log := r.Log.With(zap.String("event", ev.Type), zap.String("session_id", ev.SessionID))

	res := &WebhookResult{EventType: ev.Type}
	p, err := findByTransaction(r.DB.WithContext(ctx), ev.SessionID)
	if err != nil {
		res.Status = model.GatewayEventIgnored
		res.Reason = err.Error()
		if errors.Is(err, ErrPaymentNotFound) {
			log.Warn("webhook for unknown payment", zap.Error(ErrPaymentNotFound))
		} else {
			res.Status = model.GatewayEventFailed
			log.Error("webhook lookup failed", zap.Error(err))
		}
		r.recordEvent(ctx, ev, nil, res)
		return res, nil
	}
	res.PaymentID = p.PaymentID.String()

	switch ev.Type {
	case gateway.EventSessionCompleted:
		out, err := r.Complete(ctx, p.PaymentID)
		switch {
		case err != nil:
			res.Status, res.Reason = model.GatewayEventFailed, err.Error()
			log.Error("webhook completion failed", zap.String("payment_id", res.PaymentID), zap.Error(err))
		case out.AlreadyCompleted:
			res.Status, res.Reason = model.GatewayEventIgnored, "already completed"
		default:
			res.Status = model.GatewayEventProcessed
		}
	case gateway.EventSessionExpired, gateway.EventSessionFailed:
		to := model.PaymentStatusCancelled
		if ev.Type == gateway.EventSessionFailed {
			to = model.PaymentStatusFailed
		}
		moved, err := transition(r.DB.WithContext(ctx), p.PaymentID, model.PaymentStatusPending, to)
		switch {
		case err != nil:
			res.Status, res.Reason = model.GatewayEventFailed, err.Error()
			log.Error("webhook transition failed", zap.Error(err))
		case moved:
			res.Status = model.GatewayEventProcessed
			log.Info("payment closed by gateway", zap.String("payment_id", res.PaymentID), zap.String("status", string(to)))
		default:
			res.Status, res.Reason = model.GatewayEventIgnored, "payment is not pending"
		}
	default:
		res.Status, res.Reason = model.GatewayEventIgnored, "event type not handled"
	}

	r.recordEvent(ctx, ev, p, res)
	return res, nil
}

func (r *Reconciler) recordEvent(ctx context.Context, ev *gateway.Event, p *model.PaymentModel, res *WebhookResult) {
	row := model.PaymentGatewayEventModel{
		GatewayEventProvider:  ev.Provider,
		GatewayEventType:      ev.Type,
		GatewayEventSessionID: ev.SessionID,
		GatewayEventPayload:   datatypes.JSON(ev.Payload),
		GatewayEventStatus:    res.Status,
	}
	if p != nil {
		row.GatewayEventPaymentID = &p.PaymentID
	}
	if res.Reason != "" {
		reason := res.Reason
		row.GatewayEventError = &reason
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		r.Log.Warn("store gateway event", zap.Error(err))
	}
}

/* ===================== Status poll ===================== */

type StatusResult struct {
	Payment       model.PaymentModel    `json:"payment"`
	GatewayStatus gateway.SessionStatus `json:"gateway_status"`
	Reconciled    bool                  `json:"reconciled"`
}

// CheckStatus asks the gateway about a session and completes the local
// payment when a webhook was missed.
func (r *Reconciler) CheckStatus(ctx context.Context, caller helperAuth.Caller, sessionID string) (*StatusResult, error) {
	db := r.DB.WithContext(ctx)
	p, err := findByTransaction(db, sessionID)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, helper.NotFound("payment session not found")
	}
	if err != nil {
		return nil, err
	}
	if caller.Is(constants.RoleStudent) {
		st, err := studentSvc.FindByUserID(ctx, r.DB, caller.UserID)
		if err != nil {
			return nil, err
		}
		if st.StudentID != p.PaymentStudentID {
			return nil, helper.Forbidden("payment does not belong to you")
		}
	}

	info, err := r.Gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		r.Log.Error("retrieve session failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, helper.Gateway(err, "retrieve payment session")
	}

	out := &StatusResult{GatewayStatus: info.Status}
	if p.PaymentStatus == model.PaymentStatusPending {
		switch info.Status {
		case gateway.SessionComplete:
			res, err := r.Complete(ctx, p.PaymentID)
			if err != nil {
				return nil, err
			}
			out.Reconciled = !res.AlreadyCompleted
			if out.Reconciled {
				r.Log.Info("payment reconciled from status poll", zap.String("payment_id", p.PaymentID.String()))
			}
		case gateway.SessionExpired:
			if _, err := transition(db, p.PaymentID, model.PaymentStatusPending, model.PaymentStatusCancelled); err != nil {
				return nil, err
			}
		case gateway.SessionFailed:
			if _, err := transition(db, p.PaymentID, model.PaymentStatusPending, model.PaymentStatusFailed); err != nil {
				return nil, err
			}
		}
	} else if p.PaymentStatus == model.PaymentStatusSuccess {
		r.issueReceipt(ctx, p, nil)
	}

	fresh, err := GetPayment(ctx, r.DB, p.PaymentID)
	if err != nil {
		return nil, err
	}
	out.Payment = *fresh
	return out, nil
}
