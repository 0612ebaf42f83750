package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	invoiceSvc "collegefee_backend/internals/features/finance/invoices/service"
	"collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type OfflineInput struct {
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	Mode          model.PaymentMode
	TransactionID *string
	Note          *string
}

// RecordOffline books a cash, demand-draft or wire payment. It goes through
// the same completion path as a gateway payment inside one transaction.
func (r *Reconciler) RecordOffline(ctx context.Context, admin helperAuth.Caller, in OfflineInput) (*CompleteResult, error) {
	if !in.Mode.IsOffline() {
		return nil, helper.Validation("mode must be one of cash, demand_draft, wire")
	}
	if !in.Amount.IsPositive() || !isCents(in.Amount) {
		return nil, helper.Validation("amount must be a positive value with at most two decimals")
	}
	if in.TransactionID != nil {
		t := strings.TrimSpace(*in.TransactionID)
		in.TransactionID = &t
		if t == "" {
			in.TransactionID = nil
		}
	}

	var res *CompleteResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv invoiceModel.InvoiceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("invoice_id = ?", in.InvoiceID).Take(&inv).Error; err != nil {
			if helper.IsNotFound(err) {
				return helper.NotFound("invoice not found")
			}
			return helper.Internal(err, "load invoice")
		}
		if inv.InvoiceStatus == invoiceModel.InvoiceStatusCancelled {
			return helper.Validation("invoice %s is cancelled", inv.InvoiceNumber)
		}
		if in.Amount.GreaterThan(inv.InvoiceBalance) {
			return helper.Validation("amount %s exceeds the outstanding balance %s",
				in.Amount.StringFixed(2), inv.InvoiceBalance.StringFixed(2))
		}

		p := model.PaymentModel{
			PaymentInvoiceID:     inv.InvoiceID,
			PaymentStudentID:     inv.InvoiceStudentID,
			PaymentAmount:        in.Amount,
			PaymentMode:          in.Mode,
			PaymentStatus:        model.PaymentStatusPending,
			PaymentTransactionID: in.TransactionID,
			PaymentIsPartial:     in.Amount.LessThan(inv.InvoiceBalance),
			PaymentRecordedBy:    &admin.UserID,
			PaymentNote:          in.Note,
			PaymentCreatedAt:     r.now(),
		}
		if err := tx.Create(&p).Error; err != nil {
			return helper.Internal(err, "store offline payment")
		}
		var err error
		res, err = r.completeTx(tx, p.PaymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("offline payment recorded",
		zap.String("payment_id", res.Payment.PaymentID.String()),
		zap.String("mode", string(in.Mode)),
		zap.String("recorded_by", admin.UserID.String()))
	r.afterSuccess(ctx, &res.Payment)
	return res, nil
}

/* ===================== Refund ===================== */

type RefundInput struct {
	Amount *decimal.Decimal
	Reason string
}

// Refund returns money for a successful payment. Gateway payments are
// refunded at the provider before any local change. Allocations on the
// components are left as they are.
func (r *Reconciler) Refund(ctx context.Context, admin helperAuth.Caller, paymentID uuid.UUID, in RefundInput) (*model.PaymentModel, error) {
	p, err := GetPayment(ctx, r.DB, paymentID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(p.PaymentStatus, model.PaymentStatusRefunded) {
		return nil, helper.Validation("only successful payments can be refunded (status %s)", p.PaymentStatus).Wrap(model.ErrInvalidTransition)
	}
	amount := p.PaymentAmount
	if in.Amount != nil {
		amount = *in.Amount
	}
	if !amount.IsPositive() || !isCents(amount) {
		return nil, helper.Validation("refund amount must be a positive value with at most two decimals")
	}
	if amount.GreaterThan(p.PaymentAmount) {
		return nil, helper.Validation("refund amount %s exceeds the payment amount %s",
			amount.StringFixed(2), p.PaymentAmount.StringFixed(2))
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "requested_by_admin"
	}

	log := r.Log.With(zap.String("payment_id", p.PaymentID.String()), zap.String("amount", amount.String()))
	if p.PaymentMode == model.PaymentModeGateway {
		if r.Gateway == nil || p.PaymentTransactionID == nil {
			return nil, helper.Gateway(nil, "payment has no gateway session to refund")
		}
		if err := r.fitsGateway(amount); err != nil {
			return nil, err
		}
		if _, err := r.Gateway.Refund(ctx, *p.PaymentTransactionID, amount, reason); err != nil {
			log.Error("gateway refund failed", zap.Error(err))
			return nil, helper.Gateway(err, "refund at gateway")
		}
	}

	now := r.now()
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&model.PaymentModel{}).
			Where("payment_id = ? AND payment_status = ?", p.PaymentID, model.PaymentStatusSuccess).
			Updates(map[string]any{
				"payment_status":          model.PaymentStatusRefunded,
				"payment_refunded_amount": amount,
				"payment_refund_reason":   reason,
				"payment_refunded_at":     now,
			})
		if upd.Error != nil {
			return helper.Internal(upd.Error, "mark payment refunded")
		}
		if upd.RowsAffected == 0 {
			return helper.Duplicate("payment was refunded by another request")
		}
		return invoiceSvc.ApplyRefund(tx, p.PaymentInvoiceID, amount)
	})
	if err != nil {
		log.Error("refund not recorded locally", zap.Error(err))
		return nil, err
	}
	log.Info("payment refunded", zap.String("by", admin.UserID.String()))

	fresh, err := GetPayment(ctx, r.DB, p.PaymentID)
	if err != nil {
		return nil, err
	}
	if userID, inv := r.payer(ctx, fresh); userID != nil && inv != nil {
		r.notify(ctx, *userID, fmt.Sprintf("A refund of %s was issued for payment %s. Invoice %s balance: %s.",
			r.money(amount), fresh.PaymentReference, inv.InvoiceNumber, r.money(inv.InvoiceBalance)), "payment", "refund")
	}
	return fresh, nil
}

/* ===================== Sweep ===================== */

type SweepResult struct {
	Overdue   int64 `json:"overdue"`
	Cancelled int64 `json:"cancelled"`
}

// Sweep marks overdue invoices and cancels stale pending payments.
func (r *Reconciler) Sweep(ctx context.Context) (*SweepResult, error) {
	now := r.now()
	overdue, err := invoiceSvc.MarkOverdue(ctx, r.DB, now)
	if err != nil {
		return nil, err
	}
	cancelled, err := CancelStalePending(ctx, r.DB, nil, now.Add(-staleSweepAge(r.Policy.StaleAfter, r.Policy.SessionTTL)))
	if err != nil {
		return nil, err
	}
	r.Log.Info("sweep finished", zap.Int64("overdue", overdue), zap.Int64("cancelled", cancelled))
	return &SweepResult{Overdue: overdue, Cancelled: cancelled}, nil
}

// staleSweepAge keeps the background sweep from cancelling sessions the
// payer may still complete.
func staleSweepAge(stale, ttl time.Duration) time.Duration {
	if ttl > stale {
		return ttl
	}
	return stale
}
