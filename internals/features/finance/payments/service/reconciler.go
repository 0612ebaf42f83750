// file: internals/features/finance/payments/service/reconciler.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collegefee_backend/internals/configs"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	invoiceSvc "collegefee_backend/internals/features/finance/invoices/service"
	"collegefee_backend/internals/features/finance/payments/gateway"
	"collegefee_backend/internals/features/finance/payments/model"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
)

// ErrPaymentNotFound: a completion signal named a payment we never stored.
var ErrPaymentNotFound = errors.New("payment not found")

// ReceiptIssuer creates the receipt for a successful payment at most once.
type ReceiptIssuer interface {
	Emit(ctx context.Context, paymentID uuid.UUID, amount decimal.Decimal) (number string, created bool, err error)
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message string, tags ...string) error
}

// Reconciler owns every payment state change. Receipts and Notifier are optional.
type Reconciler struct {
	DB       *gorm.DB
	Gateway  gateway.Gateway
	Receipts ReceiptIssuer
	Notifier Notifier
	Log      *zap.Logger
	Policy   configs.PaymentPolicy
	Now      func() time.Time
}

func NewReconciler(db *gorm.DB, gw gateway.Gateway, policy configs.PaymentPolicy, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{DB: db, Gateway: gw, Policy: policy, Log: log.Named("payments"), Now: time.Now}
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

type CompleteResult struct {
	Payment          model.PaymentModel
	Allocations      []model.PaymentComponentModel
	AlreadyCompleted bool
}

/* ===================== Completion ===================== */

// Complete marks a pending payment successful and credits its invoice exactly once.
// A payment that is already successful is a no-op.
func (r *Reconciler) Complete(ctx context.Context, paymentID uuid.UUID) (*CompleteResult, error) {
	var res *CompleteResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = r.completeTx(tx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	switch {
	case !res.AlreadyCompleted:
		r.afterSuccess(ctx, &res.Payment)
	case res.Payment.PaymentStatus == model.PaymentStatusSuccess:
		// the first attempt may have died before its receipt was stored
		r.issueReceipt(ctx, &res.Payment, nil)
	}
	return res, nil
}

func (r *Reconciler) completeTx(tx *gorm.DB, paymentID uuid.UUID) (*CompleteResult, error) {
	now := r.now()
	upd := tx.Model(&model.PaymentModel{}).
		Where("payment_id = ? AND payment_status = ?", paymentID, model.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":  model.PaymentStatusSuccess,
			"payment_paid_at": now,
		})
	if upd.Error != nil {
		return nil, helper.Internal(upd.Error, "mark payment success")
	}

	var p model.PaymentModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ?", paymentID).Take(&p).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, &helper.AppError{Kind: helper.KindNotFound, Message: "payment not found", Err: ErrPaymentNotFound}
		}
		return nil, helper.Internal(err, "load payment")
	}

	if upd.RowsAffected == 0 {
		if p.PaymentStatus == model.PaymentStatusSuccess || p.PaymentStatus == model.PaymentStatusRefunded {
			return &CompleteResult{Payment: p, AlreadyCompleted: true}, nil
		}
		return nil, helper.Validation("payment %s cannot complete from status %s", p.PaymentReference, p.PaymentStatus)
	}

	allocs, err := Allocate(tx, &p)
	if err != nil {
		return nil, err
	}
	if err := invoiceSvc.ApplyPayment(tx, p.PaymentInvoiceID, p.PaymentAmount); err != nil {
		return nil, err
	}
	return &CompleteResult{Payment: p, Allocations: allocs}, nil
}

/* ===================== Allocation ===================== */

// Allocate spreads p.PaymentAmount over the invoice components. Pre-declared
// rows are honoured first, capped by what is left of the payment and by the
// component balance; without them components are filled greedily in
// position order. Whatever cannot be placed stays unallocated.
func Allocate(tx *gorm.DB, p *model.PaymentModel) ([]model.PaymentComponentModel, error) {
	comps, err := invoiceSvc.LockComponents(tx, p.PaymentInvoiceID)
	if err != nil {
		return nil, helper.Internal(err, "lock invoice components")
	}
	byID := make(map[uuid.UUID]*invoiceModel.InvoiceComponentModel, len(comps))
	order := make(map[uuid.UUID]int, len(comps))
	for i := range comps {
		byID[comps[i].InvoiceComponentID] = &comps[i]
		order[comps[i].InvoiceComponentID] = i
	}

	var pre []model.PaymentComponentModel
	if err := tx.Where("payment_component_payment_id = ? AND payment_component_amount_allocated > 0", p.PaymentID).
		Find(&pre).Error; err != nil {
		return nil, helper.Internal(err, "load pre-allocations")
	}

	remaining := p.PaymentAmount
	var out []model.PaymentComponentModel

	if len(pre) > 0 {
		sort.SliceStable(pre, func(i, j int) bool {
			return order[pre[i].PaymentComponentInvoiceComponentID] < order[pre[j].PaymentComponentInvoiceComponentID]
		})
		for _, row := range pre {
			c := byID[row.PaymentComponentInvoiceComponentID]
			applied := decimal.Zero
			if c != nil && remaining.IsPositive() {
				applied = decimal.Min(remaining, row.PaymentComponentAmount, c.InvoiceComponentBalance)
			}
			if !applied.IsPositive() {
				if err := tx.Delete(&model.PaymentComponentModel{}, "payment_component_id = ?", row.PaymentComponentID).Error; err != nil {
					return nil, helper.Internal(err, "drop empty allocation")
				}
				continue
			}
			if !applied.Equal(row.PaymentComponentAmount) {
				if err := tx.Model(&model.PaymentComponentModel{}).
					Where("payment_component_id = ?", row.PaymentComponentID).
					Update("payment_component_amount_allocated", applied).Error; err != nil {
					return nil, helper.Internal(err, "cap allocation")
				}
				row.PaymentComponentAmount = applied
			}
			if err := invoiceSvc.ApplyComponentPayment(tx, c.InvoiceComponentID, applied); err != nil {
				return nil, helper.Internal(err, "apply component payment")
			}
			c.InvoiceComponentBalance = c.InvoiceComponentBalance.Sub(applied)
			remaining = remaining.Sub(applied)
			out = append(out, row)
		}
		return out, nil
	}

	for i := range comps {
		if !remaining.IsPositive() {
			break
		}
		c := &comps[i]
		if !c.InvoiceComponentBalance.IsPositive() {
			continue
		}
		applied := decimal.Min(remaining, c.InvoiceComponentBalance)
		row := model.PaymentComponentModel{
			PaymentComponentPaymentID:          p.PaymentID,
			PaymentComponentInvoiceComponentID: c.InvoiceComponentID,
			PaymentComponentName:               c.InvoiceComponentName,
			PaymentComponentAmount:             applied,
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, helper.Internal(err, "record allocation")
		}
		if err := invoiceSvc.ApplyComponentPayment(tx, c.InvoiceComponentID, applied); err != nil {
			return nil, helper.Internal(err, "apply component payment")
		}
		c.InvoiceComponentBalance = c.InvoiceComponentBalance.Sub(applied)
		remaining = remaining.Sub(applied)
		out = append(out, row)
	}
	return out, nil
}

/* ===================== Side effects ===================== */

func (r *Reconciler) money(d decimal.Decimal) string {
	cur := r.Policy.Currency
	if cur == "" {
		cur = "INR"
	}
	return fmt.Sprintf("%s %s", cur, d.StringFixed(2))
}

// afterSuccess runs once the payment and invoice are committed. Failures are
// logged only.
func (r *Reconciler) afterSuccess(ctx context.Context, p *model.PaymentModel) {
	log := r.Log.With(zap.String("payment_id", p.PaymentID.String()), zap.String("reference", p.PaymentReference))
	log.Info("payment reconciled", zap.String("amount", p.PaymentAmount.String()), zap.String("mode", string(p.PaymentMode)))

	userID, inv := r.payer(ctx, p)

	if userID != nil && inv != nil {
		msg := fmt.Sprintf("Payment of %s received for invoice %s. Remaining balance: %s.",
			r.money(p.PaymentAmount), inv.InvoiceNumber, r.money(inv.InvoiceBalance))
		r.notify(ctx, *userID, msg, "payment", "success")
	}

	r.issueReceipt(ctx, p, userID)
}

// issueReceipt is safe to repeat; the student hears about a receipt only
// when this call created it. userID is resolved when nil.
func (r *Reconciler) issueReceipt(ctx context.Context, p *model.PaymentModel, userID *uuid.UUID) {
	if r.Receipts == nil {
		return
	}
	number, created, err := r.Receipts.Emit(ctx, p.PaymentID, p.PaymentAmount)
	if err != nil {
		r.Log.Warn("receipt emission failed", zap.String("payment_id", p.PaymentID.String()), zap.Error(err))
		return
	}
	if !created {
		return
	}
	if userID == nil {
		userID, _ = r.payer(ctx, p)
	}
	if userID != nil {
		r.notify(ctx, *userID, fmt.Sprintf("Receipt %s generated for your payment of %s.", number, r.money(p.PaymentAmount)), "receipt")
	}
}

func (r *Reconciler) notify(ctx context.Context, userID uuid.UUID, msg string, tags ...string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.Notify(ctx, userID, msg, tags...); err != nil {
		r.Log.Warn("notification failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// payer resolves the student's login and the fresh invoice totals.
func (r *Reconciler) payer(ctx context.Context, p *model.PaymentModel) (*uuid.UUID, *invoiceModel.InvoiceModel) {
	var inv invoiceModel.InvoiceModel
	if err := r.DB.WithContext(ctx).Where("invoice_id = ?", p.PaymentInvoiceID).Take(&inv).Error; err != nil {
		r.Log.Warn("load invoice for notification", zap.Error(err))
		return nil, nil
	}
	st, err := studentSvc.FindByID(ctx, r.DB, p.PaymentStudentID)
	if err != nil {
		r.Log.Warn("load student for notification", zap.Error(err))
		return nil, &inv
	}
	return &st.StudentUserID, &inv
}

// transition moves a payment between two states if it is still in from.
func transition(tx *gorm.DB, paymentID uuid.UUID, from, to model.PaymentStatus) (bool, error) {
	if !model.CanTransition(from, to) {
		return false, helper.Validation("illegal payment transition %s -> %s", from, to).Wrap(model.ErrInvalidTransition)
	}
	res := tx.Model(&model.PaymentModel{}).
		Where("payment_id = ? AND payment_status = ?", paymentID, from).
		Update("payment_status", to)
	if res.Error != nil {
		return false, helper.Internal(res.Error, "update payment status")
	}
	return res.RowsAffected > 0, nil
}
