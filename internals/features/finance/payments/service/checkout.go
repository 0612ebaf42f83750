// file: internals/features/finance/payments/service/checkout.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/constants"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	invoiceSvc "collegefee_backend/internals/features/finance/invoices/service"
	"collegefee_backend/internals/features/finance/payments/gateway"
	"collegefee_backend/internals/features/finance/payments/model"
	studentModel "collegefee_backend/internals/features/users/students/model"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type CheckoutResult struct {
	CheckoutURL      string          `json:"checkout_url"`
	SessionID        string          `json:"session_id"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	ExpiresAt        time.Time       `json:"expires_at"`
	PaymentReference string          `json:"payment_reference"`
	IsPartial        bool            `json:"is_partial_payment"`
}

type ComponentSelection struct {
	ComponentID uuid.UUID
	Amount      decimal.Decimal
}

func isCents(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }

// gatewayScale is the precision the configured provider accepts, capped at cents.
func (r *Reconciler) gatewayScale() int32 {
	if r.Gateway == nil {
		return 2
	}
	if s := r.Gateway.AmountScale(); s < 2 {
		return s
	}
	return 2
}

func (r *Reconciler) fitsGateway(d decimal.Decimal) error {
	scale := r.gatewayScale()
	if d.Equal(d.Round(scale)) {
		return nil
	}
	if scale == 0 {
		return helper.Validation("amount %s must be a whole number for this payment provider", d.String())
	}
	return helper.Validation("amount must have at most %d decimal places", scale)
}

// payableInvoice loads an invoice the calling student owns and can still pay.
func (r *Reconciler) payableInvoice(ctx context.Context, caller helperAuth.Caller, invoiceID uuid.UUID) (*invoiceModel.InvoiceModel, *studentModel.StudentModel, error) {
	if !caller.Is(constants.RoleStudent) {
		return nil, nil, helper.Forbidden("only students can open a checkout session")
	}
	st, err := studentSvc.FindByUserID(ctx, r.DB, caller.UserID)
	if err != nil {
		return nil, nil, err
	}
	inv, err := invoiceSvc.GetInvoiceForStudent(ctx, r.DB, invoiceID, st.StudentID)
	if err != nil {
		return nil, nil, err
	}
	if inv.InvoiceStatus == invoiceModel.InvoiceStatusCancelled {
		return nil, nil, helper.Validation("invoice %s is cancelled", inv.InvoiceNumber)
	}
	if !inv.InvoiceBalance.IsPositive() {
		return nil, nil, helper.Validation("invoice %s is already paid", inv.InvoiceNumber)
	}
	return inv, st, nil
}

func (r *Reconciler) validateAmount(amount, balance decimal.Decimal) error {
	if !amount.IsPositive() {
		return helper.Validation("amount must be greater than zero")
	}
	if !isCents(amount) {
		return helper.Validation("amount must have at most two decimal places")
	}
	if err := r.fitsGateway(amount); err != nil {
		return err
	}
	if amount.LessThan(r.Policy.MinAmount) {
		return helper.Validation("amount must be at least %s", r.Policy.MinAmount.StringFixed(2))
	}
	if amount.GreaterThan(balance) {
		return helper.Validation("amount %s exceeds the outstanding balance %s", amount.StringFixed(2), balance.StringFixed(2))
	}
	return nil
}

// CancelStalePending cancels pending payments created before cutoff. A nil
// invoiceID sweeps every invoice.
func CancelStalePending(ctx context.Context, db *gorm.DB, invoiceID *uuid.UUID, cutoff time.Time) (int64, error) {
	q := db.WithContext(ctx).Model(&model.PaymentModel{}).
		Where("payment_status = ? AND payment_created_at < ?", model.PaymentStatusPending, cutoff)
	if invoiceID != nil {
		q = q.Where("payment_invoice_id = ?", *invoiceID)
	}
	res := q.Update("payment_status", model.PaymentStatusCancelled)
	if res.Error != nil {
		return 0, helper.Internal(res.Error, "cancel stale payments")
	}
	return res.RowsAffected, nil
}

// guardCheckout applies the staleness, rate and duplicate rules for one
// invoice, and keeps open sessions plus amount within the balance so that
// completing all of them cannot overpay the invoice.
func (r *Reconciler) guardCheckout(ctx context.Context, invoiceID uuid.UUID, amount, balance decimal.Decimal) error {
	now := r.now()
	n, err := CancelStalePending(ctx, r.DB, &invoiceID, now.Add(-r.Policy.StaleAfter))
	if err != nil {
		return err
	}
	if n > 0 {
		r.Log.Info("stale pending payments cancelled", zap.String("invoice_id", invoiceID.String()), zap.Int64("count", n))
	}

	base := r.DB.WithContext(ctx).Model(&model.PaymentModel{}).
		Where("payment_invoice_id = ? AND payment_status = ?", invoiceID, model.PaymentStatusPending)

	var open int64
	if err := base.Session(&gorm.Session{}).
		Where("payment_created_at >= ?", now.Add(-r.Policy.RateWindow)).
		Count(&open).Error; err != nil {
		return helper.Internal(err, "count pending payments")
	}
	if r.Policy.RateMax > 0 && open >= int64(r.Policy.RateMax) {
		return helper.RateLimited("too many open payment sessions for this invoice, please wait a few minutes")
	}

	var dup model.PaymentModel
	err = base.Session(&gorm.Session{}).
		Where("payment_amount = ? AND payment_created_at >= ?", amount, now.Add(-r.Policy.DuplicateWindow)).
		Order("payment_created_at DESC").
		Take(&dup).Error
	if err == nil {
		return helper.Duplicate("a payment session for this amount is already open").
			WithData("payment_id", dup.PaymentID).
			WithData("checkout_url", dup.PaymentCheckoutURL)
	}
	if !helper.IsNotFound(err) {
		return helper.Internal(err, "check duplicate payment")
	}

	var pendingSum decimal.Decimal
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(payment_amount), 0)").
		Row().Scan(&pendingSum); err != nil {
		return helper.Internal(err, "sum pending payments")
	}
	pendingSum = pendingSum.Round(2)
	if pendingSum.Add(amount).GreaterThan(balance) {
		return helper.Validation("amount %s plus open sessions of %s exceeds the outstanding balance %s",
			amount.StringFixed(2), pendingSum.StringFixed(2), balance.StringFixed(2)).
			WithData("pending_amount", pendingSum.StringFixed(2))
	}
	return nil
}

// CreateCheckoutSession opens a gateway session for amount (default: the
// full balance) and records the pending payment.
func (r *Reconciler) CreateCheckoutSession(ctx context.Context, caller helperAuth.Caller, invoiceID uuid.UUID, amount *decimal.Decimal) (*CheckoutResult, error) {
	inv, st, err := r.payableInvoice(ctx, caller, invoiceID)
	if err != nil {
		return nil, err
	}
	amt := inv.InvoiceBalance
	if amount != nil {
		amt = *amount
	}
	if err := r.validateAmount(amt, inv.InvoiceBalance); err != nil {
		return nil, err
	}
	return r.openSession(ctx, inv, st, amt, nil)
}

// CreateComponentPayment opens one session covering the selected components
// and stores the selection as pre-allocations.
func (r *Reconciler) CreateComponentPayment(ctx context.Context, caller helperAuth.Caller, invoiceID uuid.UUID, picks []ComponentSelection) (*CheckoutResult, error) {
	if len(picks) == 0 {
		return nil, helper.Validation("select at least one component")
	}
	inv, st, err := r.payableInvoice(ctx, caller, invoiceID)
	if err != nil {
		return nil, err
	}
	comps, err := invoiceSvc.ListComponents(ctx, r.DB, inv.InvoiceID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]invoiceModel.InvoiceComponentModel, len(comps))
	for _, c := range comps {
		byID[c.InvoiceComponentID] = c
	}

	seen := map[uuid.UUID]bool{}
	total := decimal.Zero
	rows := make([]model.PaymentComponentModel, 0, len(picks))
	for _, pk := range picks {
		c, ok := byID[pk.ComponentID]
		if !ok {
			return nil, helper.NotFound("component %s not found on invoice %s", pk.ComponentID, inv.InvoiceNumber)
		}
		if seen[pk.ComponentID] {
			return nil, helper.Validation("component %q selected twice", c.InvoiceComponentName)
		}
		seen[pk.ComponentID] = true
		if !pk.Amount.IsPositive() || !isCents(pk.Amount) {
			return nil, helper.Validation("amount for %q must be a positive value with at most two decimals", c.InvoiceComponentName)
		}
		if pk.Amount.GreaterThan(c.InvoiceComponentBalance) {
			return nil, helper.Validation("amount for %q exceeds its balance %s", c.InvoiceComponentName, c.InvoiceComponentBalance.StringFixed(2))
		}
		total = total.Add(pk.Amount)
		rows = append(rows, model.PaymentComponentModel{
			PaymentComponentInvoiceComponentID: c.InvoiceComponentID,
			PaymentComponentName:               c.InvoiceComponentName,
			PaymentComponentAmount:             pk.Amount,
		})
	}
	if err := r.validateAmount(total, inv.InvoiceBalance); err != nil {
		return nil, err
	}
	return r.openSession(ctx, inv, st, total, rows)
}

// openSession calls the gateway first so nothing is stored for a session
// that was never created.
func (r *Reconciler) openSession(ctx context.Context, inv *invoiceModel.InvoiceModel, st *studentModel.StudentModel, amount decimal.Decimal, prealloc []model.PaymentComponentModel) (*CheckoutResult, error) {
	if err := r.guardCheckout(ctx, inv.InvoiceID, amount, inv.InvoiceBalance); err != nil {
		return nil, err
	}
	if r.Gateway == nil {
		return nil, helper.Gateway(nil, "payment gateway is not configured")
	}

	now := r.now()
	paymentID := uuid.New()
	partial := amount.LessThan(inv.InvoiceBalance)
	req := gateway.SessionRequest{
		OrderID:     model.GenOrderID(inv.InvoiceNumber, now),
		PaymentID:   paymentID,
		InvoiceID:   inv.InvoiceID,
		Description: "Fee payment " + inv.InvoiceNumber,
		Amount:      amount,
		Currency:    r.Policy.Currency,
		IsPartial:   partial,
		SuccessURL:  r.Policy.SuccessURL,
		CancelURL:   r.Policy.CancelURL,
		TTL:         r.Policy.SessionTTL,
	}
	req.Payer.Name = st.StudentName
	if st.User != nil {
		req.Payer.Email = st.User.UserEmail
		if st.User.UserPhone != nil {
			req.Payer.Phone = *st.User.UserPhone
		}
	}

	sess, err := r.Gateway.CreateSession(ctx, req)
	if err != nil {
		r.Log.Error("create checkout session failed", zap.String("invoice", inv.InvoiceNumber), zap.Error(err))
		return nil, helper.Gateway(err, "create checkout session")
	}

	p := model.PaymentModel{
		PaymentID:            paymentID,
		PaymentInvoiceID:     inv.InvoiceID,
		PaymentStudentID:     st.StudentID,
		PaymentAmount:        amount,
		PaymentMode:          model.PaymentModeGateway,
		PaymentStatus:        model.PaymentStatusPending,
		PaymentTransactionID: &sess.ID,
		PaymentIsPartial:     partial,
		PaymentCheckoutURL:   &sess.URL,
		PaymentGatewayToken:  &sess.Token,
		PaymentExpiresAt:     &sess.ExpiresAt,
		PaymentCreatedAt:     now,
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return helper.Internal(err, "store payment")
		}
		for i := range prealloc {
			prealloc[i].PaymentComponentPaymentID = p.PaymentID
		}
		if len(prealloc) > 0 {
			if err := tx.Create(&prealloc).Error; err != nil {
				return helper.Internal(err, "store pre-allocations")
			}
		}
		return nil
	})
	if err != nil {
		r.Log.Error("payment not stored after session was created",
			zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}

	r.Log.Info("checkout session created",
		zap.String("invoice", inv.InvoiceNumber),
		zap.String("payment_id", p.PaymentID.String()),
		zap.String("session_id", sess.ID),
		zap.String("amount", amount.String()),
		zap.Bool("partial", partial))

	return &CheckoutResult{
		CheckoutURL:      sess.URL,
		SessionID:        sess.ID,
		PaymentID:        p.PaymentID,
		Amount:           amount,
		ExpiresAt:        sess.ExpiresAt,
		PaymentReference: p.PaymentReference,
		IsPartial:        partial,
	}, nil
}
