package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegefee_backend/internals/databases/testdb"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	"collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
)

func TestRecordOfflinePayment(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	txn := "  DD-4411 "

	res, err := f.rec.RecordOffline(context.Background(), admin, OfflineInput{
		InvoiceID:     f.invoice.InvoiceID,
		Amount:        testdb.Dec("1200"),
		Mode:          model.PaymentModeDemandDraft,
		TransactionID: &txn,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, res.Payment.PaymentStatus)
	assert.Equal(t, model.PaymentModeDemandDraft, res.Payment.PaymentMode)
	require.NotNil(t, res.Payment.PaymentRecordedBy)
	assert.Equal(t, admin.UserID, *res.Payment.PaymentRecordedBy)
	require.NotNil(t, res.Payment.PaymentTransactionID)
	assert.Equal(t, "DD-4411", *res.Payment.PaymentTransactionID)
	assert.Len(t, res.Allocations, 2)

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoiceBalance.Equal(testdb.Dec("300")))
	assert.Equal(t, invoiceModel.InvoiceStatusPartial, inv.InvoiceStatus)
}

func TestRecordOfflineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rec.RecordOffline(ctx, f.admin(), OfflineInput{InvoiceID: f.invoice.InvoiceID, Amount: testdb.Dec("100"), Mode: model.PaymentModeGateway})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.rec.RecordOffline(ctx, f.admin(), OfflineInput{InvoiceID: f.invoice.InvoiceID, Amount: testdb.Dec("1600"), Mode: model.PaymentModeCash})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.rec.RecordOffline(ctx, f.admin(), OfflineInput{InvoiceID: f.student.StudentID, Amount: testdb.Dec("100"), Mode: model.PaymentModeCash})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	var n int64
	require.NoError(t, f.db.Model(&model.PaymentModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRefundPartialGatewayPayment(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "1000")
	_, err := f.rec.Complete(context.Background(), p.PaymentID)
	require.NoError(t, err)

	out, err := f.rec.Refund(context.Background(), f.admin(), p.PaymentID, RefundInput{Amount: dec("600")})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, out.PaymentStatus)
	require.True(t, out.PaymentRefundAmount.Valid)
	assert.True(t, out.PaymentRefundAmount.Decimal.Equal(testdb.Dec("600")))
	require.NotNil(t, out.PaymentRefundReason)
	assert.Equal(t, "requested_by_admin", *out.PaymentRefundReason)

	require.Len(t, f.gw.Refunds, 1)
	assert.True(t, f.gw.Refunds[0].Amount.Equal(testdb.Dec("600")))

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoicePaidAmount.Equal(testdb.Dec("400")))
	assert.True(t, inv.InvoiceBalance.Equal(testdb.Dec("1100")))
	assert.Equal(t, invoiceModel.InvoiceStatusPartial, inv.InvoiceStatus)

	_, err = f.rec.Refund(context.Background(), f.admin(), p.PaymentID, RefundInput{})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestRefundFullOfflinePaymentReopensInvoice(t *testing.T) {
	f := newFixture(t)
	res, err := f.rec.RecordOffline(context.Background(), f.admin(), OfflineInput{
		InvoiceID: f.invoice.InvoiceID, Amount: testdb.Dec("1500"), Mode: model.PaymentModeCash,
	})
	require.NoError(t, err)

	_, err = f.rec.Refund(context.Background(), f.admin(), res.Payment.PaymentID, RefundInput{Reason: "duplicate deposit"})
	require.NoError(t, err)
	assert.Empty(t, f.gw.Refunds)

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoicePaidAmount.IsZero())
	assert.Equal(t, invoiceModel.InvoiceStatusPending, inv.InvoiceStatus)
}

func TestRefundGuards(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "500")
	ctx := context.Background()

	_, err := f.rec.Refund(ctx, f.admin(), p.PaymentID, RefundInput{})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	_, err = f.rec.Refund(ctx, f.admin(), p.PaymentID, RefundInput{Amount: dec("501")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	f.gw.Err = errors.New("refund rejected")
	_, err = f.rec.Refund(ctx, f.admin(), p.PaymentID, RefundInput{})
	assert.True(t, helper.IsKind(err, helper.KindGateway))
	assert.Equal(t, model.PaymentStatusSuccess, f.payment(t, p.PaymentID).PaymentStatus)
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "500")
	require.NoError(t, f.db.Model(&invoiceModel.InvoiceModel{}).
		Where("invoice_id = ?", f.invoice.InvoiceID).
		Update("invoice_due_date", t0.AddDate(0, 0, -3)).Error)

	f.advance(10 * time.Minute)
	res, err := f.rec.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Overdue)
	assert.Zero(t, res.Cancelled)
	assert.Equal(t, model.PaymentStatusPending, f.payment(t, p.PaymentID).PaymentStatus)

	f.advance(30 * time.Minute)
	res, err = f.rec.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Overdue)
	assert.EqualValues(t, 1, res.Cancelled)
	assert.Equal(t, model.PaymentStatusCancelled, f.payment(t, p.PaymentID).PaymentStatus)
	assert.Equal(t, invoiceModel.InvoiceStatusOverdue, testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID).InvoiceStatus)
}

func TestStaleSweepAge(t *testing.T) {
	assert.Equal(t, 30*time.Minute, staleSweepAge(time.Minute, 30*time.Minute))
	assert.Equal(t, time.Hour, staleSweepAge(time.Hour, 30*time.Minute))
}

func TestRefundFollowsGatewayPrecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.pending(t, "500")
	_, err := f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)

	f.gw.Scale = 0
	_, err = f.rec.Refund(ctx, f.admin(), p.PaymentID, RefundInput{Amount: dec("100.25")})
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)
	assert.Empty(t, f.gw.Refunds)

	_, err = f.rec.Refund(ctx, f.admin(), p.PaymentID, RefundInput{Amount: dec("100")})
	require.NoError(t, err)
	require.Len(t, f.gw.Refunds, 1)
}
