package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collegefee_backend/internals/databases/testdb"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	"collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
)

func TestCompleteAllocatesInPositionOrder(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "700")

	res, err := f.rec.Complete(context.Background(), p.PaymentID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	require.Len(t, res.Allocations, 1)
	assert.Equal(t, "Tuition", res.Allocations[0].PaymentComponentName)
	assert.True(t, res.Allocations[0].PaymentComponentAmount.Equal(testdb.Dec("700")))

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoicePaidAmount.Equal(testdb.Dec("700")))
	assert.True(t, inv.InvoiceBalance.Equal(testdb.Dec("800")))
	assert.Equal(t, invoiceModel.InvoiceStatusPartial, inv.InvoiceStatus)
	assert.True(t, inv.Components[0].InvoiceComponentBalance.Equal(testdb.Dec("300")))
	assert.True(t, inv.Components[1].InvoiceComponentBalance.Equal(testdb.Dec("500")))

	stored := f.payment(t, p.PaymentID)
	assert.Equal(t, model.PaymentStatusSuccess, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentPaidAt)
}

func TestCompleteSpillsIntoNextComponent(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "1200")

	res, err := f.rec.Complete(context.Background(), p.PaymentID)
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)
	assert.True(t, res.Allocations[0].PaymentComponentAmount.Equal(testdb.Dec("1000")))
	assert.True(t, res.Allocations[1].PaymentComponentAmount.Equal(testdb.Dec("200")))
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "1500")
	ctx := context.Background()

	_, err := f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	again, err := f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoicePaidAmount.Equal(testdb.Dec("1500")))
	assert.True(t, inv.InvoiceBalance.IsZero())
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, inv.InvoiceStatus)

	var rows int64
	require.NoError(t, f.db.Model(&model.PaymentComponentModel{}).
		Where("payment_component_payment_id = ?", p.PaymentID).Count(&rows).Error)
	assert.EqualValues(t, 2, rows)
}

func TestCompleteUnknownPayment(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.Complete(context.Background(), f.invoice.InvoiceID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestCompleteRejectsCancelledPayment(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "500")
	require.NoError(t, f.db.Model(&model.PaymentModel{}).
		Where("payment_id = ?", p.PaymentID).
		Update("payment_status", model.PaymentStatusCancelled).Error)

	_, err := f.rec.Complete(context.Background(), p.PaymentID)
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoicePaidAmount.IsZero())
}

func TestComponentPaymentHonoursSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tuition, library := f.invoice.Components[0], f.invoice.Components[1]

	res, err := f.rec.CreateComponentPayment(ctx, f.caller(), f.invoice.InvoiceID, []ComponentSelection{
		{ComponentID: library.InvoiceComponentID, Amount: testdb.Dec("400")},
		{ComponentID: tuition.InvoiceComponentID, Amount: testdb.Dec("300")},
	})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(testdb.Dec("700")))
	assert.True(t, res.IsPartial)

	done, err := f.rec.Complete(ctx, res.PaymentID)
	require.NoError(t, err)
	require.Len(t, done.Allocations, 2)
	assert.Equal(t, "Tuition", done.Allocations[0].PaymentComponentName)
	assert.True(t, done.Allocations[0].PaymentComponentAmount.Equal(testdb.Dec("300")))
	assert.Equal(t, "Library", done.Allocations[1].PaymentComponentName)
	assert.True(t, done.Allocations[1].PaymentComponentAmount.Equal(testdb.Dec("400")))

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.Components[0].InvoiceComponentBalance.Equal(testdb.Dec("700")))
	assert.True(t, inv.Components[1].InvoiceComponentBalance.Equal(testdb.Dec("100")))
}

func TestComponentPaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	library := f.invoice.Components[1]

	_, err := f.rec.CreateComponentPayment(ctx, f.caller(), f.invoice.InvoiceID, nil)
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.rec.CreateComponentPayment(ctx, f.caller(), f.invoice.InvoiceID, []ComponentSelection{
		{ComponentID: library.InvoiceComponentID, Amount: testdb.Dec("600")},
	})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.rec.CreateComponentPayment(ctx, f.caller(), f.invoice.InvoiceID, []ComponentSelection{
		{ComponentID: library.InvoiceComponentID, Amount: testdb.Dec("100")},
		{ComponentID: library.InvoiceComponentID, Amount: testdb.Dec("100")},
	})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.rec.CreateComponentPayment(ctx, f.caller(), f.invoice.InvoiceID, []ComponentSelection{
		{ComponentID: f.student.StudentID, Amount: testdb.Dec("100")},
	})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestSuccessNotifiesAndEmitsReceipt(t *testing.T) {
	f := newFixture(t)
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, f.student.StudentUserID, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	receipts := &stubReceipts{}
	f.rec.Notifier = n
	f.rec.Receipts = receipts

	p := f.pending(t, "1000")
	_, err := f.rec.Complete(context.Background(), p.PaymentID)
	require.NoError(t, err)

	assert.Contains(t, receipts.issued, p.PaymentID)
	n.AssertNumberOfCalls(t, "Notify", 2)
	first := n.Calls[0].Arguments.String(2)
	assert.Contains(t, first, "INR 1000.00")
	assert.Contains(t, first, "INR 500.00")

	_, err = f.rec.Complete(context.Background(), p.PaymentID)
	require.NoError(t, err)
	n.AssertNumberOfCalls(t, "Notify", 2)
}

func TestRepeatedCompletionRetriesMissingReceipt(t *testing.T) {
	f := newFixture(t)
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, f.student.StudentUserID, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	receipts := &stubReceipts{failFirst: 1}
	f.rec.Notifier = n
	f.rec.Receipts = receipts
	ctx := context.Background()

	p := f.pending(t, "1000")
	res, err := f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Empty(t, receipts.issued)
	n.AssertNumberOfCalls(t, "Notify", 1)

	res, err = f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Contains(t, receipts.issued, p.PaymentID)
	n.AssertNumberOfCalls(t, "Notify", 2)
	assert.Equal(t, []string{"receipt"}, n.Calls[1].Arguments.Get(3))

	_, err = f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, 3, receipts.calls)
	n.AssertNumberOfCalls(t, "Notify", 2)

	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoicePaidAmount.Equal(testdb.Dec("1000")))
}

func TestStatusPollRetriesMissingReceipt(t *testing.T) {
	f := newFixture(t)
	receipts := &stubReceipts{failFirst: 1}
	f.rec.Receipts = receipts
	ctx := context.Background()

	p := f.pending(t, "500")
	_, err := f.rec.Complete(ctx, p.PaymentID)
	require.NoError(t, err)
	require.Empty(t, receipts.issued)

	out, err := f.rec.CheckStatus(ctx, f.caller(), sessionOf(p))
	require.NoError(t, err)
	assert.False(t, out.Reconciled)
	assert.Contains(t, receipts.issued, p.PaymentID)
}
