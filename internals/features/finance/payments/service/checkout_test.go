package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegefee_backend/internals/constants"
	"collegefee_backend/internals/databases/testdb"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	"collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

func TestCheckoutDefaultsToFullBalance(t *testing.T) {
	f := newFixture(t)
	res, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, nil)
	require.NoError(t, err)

	assert.True(t, res.Amount.Equal(testdb.Dec("1500")))
	assert.False(t, res.IsPartial)
	assert.True(t, strings.HasPrefix(res.CheckoutURL, "https://pay.example.test/"))
	assert.True(t, strings.HasPrefix(res.SessionID, f.invoice.InvoiceNumber+"-"))
	assert.True(t, strings.HasPrefix(res.PaymentReference, "PAY-"))

	p := f.payment(t, res.PaymentID)
	assert.Equal(t, model.PaymentStatusPending, p.PaymentStatus)
	assert.Equal(t, model.PaymentModeGateway, p.PaymentMode)
	require.NotNil(t, p.PaymentTransactionID)
	assert.Equal(t, res.SessionID, *p.PaymentTransactionID)
}

func TestCheckoutPartialAmount(t *testing.T) {
	f := newFixture(t)
	res, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec("700"))
	require.NoError(t, err)
	assert.True(t, res.IsPartial)

	rest, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec("800"))
	require.NoError(t, err)
	assert.True(t, rest.IsPartial)
}

func TestCheckoutKeepsOpenSessionsWithinBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.pending(t, "700")

	_, err := f.rec.CreateCheckoutSession(ctx, f.caller(), f.invoice.InvoiceID, dec("1500"))
	require.Error(t, err)
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	b := f.pending(t, "800")
	for _, p := range []model.PaymentModel{a, b} {
		_, err := f.rec.Complete(ctx, p.PaymentID)
		require.NoError(t, err)
	}
	inv := testdb.ReloadInvoice(t, f.db, f.invoice.InvoiceID)
	assert.True(t, inv.InvoiceBalance.IsZero(), inv.InvoiceBalance.String())
	assert.Equal(t, invoiceModel.InvoiceStatusPaid, inv.InvoiceStatus)

	// an expired session frees its share of the balance
	f2 := newFixture(t)
	first := f2.pending(t, "1000")
	f2.advance(2 * f2.rec.Policy.StaleAfter)
	_, err = f2.rec.CreateCheckoutSession(ctx, f2.caller(), f2.invoice.InvoiceID, dec("1500"))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCancelled, f2.payment(t, first.PaymentID).PaymentStatus)
}

func TestCheckoutRejectsBadAmounts(t *testing.T) {
	cases := map[string]string{
		"zero":           "0",
		"negative":       "-5",
		"too precise":    "10.005",
		"below minimum":  "0.50",
		"above balance":  "1500.50",
		"far above owed": "99999",
	}
	for name, amount := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec(amount))
			assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)

			var n int64
			require.NoError(t, f.db.Model(&model.PaymentModel{}).Count(&n).Error)
			assert.Zero(t, n)
		})
	}
}

func TestCheckoutFollowsGatewayPrecision(t *testing.T) {
	f := newFixture(t)
	f.gw.Scale = 0
	ctx := context.Background()

	_, err := f.rec.CreateCheckoutSession(ctx, f.caller(), f.invoice.InvoiceID, dec("700.50"))
	require.Error(t, err)
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)
	assert.Contains(t, err.Error(), "whole number")

	_, err = f.rec.CreateComponentPayment(ctx, f.caller(), f.invoice.InvoiceID, []ComponentSelection{
		{ComponentID: f.invoice.Components[0].InvoiceComponentID, Amount: testdb.Dec("99.99")},
	})
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)

	var n int64
	require.NoError(t, f.db.Model(&model.PaymentModel{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = f.rec.CreateCheckoutSession(ctx, f.caller(), f.invoice.InvoiceID, dec("700"))
	assert.NoError(t, err)
}

func TestCheckoutOwnershipAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := testdb.Student(t, f.db, testdb.StudentOpts{})
	stranger := helperAuth.Caller{UserID: other.StudentUserID, Role: constants.RoleStudent}
	_, err := f.rec.CreateCheckoutSession(ctx, stranger, f.invoice.InvoiceID, nil)
	assert.True(t, helper.IsKind(err, helper.KindAuthorization))

	_, err = f.rec.CreateCheckoutSession(ctx, f.admin(), f.invoice.InvoiceID, nil)
	assert.True(t, helper.IsKind(err, helper.KindAuthorization))

	_, err = f.rec.CreateCheckoutSession(ctx, f.caller(), other.StudentID, nil)
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestCheckoutRejectsPaidInvoice(t *testing.T) {
	f := newFixture(t)
	p := f.pending(t, "1500")
	_, err := f.rec.Complete(context.Background(), p.PaymentID)
	require.NoError(t, err)

	_, err = f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, nil)
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestCheckoutDuplicateAmount(t *testing.T) {
	f := newFixture(t)
	first := f.pending(t, "500")

	_, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec("500"))
	require.Error(t, err)
	var ae *helper.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, helper.KindDuplicate, ae.Kind)
	assert.Equal(t, first.PaymentID, ae.Data["payment_id"])

	_, err = f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec("400"))
	assert.NoError(t, err)
}

func TestCheckoutRateLimit(t *testing.T) {
	f := newFixture(t)
	f.pending(t, "100")
	f.pending(t, "200")
	f.pending(t, "300")

	_, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec("400"))
	assert.True(t, helper.IsKind(err, helper.KindRateLimited))
}

func TestCheckoutCancelsStalePending(t *testing.T) {
	f := newFixture(t)
	old := f.pending(t, "500")

	f.advance(2 * time.Minute)
	res, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, dec("500"))
	require.NoError(t, err)
	assert.NotEqual(t, old.PaymentID, res.PaymentID)

	assert.Equal(t, model.PaymentStatusCancelled, f.payment(t, old.PaymentID).PaymentStatus)
	assert.Equal(t, model.PaymentStatusPending, f.payment(t, res.PaymentID).PaymentStatus)
}

func TestCheckoutGatewayFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.gw.Err = errors.New("provider down")

	_, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, nil)
	assert.True(t, helper.IsKind(err, helper.KindGateway))

	var n int64
	require.NoError(t, f.db.Model(&model.PaymentModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCancelStalePendingAcrossInvoices(t *testing.T) {
	f := newFixture(t)
	f.pending(t, "100")
	second := testdb.Invoice(t, f.db, f.student.StudentID, testdb.Line{Name: "Hostel", Amount: "800"})
	_, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), second.InvoiceID, nil)
	require.NoError(t, err)

	n, err := CancelStalePending(context.Background(), f.db, nil, t0.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
