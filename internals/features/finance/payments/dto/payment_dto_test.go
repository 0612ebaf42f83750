package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"collegefee_backend/internals/features/finance/payments/model"
)

func TestPaymentResponseShowsCheckoutOnlyWhilePending(t *testing.T) {
	url := "https://pay.example.test/INV000001-x"
	exp := time.Now().Add(30 * time.Minute)
	p := model.PaymentModel{
		PaymentID:          uuid.New(),
		PaymentAmount:      decimal.NewFromInt(700),
		PaymentStatus:      model.PaymentStatusPending,
		PaymentCheckoutURL: &url,
		PaymentExpiresAt:   &exp,
	}
	got := ToPaymentResponse(p)
	assert.Equal(t, &url, got.CheckoutURL)
	assert.NotNil(t, got.ExpiresAt)

	p.PaymentStatus = model.PaymentStatusSuccess
	got = ToPaymentResponse(p)
	assert.Nil(t, got.CheckoutURL)
	assert.Nil(t, got.ExpiresAt)
	assert.Nil(t, got.RefundedAmount)
}

func TestPaymentResponseCarriesRefundAndAllocations(t *testing.T) {
	p := model.PaymentModel{
		PaymentID:           uuid.New(),
		PaymentAmount:       decimal.NewFromInt(1000),
		PaymentStatus:       model.PaymentStatusRefunded,
		PaymentRefundAmount: decimal.NewNullDecimal(decimal.NewFromInt(600)),
		Components: []model.PaymentComponentModel{
			{PaymentComponentName: "Tuition", PaymentComponentAmount: decimal.NewFromInt(1000)},
		},
	}
	got := ToPaymentResponse(p)
	if assert.NotNil(t, got.RefundedAmount) {
		assert.True(t, got.RefundedAmount.Equal(decimal.NewFromInt(600)))
	}
	if assert.Len(t, got.ComponentDetails, 1) {
		assert.Equal(t, "Tuition", got.ComponentDetails[0].ComponentName)
	}
}

func TestComponentPaymentRequestSelections(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	req := ComponentPaymentRequest{ComponentPayments: []ComponentPick{
		{ComponentID: a, Amount: decimal.NewFromInt(300)},
		{ComponentID: b, Amount: decimal.NewFromInt(400)},
	}}
	sel := req.Selections()
	if assert.Len(t, sel, 2) {
		assert.Equal(t, a, sel[0].ComponentID)
		assert.True(t, sel[1].Amount.Equal(decimal.NewFromInt(400)))
	}
}
