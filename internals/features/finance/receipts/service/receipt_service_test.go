package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/databases/testdb"
	paymentModel "collegefee_backend/internals/features/finance/payments/model"
	"collegefee_backend/internals/features/finance/receipts/model"
	"collegefee_backend/internals/features/finance/receipts/render"
	"collegefee_backend/internals/features/finance/receipts/store"
)

func paidPayment(t *testing.T, db *gorm.DB) paymentModel.PaymentModel {
	t.Helper()
	st := testdb.Student(t, db, testdb.StudentOpts{Department: "ECE"})
	inv := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "1000"})
	paid := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	txn := "INV-TEST-1"
	p := paymentModel.PaymentModel{
		PaymentInvoiceID:     inv.InvoiceID,
		PaymentStudentID:     st.StudentID,
		PaymentAmount:        testdb.Dec("1000"),
		PaymentMode:          paymentModel.PaymentModeGateway,
		PaymentStatus:        paymentModel.PaymentStatusSuccess,
		PaymentTransactionID: &txn,
		PaymentPaidAt:        &paid,
		Components: []paymentModel.PaymentComponentModel{{
			PaymentComponentInvoiceComponentID: inv.Components[0].InvoiceComponentID,
			PaymentComponentName:               "Tuition",
			PaymentComponentAmount:             testdb.Dec("1000"),
		}},
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestNumberForIsStable(t *testing.T) {
	id := uuid.MustParse("0f8a3c2e-1b4d-4e6f-9a7b-123456789abc")
	assert.Equal(t, "RCPT-0F8A3C2E1B4D4E6F", NumberFor(id))
	assert.Equal(t, NumberFor(id), NumberFor(id))
}

func TestEmitIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	p := paidPayment(t, db)
	e := NewEmitter(db, nil, nil, "INR", zap.NewNop())
	ctx := context.Background()

	n1, created, err := e.Emit(ctx, p.PaymentID, p.PaymentAmount)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, NumberFor(p.PaymentID), n1)

	n2, created, err := e.Emit(ctx, p.PaymentID, p.PaymentAmount)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, n1, n2)

	var count int64
	require.NoError(t, db.Model(&model.ReceiptModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEmitStoresHTMLDocument(t *testing.T) {
	db := testdb.Open(t)
	p := paidPayment(t, db)
	r, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	s, err := store.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	e := NewEmitter(db, r, s, "INR", zap.NewNop())

	number, _, err := e.Emit(context.Background(), p.PaymentID, p.PaymentAmount)
	require.NoError(t, err)

	rc, err := GetByPayment(context.Background(), db, p.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, rc.ReceiptDocumentKey)
	assert.True(t, strings.HasSuffix(*rc.ReceiptDocumentKey, number+".html"))

	body, err := os.ReadFile(*rc.ReceiptDocumentKey)
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, number)
	assert.Contains(t, html, "Tuition")
	assert.Contains(t, html, "1000.00")
	assert.Contains(t, html, p.PaymentReference)
}

func TestRenderWebP(t *testing.T) {
	r := &render.WebPRenderer{}
	out, err := r.Render(context.Background(), render.Document{
		ReceiptNumber: "RCPT-0000000000000001",
		StudentName:   "Student",
		Amount:        testdb.Dec("500"),
		Currency:      "INR",
		Lines:         []render.Line{{Name: "Library", Amount: testdb.Dec("500")}},
	})
	require.NoError(t, err)
	require.Greater(t, len(out), 12)
	assert.Equal(t, "RIFF", string(out[:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))
}

func TestListForStudent(t *testing.T) {
	db := testdb.Open(t)
	p := paidPayment(t, db)
	e := NewEmitter(db, nil, nil, "INR", zap.NewNop())
	_, _, err := e.Emit(context.Background(), p.PaymentID, p.PaymentAmount)
	require.NoError(t, err)

	rows, err := ListForStudent(context.Background(), db, p.PaymentStudentID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = ListForStudent(context.Background(), db, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = GetByPayment(context.Background(), db, uuid.New())
	assert.Error(t, err)
}
