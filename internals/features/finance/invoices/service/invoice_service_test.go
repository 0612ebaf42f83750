package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"collegefee_backend/internals/databases/testdb"
	"collegefee_backend/internals/features/finance/invoices/model"
	paymentModel "collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
)

var now = time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC)

func lines(pairs ...string) []InvoiceLine {
	out := make([]InvoiceLine, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, InvoiceLine{Name: pairs[i], Amount: testdb.Dec(pairs[i+1])})
	}
	return out
}

func generate(t *testing.T, db *gorm.DB, in GenerateInput) (*model.InvoiceModel, error) {
	t.Helper()
	var inv *model.InvoiceModel
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = Generate(tx, in)
		return err
	})
	return inv, err
}

func TestParseInvoiceSeq(t *testing.T) {
	n, ok := ParseInvoiceSeq("INV000042")
	assert.True(t, ok)
	assert.EqualValues(t, 42, n)

	n, ok = ParseInvoiceSeq("INV1234567")
	assert.True(t, ok)
	assert.EqualValues(t, 1234567, n)

	for _, bad := range []string{"", "INV12", "INVABCDEF", "XINV000001", "INV000001-A"} {
		_, ok := ParseInvoiceSeq(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, "INV000043", FormatInvoiceNumber(43))
}

func TestNextInvoiceNumber(t *testing.T) {
	db := testdb.Open(t)
	next, err := NextInvoiceNumber(db)
	require.NoError(t, err)
	assert.Equal(t, FirstInvoiceNumber, next)

	st := testdb.Student(t, db, testdb.StudentOpts{})
	inv := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "100"})
	require.NoError(t, db.Model(&model.InvoiceModel{}).Where("invoice_id = ?", inv.InvoiceID).
		Update("invoice_number", "INV000999").Error)
	other := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "100"})
	require.NoError(t, db.Model(&model.InvoiceModel{}).Where("invoice_id = ?", other.InvoiceID).
		Update("invoice_number", "INVOICE-LEGACY").Error)

	next, err = NextInvoiceNumber(db)
	require.NoError(t, err)
	assert.Equal(t, "INV001000", next)
}

func TestNextInvoiceNumberIgnoresManyLegacyNumbers(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})
	renumber := func(number string) {
		inv := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "100"})
		require.NoError(t, db.Model(&model.InvoiceModel{}).Where("invoice_id = ?", inv.InvoiceID).
			Update("invoice_number", number).Error)
	}
	renumber("INV900041")
	for i := 0; i < 60; i++ {
		renumber(fmt.Sprintf("INVOICE-LEGACY-%05d", i))
	}
	renumber("INV12AB99")

	next, err := NextInvoiceNumber(db)
	require.NoError(t, err)
	assert.Equal(t, "INV900042", next)
}

func TestGenerateCreatesAndNumbers(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})

	first, err := generate(t, db, GenerateInput{
		StudentID: st.StudentID, AcademicYear: "2025-26", Semester: 1,
		InvoiceType: model.InvoiceTypeSemester, Lines: lines("Tuition", "25000", "Exam", "1500.50"), Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, FirstInvoiceNumber, first.InvoiceNumber)
	assert.True(t, first.InvoiceTotalAmount.Equal(testdb.Dec("26500.50")))
	assert.Equal(t, model.InvoiceStatusPending, first.InvoiceStatus)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), first.InvoiceDueDate)

	second, err := generate(t, db, GenerateInput{
		StudentID: st.StudentID, AcademicYear: "2025-26", Semester: 2,
		InvoiceType: model.InvoiceTypeSemester, Lines: lines("Tuition", "25000"), Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "INV000002", second.InvoiceNumber)

	inv := testdb.ReloadInvoice(t, db, first.InvoiceID)
	require.Len(t, inv.Components, 2)
	assert.Equal(t, "Tuition", inv.Components[0].InvoiceComponentName)
	assert.Equal(t, "Exam", inv.Components[1].InvoiceComponentName)
	assert.True(t, inv.Components[1].InvoiceComponentBalance.Equal(testdb.Dec("1500.50")))
}

func TestGenerateReplacesUnpaidInvoice(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})
	in := GenerateInput{
		StudentID: st.StudentID, AcademicYear: "2025-26", Semester: 1,
		InvoiceType: model.InvoiceTypeAnnual, Lines: lines("Tuition", "1000"), Now: now,
	}
	first, err := generate(t, db, in)
	require.NoError(t, err)

	in.Lines = lines("Tuition", "1200", "Hostel", "800")
	again, err := generate(t, db, in)
	require.NoError(t, err)
	assert.Equal(t, first.InvoiceID, again.InvoiceID)
	assert.Equal(t, first.InvoiceNumber, again.InvoiceNumber)

	inv := testdb.ReloadInvoice(t, db, first.InvoiceID)
	assert.True(t, inv.InvoiceTotalAmount.Equal(testdb.Dec("2000")))
	assert.True(t, inv.InvoiceBalance.Equal(testdb.Dec("2000")))
	assert.Len(t, inv.Components, 2)

	var n int64
	require.NoError(t, db.Model(&model.InvoiceModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGenerateRefusesInvoiceWithPayments(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})
	in := GenerateInput{
		StudentID: st.StudentID, AcademicYear: "2025-26", Semester: 1,
		InvoiceType: model.InvoiceTypeAnnual, Lines: lines("Tuition", "1000"), Now: now,
	}
	first, err := generate(t, db, in)
	require.NoError(t, err)
	require.NoError(t, ApplyPayment(db, first.InvoiceID, testdb.Dec("100")))

	_, err = generate(t, db, in)
	assert.True(t, helper.IsKind(err, helper.KindDuplicate))
}

func TestGenerateRefusesInvoiceWithOpenSession(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})
	in := GenerateInput{
		StudentID: st.StudentID, AcademicYear: "2025-26", Semester: 1,
		InvoiceType: model.InvoiceTypeAnnual, Lines: lines("Tuition", "1000", "Library", "200"), Now: now,
	}
	first, err := generate(t, db, in)
	require.NoError(t, err)

	session := "order-open-1"
	p := paymentModel.PaymentModel{
		PaymentInvoiceID:     first.InvoiceID,
		PaymentStudentID:     st.StudentID,
		PaymentAmount:        testdb.Dec("200"),
		PaymentMode:          paymentModel.PaymentModeGateway,
		PaymentStatus:        paymentModel.PaymentStatusPending,
		PaymentTransactionID: &session,
		PaymentCreatedAt:     now,
	}
	require.NoError(t, db.Create(&p).Error)

	in.Lines = lines("Tuition", "1500")
	_, err = generate(t, db, in)
	assert.True(t, helper.IsKind(err, helper.KindDuplicate), "got %v", err)
	assert.Len(t, testdb.ReloadInvoice(t, db, first.InvoiceID).Components, 2)

	require.NoError(t, db.Model(&paymentModel.PaymentModel{}).Where("payment_id = ?", p.PaymentID).
		Update("payment_status", paymentModel.PaymentStatusCancelled).Error)
	again, err := generate(t, db, in)
	require.NoError(t, err)
	assert.Equal(t, first.InvoiceID, again.InvoiceID)
	assert.True(t, again.InvoiceTotalAmount.Equal(testdb.Dec("1500")))
}

func TestGenerateValidation(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})

	_, err := generate(t, db, GenerateInput{StudentID: st.StudentID, Lines: lines("Tuition", "1")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = generate(t, db, GenerateInput{StudentID: st.StudentID, AcademicYear: "2025-26", Lines: lines("Tuition", "-1")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = generate(t, db, GenerateInput{StudentID: st.StudentID, AcademicYear: "2025-26", Lines: lines(" ", "1")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestCustomStructureInvoice(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{AdmissionMode: "Management"})
	ctx := context.Background()

	_, err := SaveCustomStructure(ctx, db, CustomStructureInput{
		StudentID: st.StudentID, AcademicYear: "2025-26",
		Lines: []model.CustomFeeLine{{Name: "Tuition", Amount: testdb.Dec("1")}, {Name: "tuition", Amount: testdb.Dec("2")}},
	})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	s, err := SaveCustomStructure(ctx, db, CustomStructureInput{
		StudentID: st.StudentID, AcademicYear: "2025-26",
		Lines: []model.CustomFeeLine{{Name: "Tuition", Amount: testdb.Dec("90000")}, {Name: "Hostel", Amount: testdb.Dec("30000")}},
	})
	require.NoError(t, err)
	assert.True(t, s.CustomFeeTotalAmount.Equal(testdb.Dec("120000")))

	s, err = SaveCustomStructure(ctx, db, CustomStructureInput{
		StudentID: st.StudentID, AcademicYear: "2025-26",
		Lines: []model.CustomFeeLine{{Name: "Tuition", Amount: testdb.Dec("80000")}},
	})
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&model.CustomFeeStructureModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := GetCustomStructure(ctx, db, st.StudentID)
	require.NoError(t, err)
	var inv *model.InvoiceModel
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		inv, err = GenerateFromCustom(tx, stored, 0, nil, now)
		return err
	}))
	assert.Equal(t, model.InvoiceTypeCustom, inv.InvoiceType)
	assert.True(t, inv.InvoiceTotalAmount.Equal(s.CustomFeeTotalAmount))
}

func TestDeriveStatus(t *testing.T) {
	z := decimal.Zero
	assert.Equal(t, model.InvoiceStatusPending, DeriveStatus(z, testdb.Dec("100")))
	assert.Equal(t, model.InvoiceStatusPartial, DeriveStatus(testdb.Dec("40"), testdb.Dec("60")))
	assert.Equal(t, model.InvoiceStatusPaid, DeriveStatus(testdb.Dec("100"), z))
}

func TestMoneyMovement(t *testing.T) {
	db := testdb.Open(t)
	st := testdb.Student(t, db, testdb.StudentOpts{})
	inv := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "1000"})

	require.NoError(t, ApplyPayment(db, inv.InvoiceID, testdb.Dec("400")))
	got := testdb.ReloadInvoice(t, db, inv.InvoiceID)
	assert.Equal(t, model.InvoiceStatusPartial, got.InvoiceStatus)

	require.NoError(t, ApplyPayment(db, inv.InvoiceID, testdb.Dec("600")))
	got = testdb.ReloadInvoice(t, db, inv.InvoiceID)
	assert.Equal(t, model.InvoiceStatusPaid, got.InvoiceStatus)
	assert.True(t, got.InvoiceBalance.IsZero())

	require.NoError(t, ApplyRefund(db, inv.InvoiceID, testdb.Dec("1000")))
	got = testdb.ReloadInvoice(t, db, inv.InvoiceID)
	assert.Equal(t, model.InvoiceStatusPending, got.InvoiceStatus)
	assert.True(t, got.InvoiceBalance.Equal(testdb.Dec("1000")))

	assert.True(t, helper.IsKind(ApplyPayment(db, st.StudentID, testdb.Dec("1")), helper.KindNotFound))
}

func TestMarkOverdueAndPatch(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	st := testdb.Student(t, db, testdb.StudentOpts{})
	late := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "1000"})
	current := testdb.Invoice(t, db, st.StudentID, testdb.Line{Name: "Tuition", Amount: "1000"})
	past := now.AddDate(0, 0, -1)
	_, err := PatchInvoice(ctx, db, late.InvoiceID, PatchInput{DueDate: &past})
	require.NoError(t, err)

	n, err := MarkOverdue(ctx, db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, model.InvoiceStatusOverdue, testdb.ReloadInvoice(t, db, late.InvoiceID).InvoiceStatus)
	assert.Equal(t, model.InvoiceStatusPending, testdb.ReloadInvoice(t, db, current.InvoiceID).InvoiceStatus)

	cancelled := model.InvoiceStatusCancelled
	got, err := PatchInvoice(ctx, db, current.InvoiceID, PatchInput{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusCancelled, got.InvoiceStatus)

	paid := model.InvoiceStatusPaid
	_, err = PatchInvoice(ctx, db, late.InvoiceID, PatchInput{Status: &paid})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	require.NoError(t, ApplyPayment(db, late.InvoiceID, testdb.Dec("10")))
	_, err = PatchInvoice(ctx, db, late.InvoiceID, PatchInput{Status: &cancelled})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}
