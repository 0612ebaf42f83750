package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"collegefee_backend/internals/databases/testdb"
	"collegefee_backend/internals/features/finance/assignments/model"
	feeModel "collegefee_backend/internals/features/finance/fees/model"
	feeSvc "collegefee_backend/internals/features/finance/fees/service"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	helper "collegefee_backend/internals/helpers"
)

type feeSetup struct {
	template *feeModel.FeeTemplateModel
	tuition  *feeModel.FeeComponentModel
	library  *feeModel.FeeComponentModel
}

func setupTemplate(t *testing.T, db *gorm.DB, dept string) feeSetup {
	t.Helper()
	ctx := context.Background()
	tuition, err := feeSvc.CreateComponent(ctx, db, feeSvc.ComponentInput{Name: "Tuition " + dept, Amount: testdb.Dec("50000")})
	require.NoError(t, err)
	library, err := feeSvc.CreateComponent(ctx, db, feeSvc.ComponentInput{Name: "Library " + dept, Amount: testdb.Dec("2000")})
	require.NoError(t, err)
	in := feeSvc.TemplateInput{
		Name:         dept + " 2025",
		AcademicYear: "2025-26",
		Lines: []feeSvc.TemplateLineInput{
			{ComponentID: tuition.FeeComponentID},
			{ComponentID: library.FeeComponentID},
		},
	}
	if dept != "" {
		in.Department = &dept
	}
	tpl, err := feeSvc.CreateTemplate(ctx, db, in)
	require.NoError(t, err)
	return feeSetup{template: tpl, tuition: tuition, library: library}
}

func TestApplyOverridesReplacesAmount(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lines := []feeSvc.Line{
		{ComponentID: a, Name: "Tuition", Amount: testdb.Dec("50000")},
		{ComponentID: b, Name: "Library", Amount: testdb.Dec("2000")},
	}
	out, err := ApplyOverrides(lines, map[uuid.UUID]decimal.Decimal{a: testdb.Dec("45000")})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Amount.Equal(testdb.Dec("45000")))
	assert.True(t, out[1].Amount.Equal(testdb.Dec("2000")))

	_, err = ApplyOverrides(lines, map[uuid.UUID]decimal.Decimal{uuid.New(): testdb.Dec("1")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = ApplyOverrides(lines, map[uuid.UUID]decimal.Decimal{b: testdb.Dec("-1")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestAssignGeneratesInvoice(t *testing.T) {
	db := testdb.Open(t)
	fs := setupTemplate(t, db, "CSE")
	st := testdb.Student(t, db, testdb.StudentOpts{})

	res, err := Assign(context.Background(), db, AssignInput{
		StudentID:  st.StudentID,
		TemplateID: fs.template.FeeTemplateID,
		Overrides:  map[uuid.UUID]decimal.Decimal{fs.tuition.FeeComponentID: testdb.Dec("40000")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-26", res.Assignment.FeeAssignmentAcademicYear)
	assert.Equal(t, model.AssignmentIndividual, res.Assignment.FeeAssignmentType)

	inv := testdb.ReloadInvoice(t, db, res.Invoice.InvoiceID)
	assert.True(t, inv.InvoiceTotalAmount.Equal(testdb.Dec("42000")))
	assert.True(t, inv.InvoiceBalance.Equal(testdb.Dec("42000")))
	assert.Equal(t, invoiceModel.InvoiceStatusPending, inv.InvoiceStatus)
	assert.Len(t, inv.Components, 2)
	require.NotNil(t, inv.InvoiceAssignmentID)
	assert.Equal(t, res.Assignment.FeeAssignmentID, *inv.InvoiceAssignmentID)
}

func TestAssignRejectsDuplicateYear(t *testing.T) {
	db := testdb.Open(t)
	fs := setupTemplate(t, db, "CSE")
	st := testdb.Student(t, db, testdb.StudentOpts{})
	in := AssignInput{StudentID: st.StudentID, TemplateID: fs.template.FeeTemplateID}

	_, err := Assign(context.Background(), db, in)
	require.NoError(t, err)
	_, err = Assign(context.Background(), db, in)
	assert.True(t, errors.Is(err, ErrDuplicateAssignment))
	assert.True(t, helper.IsKind(err, helper.KindDuplicate))

	var n int64
	require.NoError(t, db.Model(&invoiceModel.InvoiceModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAssignInactiveOrMissing(t *testing.T) {
	db := testdb.Open(t)
	fs := setupTemplate(t, db, "CSE")
	st := testdb.Student(t, db, testdb.StudentOpts{})
	ctx := context.Background()

	_, err := Assign(ctx, db, AssignInput{StudentID: uuid.New(), TemplateID: fs.template.FeeTemplateID})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	off := false
	_, err = feeSvc.UpdateTemplate(ctx, db, fs.template.FeeTemplateID, feeSvc.TemplateInput{IsActive: &off})
	require.NoError(t, err)
	_, err = Assign(ctx, db, AssignInput{StudentID: st.StudentID, TemplateID: fs.template.FeeTemplateID})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestAutoAssignMatchesCohort(t *testing.T) {
	db := testdb.Open(t)
	setupTemplate(t, db, "")
	cse := setupTemplate(t, db, "CSE")
	st := testdb.Student(t, db, testdb.StudentOpts{Department: "CSE"})

	res, err := AutoAssign(context.Background(), db, st.StudentID, "2025-26", nil)
	require.NoError(t, err)
	assert.Equal(t, cse.template.FeeTemplateID, res.Assignment.FeeAssignmentTemplateID)
	assert.Equal(t, model.AssignmentAuto, res.Assignment.FeeAssignmentType)
}

func TestBulkAssign(t *testing.T) {
	db := testdb.Open(t)
	fs := setupTemplate(t, db, "CSE")
	a := testdb.Student(t, db, testdb.StudentOpts{Department: "CSE"})
	b := testdb.Student(t, db, testdb.StudentOpts{Department: "CSE"})
	testdb.Student(t, db, testdb.StudentOpts{Department: "ECE"})
	ctx := context.Background()

	_, err := Assign(ctx, db, AssignInput{StudentID: a.StudentID, TemplateID: fs.template.FeeTemplateID})
	require.NoError(t, err)

	dry, err := BulkAssign(ctx, db, BulkInput{TemplateID: fs.template.FeeTemplateID, DryRun: true})
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 1, dry.Matched)
	assert.Equal(t, []uuid.UUID{b.StudentID}, dry.StudentIDs)
	assert.Zero(t, dry.Assigned)

	var n int64
	require.NoError(t, db.Model(&model.FeeAssignmentModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	res, err := BulkAssign(ctx, db, BulkInput{TemplateID: fs.template.FeeTemplateID, Semester: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)
	assert.Empty(t, res.Failed)

	again, err := BulkAssign(ctx, db, BulkInput{TemplateID: fs.template.FeeTemplateID})
	require.NoError(t, err)
	assert.Zero(t, again.Matched)
}
