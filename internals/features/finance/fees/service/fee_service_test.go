package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"collegefee_backend/internals/databases/testdb"
	"collegefee_backend/internals/features/finance/fees/model"
	helper "collegefee_backend/internals/helpers"
)

func component(t *testing.T, db *gorm.DB, name, amount string) *model.FeeComponentModel {
	t.Helper()
	c, err := CreateComponent(context.Background(), db, ComponentInput{Name: name, Amount: testdb.Dec(amount)})
	require.NoError(t, err)
	return c
}

func ptr(s string) *string { return &s }

func TestComputeTemplateTotal(t *testing.T) {
	base := &model.FeeComponentModel{FeeComponentAmount: testdb.Dec("1000")}
	lines := []model.FeeTemplateComponentModel{
		{Component: base},
		{Component: base, FeeTemplateComponentOverride: decimal.NewNullDecimal(testdb.Dec("250.50"))},
		{},
	}
	assert.True(t, ComputeTemplateTotal(lines).Equal(testdb.Dec("1250.50")))
	assert.True(t, ComputeTemplateTotal(nil).IsZero())
}

func TestCreateTemplateTotalsLines(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	tuition := component(t, db, "Tuition", "50000")
	lab := component(t, db, "Lab", "5000")

	tpl, err := CreateTemplate(ctx, db, TemplateInput{
		Name:         "CSE KCET 2025",
		AcademicYear: "2025-26",
		Department:   ptr("CSE"),
		Lines: []TemplateLineInput{
			{ComponentID: tuition.FeeComponentID},
			{ComponentID: lab.FeeComponentID, Override: decimal.NewNullDecimal(testdb.Dec("3000"))},
		},
	})
	require.NoError(t, err)
	assert.True(t, tpl.FeeTemplateIsActive)
	assert.Equal(t, model.FeeTypeAnnual, tpl.FeeTemplateFeeType)
	assert.True(t, tpl.FeeTemplateTotalAmount.Equal(testdb.Dec("53000")))
	assert.Len(t, tpl.Lines, 2)

	tpl, err = SetTemplateOverride(ctx, db, tpl.FeeTemplateID, lab.FeeComponentID, decimal.NullDecimal{})
	require.NoError(t, err)
	assert.True(t, tpl.FeeTemplateTotalAmount.Equal(testdb.Dec("55000")))

	_, err = UpdateComponent(ctx, db, tuition.FeeComponentID, ComponentInput{Amount: testdb.Dec("52000")})
	require.NoError(t, err)
	tpl, err = GetTemplate(ctx, db, tpl.FeeTemplateID)
	require.NoError(t, err)
	assert.True(t, tpl.FeeTemplateTotalAmount.Equal(testdb.Dec("57000")))

	tpl, err = RemoveTemplateComponent(ctx, db, tpl.FeeTemplateID, tuition.FeeComponentID)
	require.NoError(t, err)
	assert.True(t, tpl.FeeTemplateTotalAmount.Equal(testdb.Dec("5000")))
}

func TestCreateTemplateInactive(t *testing.T) {
	db := testdb.Open(t)
	off := false
	tpl, err := CreateTemplate(context.Background(), db, TemplateInput{
		Name: "Draft", AcademicYear: "2025-26", IsActive: &off,
	})
	require.NoError(t, err)
	assert.False(t, tpl.FeeTemplateIsActive)
	assert.True(t, tpl.FeeTemplateTotalAmount.IsZero())

	stored, err := GetTemplate(context.Background(), db, tpl.FeeTemplateID)
	require.NoError(t, err)
	assert.False(t, stored.FeeTemplateIsActive)
}

func TestTemplateValidation(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	c := component(t, db, "Tuition", "100")

	_, err := CreateTemplate(ctx, db, TemplateInput{Name: "", AcademicYear: "2025-26"})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = CreateTemplate(ctx, db, TemplateInput{Name: "X", AcademicYear: "2025-26", FeeType: "monthly"})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = CreateTemplate(ctx, db, TemplateInput{Name: "X", AcademicYear: "2025-26",
		Lines: []TemplateLineInput{{ComponentID: c.FeeComponentID, Override: decimal.NewNullDecimal(testdb.Dec("-1"))}}})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	tpl, err := CreateTemplate(ctx, db, TemplateInput{Name: "X", AcademicYear: "2025-26",
		Lines: []TemplateLineInput{{ComponentID: c.FeeComponentID}}})
	require.NoError(t, err)
	_, err = AddTemplateComponent(ctx, db, tpl.FeeTemplateID, TemplateLineInput{ComponentID: c.FeeComponentID})
	assert.True(t, helper.IsKind(err, helper.KindDuplicate))
}

func TestComponentRules(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	c := component(t, db, "Library", "500")

	_, err := CreateComponent(ctx, db, ComponentInput{Name: "Library", Amount: testdb.Dec("10")})
	assert.True(t, helper.IsKind(err, helper.KindDuplicate))

	_, err = CreateComponent(ctx, db, ComponentInput{Name: "Sports", Amount: testdb.Dec("10.999")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = CreateTemplate(ctx, db, TemplateInput{Name: "T", AcademicYear: "2025-26",
		Lines: []TemplateLineInput{{ComponentID: c.FeeComponentID}}})
	require.NoError(t, err)
	assert.True(t, helper.IsKind(DeleteComponent(ctx, db, c.FeeComponentID), helper.KindDuplicate))
}

func TestMatchTemplatePrefersMostSpecific(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	_, err := CreateTemplate(ctx, db, TemplateInput{Name: "Generic", AcademicYear: "2025-26"})
	require.NoError(t, err)
	_, err = CreateTemplate(ctx, db, TemplateInput{Name: "CSE", AcademicYear: "2025-26", Department: ptr("CSE")})
	require.NoError(t, err)
	_, err = CreateTemplate(ctx, db, TemplateInput{Name: "CSE COMEDK", AcademicYear: "2025-26",
		Department: ptr("CSE"), AdmissionMode: ptr("COMEDK")})
	require.NoError(t, err)

	got, err := MatchTemplate(ctx, db, "2025-26", "COMEDK", "CSE")
	require.NoError(t, err)
	assert.Equal(t, "CSE COMEDK", got.FeeTemplateName)

	got, err = MatchTemplate(ctx, db, "2025-26", "KCET", "CSE")
	require.NoError(t, err)
	assert.Equal(t, "CSE", got.FeeTemplateName)

	got, err = MatchTemplate(ctx, db, "2025-26", "KCET", "ECE")
	require.NoError(t, err)
	assert.Equal(t, "Generic", got.FeeTemplateName)

	_, err = MatchTemplate(ctx, db, "2030-31", "KCET", "ECE")
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}
