// file: internals/features/finance/fees/service/template_service.go
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/fees/model"
	helper "collegefee_backend/internals/helpers"
)

type TemplateLineInput struct {
	ComponentID uuid.UUID
	Override    decimal.NullDecimal
}

type TemplateInput struct {
	Name          string
	AdmissionMode *string
	Department    *string
	FeeType       model.FeeType
	AcademicYear  string
	IsActive      *bool
	Lines         []TemplateLineInput
}

type TemplateFilter struct {
	AcademicYear  string
	AdmissionMode string
	Department    string
	ActiveOnly    bool
}

func normalizeOpt(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func CreateTemplate(ctx context.Context, db *gorm.DB, in TemplateInput) (*model.FeeTemplateModel, error) {
	name := strings.TrimSpace(in.Name)
	year := strings.TrimSpace(in.AcademicYear)
	if name == "" || year == "" {
		return nil, helper.Validation("template name and academic_year are required")
	}
	if in.FeeType == "" {
		in.FeeType = model.FeeTypeAnnual
	}
	if !in.FeeType.Valid() {
		return nil, helper.Validation("invalid fee_type %q", in.FeeType)
	}

	t := &model.FeeTemplateModel{
		FeeTemplateName:          name,
		FeeTemplateAdmissionMode: normalizeOpt(in.AdmissionMode),
		FeeTemplateDepartment:    normalizeOpt(in.Department),
		FeeTemplateFeeType:       in.FeeType,
		FeeTemplateAcademicYear:  year,
	}
	active := in.IsActive == nil || *in.IsActive
	t.FeeTemplateIsActive = active

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return helper.Internal(err, "create template")
		}
		// gorm skips zero values for columns with a default and reads the
		// default back into t, so branch on the requested value.
		if !active {
			if err := tx.Model(t).Update("fee_template_is_active", false).Error; err != nil {
				return helper.Internal(err, "create template")
			}
			t.FeeTemplateIsActive = false
		}
		for _, l := range in.Lines {
			if err := addLine(tx, t.FeeTemplateID, l); err != nil {
				return err
			}
		}
		total, err := RecomputeTemplateTotal(tx, t.FeeTemplateID)
		if err != nil {
			return err
		}
		t.FeeTemplateTotalAmount = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetTemplate(ctx, db, t.FeeTemplateID)
}

// UpdateTemplate patches descriptive fields; lines change through the line operations.
func UpdateTemplate(ctx context.Context, db *gorm.DB, id uuid.UUID, in TemplateInput) (*model.FeeTemplateModel, error) {
	updates := map[string]any{}
	if v := strings.TrimSpace(in.Name); v != "" {
		updates["fee_template_name"] = v
	}
	if v := strings.TrimSpace(in.AcademicYear); v != "" {
		updates["fee_template_academic_year"] = v
	}
	if in.FeeType != "" {
		if !in.FeeType.Valid() {
			return nil, helper.Validation("invalid fee_type %q", in.FeeType)
		}
		updates["fee_template_fee_type"] = in.FeeType
	}
	if in.AdmissionMode != nil {
		updates["fee_template_admission_mode"] = normalizeOpt(in.AdmissionMode)
	}
	if in.Department != nil {
		updates["fee_template_department"] = normalizeOpt(in.Department)
	}
	if in.IsActive != nil {
		updates["fee_template_is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		res := db.WithContext(ctx).Model(&model.FeeTemplateModel{}).Where("fee_template_id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, helper.Internal(res.Error, "update template")
		}
		if res.RowsAffected == 0 {
			return nil, helper.NotFound("fee template not found")
		}
	}
	return GetTemplate(ctx, db, id)
}

func addLine(tx *gorm.DB, templateID uuid.UUID, l TemplateLineInput) error {
	if l.Override.Valid {
		if err := validateAmount("amount_override", l.Override.Decimal); err != nil {
			return err
		}
		l.Override.Decimal = l.Override.Decimal.Round(2)
	}
	var n int64
	if err := tx.Model(&model.FeeComponentModel{}).Where("fee_component_id = ?", l.ComponentID).Count(&n).Error; err != nil {
		return helper.Internal(err, "check component")
	}
	if n == 0 {
		return helper.NotFound("fee component %s not found", l.ComponentID)
	}
	row := &model.FeeTemplateComponentModel{
		FeeTemplateComponentTemplateID:  templateID,
		FeeTemplateComponentComponentID: l.ComponentID,
		FeeTemplateComponentOverride:    l.Override,
	}
	if err := tx.Create(row).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.Duplicate("component %s is already part of the template", l.ComponentID)
		}
		return helper.Internal(err, "add template component")
	}
	return nil
}

func ensureTemplate(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.FeeTemplateModel{}).Where("fee_template_id = ?", id).Count(&n).Error; err != nil {
		return helper.Internal(err, "check template")
	}
	if n == 0 {
		return helper.NotFound("fee template not found")
	}
	return nil
}

func AddTemplateComponent(ctx context.Context, db *gorm.DB, templateID uuid.UUID, l TemplateLineInput) (*model.FeeTemplateModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTemplate(tx, templateID); err != nil {
			return err
		}
		if err := addLine(tx, templateID, l); err != nil {
			return err
		}
		_, err := RecomputeTemplateTotal(tx, templateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return GetTemplate(ctx, db, templateID)
}

func RemoveTemplateComponent(ctx context.Context, db *gorm.DB, templateID, componentID uuid.UUID) (*model.FeeTemplateModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("fee_template_component_template_id = ? AND fee_template_component_component_id = ?", templateID, componentID).
			Delete(&model.FeeTemplateComponentModel{})
		if res.Error != nil {
			return helper.Internal(res.Error, "remove template component")
		}
		if res.RowsAffected == 0 {
			return helper.NotFound("component is not part of the template")
		}
		_, err := RecomputeTemplateTotal(tx, templateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return GetTemplate(ctx, db, templateID)
}

// SetTemplateOverride sets or clears (Valid=false) the per-template price of a component.
func SetTemplateOverride(ctx context.Context, db *gorm.DB, templateID, componentID uuid.UUID, override decimal.NullDecimal) (*model.FeeTemplateModel, error) {
	if override.Valid {
		if err := validateAmount("amount_override", override.Decimal); err != nil {
			return nil, err
		}
		override.Decimal = override.Decimal.Round(2)
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FeeTemplateComponentModel{}).
			Where("fee_template_component_template_id = ? AND fee_template_component_component_id = ?", templateID, componentID).
			Update("fee_template_component_amount_override", override)
		if res.Error != nil {
			return helper.Internal(res.Error, "set override")
		}
		if res.RowsAffected == 0 {
			return helper.NotFound("component is not part of the template")
		}
		_, err := RecomputeTemplateTotal(tx, templateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return GetTemplate(ctx, db, templateID)
}

func GetTemplate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.FeeTemplateModel, error) {
	var t model.FeeTemplateModel
	err := db.WithContext(ctx).
		Preload("Lines", func(q *gorm.DB) *gorm.DB { return q.Order("fee_template_component_id ASC") }).
		Preload("Lines.Component").
		Where("fee_template_id = ?", id).
		Take(&t).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("fee template not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load template")
	}
	return &t, nil
}

func ListTemplates(ctx context.Context, db *gorm.DB, f TemplateFilter) ([]model.FeeTemplateModel, error) {
	q := db.WithContext(ctx).Model(&model.FeeTemplateModel{})
	if f.AcademicYear != "" {
		q = q.Where("fee_template_academic_year = ?", f.AcademicYear)
	}
	if f.AdmissionMode != "" {
		q = q.Where("fee_template_admission_mode = ?", f.AdmissionMode)
	}
	if f.Department != "" {
		q = q.Where("fee_template_department = ?", f.Department)
	}
	if f.ActiveOnly {
		q = q.Where("fee_template_is_active = ?", true)
	}
	var rows []model.FeeTemplateModel
	if err := q.Order("fee_template_academic_year DESC, fee_template_name ASC").Find(&rows).Error; err != nil {
		return nil, helper.Internal(err, "list templates")
	}
	return rows, nil
}

// TemplateLines returns the priced lines of a template in stable order.
func TemplateLines(tx *gorm.DB, templateID uuid.UUID) ([]Line, error) {
	rows, err := loadLines(tx, templateID)
	if err != nil {
		return nil, helper.Internal(err, "load template lines")
	}
	out := make([]Line, 0, len(rows))
	for _, r := range rows {
		name := ""
		if r.Component != nil {
			name = r.Component.FeeComponentName
		}
		out = append(out, Line{
			ComponentID: r.FeeTemplateComponentComponentID,
			Name:        name,
			Amount:      r.EffectiveAmount(),
		})
	}
	return out, nil
}

// MatchTemplate picks the most specific active template for a student's cohort.
// A template scoped to both department and admission mode beats a partially scoped one.
func MatchTemplate(ctx context.Context, db *gorm.DB, academicYear, admissionMode, department string) (*model.FeeTemplateModel, error) {
	var candidates []model.FeeTemplateModel
	err := db.WithContext(ctx).
		Where("fee_template_academic_year = ? AND fee_template_is_active = ?", academicYear, true).
		Where("fee_template_admission_mode IS NULL OR fee_template_admission_mode = ?", admissionMode).
		Where("fee_template_department IS NULL OR fee_template_department = ?", department).
		Order("fee_template_created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, helper.Internal(err, "match template")
	}

	var best *model.FeeTemplateModel
	bestScore := -1
	for i := range candidates {
		score := 0
		if candidates[i].FeeTemplateAdmissionMode != nil {
			score++
		}
		if candidates[i].FeeTemplateDepartment != nil {
			score++
		}
		if score > bestScore {
			best, bestScore = &candidates[i], score
		}
	}
	if best == nil {
		return nil, helper.NotFound("no active fee template for %s/%s in %s", admissionMode, department, academicYear)
	}
	return best, nil
}
