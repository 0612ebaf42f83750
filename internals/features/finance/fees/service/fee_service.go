// file: internals/features/finance/fees/service/fee_service.go
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

// Line is a priced template component as seen by invoice generation.
type Line struct {
	ComponentID uuid.UUID
	Name        string
	Amount      decimal.Decimal
}

/* ===================== Totals ===================== */

// ComputeTemplateTotal sums override-or-base amounts. No lines means zero.
func ComputeTemplateTotal(lines []model.FeeTemplateComponentModel) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.EffectiveAmount())
	}
	return total.Round(2)
}

func loadLines(tx *gorm.DB, templateID uuid.UUID) ([]model.FeeTemplateComponentModel, error) {
	var lines []model.FeeTemplateComponentModel
	err := tx.Preload("Component").
		Where("fee_template_component_template_id = ?", templateID).
		Order("fee_template_component_id ASC").
		Find(&lines).Error
	return lines, err
}

// RecomputeTemplateTotal must run inside the transaction that changed the template's lines.
func RecomputeTemplateTotal(tx *gorm.DB, templateID uuid.UUID) (decimal.Decimal, error) {
	lines, err := loadLines(tx, templateID)
	if err != nil {
		return decimal.Zero, helper.Internal(err, "load template lines")
	}
	total := ComputeTemplateTotal(lines)
	if err := tx.Model(&model.FeeTemplateModel{}).
		Where("fee_template_id = ?", templateID).
		Update("fee_template_total_amount", total).Error; err != nil {
		return decimal.Zero, helper.Internal(err, "update template total")
	}
	return total, nil
}

/* ===================== Components ===================== */

type ComponentInput struct {
	Name        string
	Amount      decimal.Decimal
	Description *string
}

func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return helper.Validation("%s must not be negative", field)
	}
	if !amount.Equal(amount.Round(2)) {
		return helper.Validation("%s supports at most 2 decimal places", field)
	}
	return nil
}

func CreateComponent(ctx context.Context, db *gorm.DB, in ComponentInput) (*model.FeeComponentModel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, helper.Validation("component name is required")
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	m := &model.FeeComponentModel{
		FeeComponentName:        name,
		FeeComponentAmount:      in.Amount.Round(2),
		FeeComponentDescription: in.Description,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Duplicate("fee component %q already exists", name)
		}
		return nil, helper.Internal(err, "create fee component")
	}
	return m, nil
}

// UpdateComponent re-totals every template that prices this component without an override.
func UpdateComponent(ctx context.Context, db *gorm.DB, id uuid.UUID, in ComponentInput) (*model.FeeComponentModel, error) {
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	var out model.FeeComponentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("fee_component_id = ?", id).Take(&out).Error; err != nil {
			if helper.IsNotFound(err) {
				return helper.NotFound("fee component not found")
			}
			return helper.Internal(err, "load fee component")
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			out.FeeComponentName = name
		}
		out.FeeComponentAmount = in.Amount.Round(2)
		if in.Description != nil {
			out.FeeComponentDescription = in.Description
		}
		if err := tx.Save(&out).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.Duplicate("fee component %q already exists", out.FeeComponentName)
			}
			return helper.Internal(err, "update fee component")
		}

		var templateIDs []uuid.UUID
		if err := tx.Model(&model.FeeTemplateComponentModel{}).
			Where("fee_template_component_component_id = ?", id).
			Distinct().
			Pluck("fee_template_component_template_id", &templateIDs).Error; err != nil {
			return helper.Internal(err, "find templates using component")
		}
		for _, tid := range templateIDs {
			if _, err := RecomputeTemplateTotal(tx, tid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func DeleteComponent(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&model.FeeTemplateComponentModel{}).
			Where("fee_template_component_component_id = ?", id).
			Count(&used).Error; err != nil {
			return helper.Internal(err, "count component usage")
		}
		if used > 0 {
			return helper.Duplicate("fee component is used by %d template(s)", used)
		}
		res := tx.Where("fee_component_id = ?", id).Delete(&model.FeeComponentModel{})
		if res.Error != nil {
			return helper.Internal(res.Error, "delete fee component")
		}
		if res.RowsAffected == 0 {
			return helper.NotFound("fee component not found")
		}
		return nil
	})
}

func ListComponents(ctx context.Context, db *gorm.DB) ([]model.FeeComponentModel, error) {
	var rows []model.FeeComponentModel
	if err := db.WithContext(ctx).Order("fee_component_name ASC").Find(&rows).Error; err != nil {
		return nil, helper.Internal(err, "list fee components")
	}
	return rows, nil
}
