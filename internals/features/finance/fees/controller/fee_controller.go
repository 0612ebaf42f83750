// file: internals/features/finance/fees/controller/fee_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/fees/dto"
	svc "collegefee_backend/internals/features/finance/fees/service"
	helper "collegefee_backend/internals/helpers"
)

type FeeController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewFeeController(db *gorm.DB) *FeeController {
	return &FeeController{DB: db, Validator: validator.New()}
}

func parseID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(key))
	if err != nil {
		return uuid.Nil, helper.Validation("invalid %s", key)
	}
	return id, nil
}

/* ===================== Components ===================== */

// GET /api/a/fee-components
func (h *FeeController) ListComponents(c *fiber.Ctx) error {
	rows, err := svc.ListComponents(c.Context(), h.DB)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /api/a/fee-components
func (h *FeeController) CreateComponent(c *fiber.Ctx) error {
	var req dto.ComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	m, err := svc.CreateComponent(c.Context(), h.DB, req.ToInput())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "fee component created", m)
}

// PUT /api/a/fee-components/:id
func (h *FeeController) UpdateComponent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	m, err := svc.UpdateComponent(c.Context(), h.DB, id, req.ToInput())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "fee component updated", m)
}

// DELETE /api/a/fee-components/:id
func (h *FeeController) DeleteComponent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := svc.DeleteComponent(c.Context(), h.DB, id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "fee component deleted", fiber.Map{"fee_component_id": id})
}

/* ===================== Templates ===================== */

// GET /api/a/fee-templates?academic_year=&admission_mode=&department=&active=1
func (h *FeeController) ListTemplates(c *fiber.Ctx) error {
	rows, err := svc.ListTemplates(c.Context(), h.DB, svc.TemplateFilter{
		AcademicYear:  c.Query("academic_year"),
		AdmissionMode: c.Query("admission_mode"),
		Department:    c.Query("department"),
		ActiveOnly:    c.QueryBool("active", false),
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToTemplateResponses(rows))
}

// GET /api/a/fee-templates/:id
func (h *FeeController) GetTemplate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	t, err := svc.GetTemplate(c.Context(), h.DB, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToTemplateResponse(*t))
}

// POST /api/a/fee-templates
func (h *FeeController) CreateTemplate(c *fiber.Ctx) error {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	t, err := svc.CreateTemplate(c.Context(), h.DB, req.ToInput())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "fee template created", dto.ToTemplateResponse(*t))
}

// PATCH /api/a/fee-templates/:id
func (h *FeeController) PatchTemplate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.TemplatePatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	t, err := svc.UpdateTemplate(c.Context(), h.DB, id, req.ToInput())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "fee template updated", dto.ToTemplateResponse(*t))
}

// POST /api/a/fee-templates/:id/components
func (h *FeeController) AddComponent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.TemplateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	t, err := svc.AddTemplateComponent(c.Context(), h.DB, id, req.ToInput())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "component added", dto.ToTemplateResponse(*t))
}

// PATCH /api/a/fee-templates/:id/components/:component_id
func (h *FeeController) SetOverride(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	componentID, err := parseID(c, "component_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.OverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	var override decimal.NullDecimal
	if req.AmountOverride != nil {
		override = decimal.NewNullDecimal(*req.AmountOverride)
	}
	t, err := svc.SetTemplateOverride(c.Context(), h.DB, id, componentID, override)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "override updated", dto.ToTemplateResponse(*t))
}

// DELETE /api/a/fee-templates/:id/components/:component_id
func (h *FeeController) RemoveComponent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	componentID, err := parseID(c, "component_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	t, err := svc.RemoveTemplateComponent(c.Context(), h.DB, id, componentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "component removed", dto.ToTemplateResponse(*t))
}
