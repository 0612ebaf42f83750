// file: internals/features/finance/assignments/controller/assignment_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/assignments/dto"
	svc "collegefee_backend/internals/features/finance/assignments/service"
	invoiceDTO "collegefee_backend/internals/features/finance/invoices/dto"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type AssignmentController struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Validator *validator.Validate
}

func NewAssignmentController(db *gorm.DB, log *zap.Logger) *AssignmentController {
	return &AssignmentController{DB: db, Log: log.Named("assignments"), Validator: validator.New()}
}

func actor(c *fiber.Ctx) *uuid.UUID {
	if id, err := helperAuth.GetUserIDFromToken(c); err == nil {
		return &id
	}
	return nil
}

// POST /api/a/fee-assignments
func (h *AssignmentController) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	due, err := invoiceDTO.ParseDate(req.DueDate)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
	}
	res, err := svc.Assign(c.Context(), h.DB, svc.AssignInput{
		StudentID:    req.StudentID,
		TemplateID:   req.TemplateID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Overrides:    req.Overrides,
		AssignedBy:   actor(c),
		DueDate:      due,
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out := dto.ToAssignmentResponse(res.Assignment)
	inv := invoiceDTO.ToInvoiceResponse(*res.Invoice)
	out.Invoice = &inv
	h.Log.Info("fee assigned",
		zap.String("student_id", req.StudentID.String()),
		zap.String("invoice", res.Invoice.InvoiceNumber))
	return helper.JsonCreated(c, "fee assigned", out)
}

// POST /api/a/fee-assignments/bulk
func (h *AssignmentController) Bulk(c *fiber.Ctx) error {
	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	due, err := invoiceDTO.ParseDate(req.DueDate)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
	}
	res, err := svc.BulkAssign(c.Context(), h.DB, svc.BulkInput{
		TemplateID:    req.TemplateID,
		AcademicYear:  req.AcademicYear,
		Semester:      req.Semester,
		AdmissionMode: req.AdmissionMode,
		Department:    req.Department,
		DryRun:        req.DryRun,
		AssignedBy:    actor(c),
		DueDate:       due,
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	h.Log.Info("bulk assignment",
		zap.Bool("dry_run", res.DryRun),
		zap.Int("matched", res.Matched),
		zap.Int("assigned", res.Assigned),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(res.Failed)))
	return helper.JsonOK(c, "bulk assignment finished", res)
}

// POST /api/a/fee-assignments/auto
func (h *AssignmentController) Auto(c *fiber.Ctx) error {
	var req dto.AutoAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	res, err := svc.AutoAssign(c.Context(), h.DB, req.StudentID, req.AcademicYear, actor(c))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out := dto.ToAssignmentResponse(res.Assignment)
	inv := invoiceDTO.ToInvoiceResponse(*res.Invoice)
	out.Invoice = &inv
	return helper.JsonCreated(c, "fee assigned", out)
}

// GET /api/a/fee-assignments?academic_year=&template_id=&student_id=
func (h *AssignmentController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := svc.ListFilter{AcademicYear: c.Query("academic_year"), Offset: p.Offset, Limit: p.Limit}
	if s := c.Query("template_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid template_id")
		}
		f.TemplateID = &id
	}
	if s := c.Query("student_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid student_id")
		}
		f.StudentID = &id
	}
	rows, total, err := svc.List(c.Context(), h.DB, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToAssignmentResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// DELETE /api/a/fee-assignments/:id
func (h *AssignmentController) Deactivate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid assignment id")
	}
	if err := svc.Deactivate(c.Context(), h.DB, id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "assignment deactivated", fiber.Map{"assignment_id": id})
}
