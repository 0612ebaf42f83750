// file: internals/features/finance/invoices/controller/invoice_admin_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/invoices/dto"
	"collegefee_backend/internals/features/finance/invoices/model"
	svc "collegefee_backend/internals/features/finance/invoices/service"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

// GET /api/a/invoices?status=&academic_year=&department=
func (h *InvoiceController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := svc.ListFilter{
		Status:       c.Query("status"),
		AcademicYear: c.Query("academic_year"),
		Department:   c.Query("department"),
		Offset:       p.Offset,
		Limit:        p.Limit,
	}
	if s := c.Query("student_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid student_id")
		}
		f.StudentID = &id
	}
	rows, total, err := svc.ListInvoices(c.Context(), h.DB, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToInvoiceResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/invoices/:id
func (h *InvoiceController) Detail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid invoice id")
	}
	inv, err := svc.GetInvoice(c.Context(), h.DB, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToInvoiceResponse(*inv))
}

// PATCH /api/a/invoices/:id
func (h *InvoiceController) Patch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid invoice id")
	}
	var req dto.PatchInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	due, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
	}
	in := svc.PatchInput{DueDate: due}
	if req.Status != nil {
		st := model.InvoiceStatus(*req.Status)
		in.Status = &st
	}
	inv, err := svc.PatchInvoice(c.Context(), h.DB, id, in)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "invoice updated", dto.ToInvoiceResponse(*inv))
}

/* ===================== Custom fee structures ===================== */

// GET /api/a/students/:id/custom-fees
func (h *InvoiceController) GetCustomFees(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}
	s, err := svc.GetCustomStructure(c.Context(), h.DB, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", s)
}

// PUT /api/a/students/:id/custom-fees
func (h *InvoiceController) SaveCustomFees(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}
	if _, err := studentSvc.FindByID(c.Context(), h.DB, studentID); err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CustomFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	in := svc.CustomStructureInput{StudentID: studentID, AcademicYear: req.AcademicYear, Lines: req.Lines()}
	if adminID, err := helperAuth.GetUserIDFromToken(c); err == nil {
		in.CreatedBy = &adminID
	}
	s, err := svc.SaveCustomStructure(c.Context(), h.DB, in)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "custom fee structure saved", s)
}

// POST /api/a/students/:id/custom-fees/invoice
func (h *InvoiceController) InvoiceCustomFees(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}
	var req dto.CustomInvoiceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
		}
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	due, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "due_date must be YYYY-MM-DD")
	}

	var inv *model.InvoiceModel
	err = h.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		s, err := svc.GetCustomStructure(c.Context(), tx, studentID)
		if err != nil {
			return err
		}
		inv, err = svc.GenerateFromCustom(tx, s, req.Semester, due, time.Now())
		return err
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "invoice generated", dto.ToInvoiceResponse(*inv))
}
