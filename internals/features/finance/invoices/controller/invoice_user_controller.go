// file: internals/features/finance/invoices/controller/invoice_user_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/invoices/dto"
	svc "collegefee_backend/internals/features/finance/invoices/service"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type InvoiceController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db, Validator: validator.New()}
}

func (h *InvoiceController) currentStudentID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return uuid.Nil, err
	}
	s, err := studentSvc.FindByUserID(c.Context(), h.DB, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return s.StudentID, nil
}

// GET /api/u/invoices?status=
func (h *InvoiceController) MyInvoices(c *fiber.Ctx) error {
	studentID, err := h.currentStudentID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := svc.ListInvoices(c.Context(), h.DB, svc.ListFilter{
		StudentID: &studentID,
		Status:    c.Query("status"),
		Offset:    p.Offset,
		Limit:     p.Limit,
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToInvoiceResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/u/invoices/:id
func (h *InvoiceController) MyInvoiceDetail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid invoice id")
	}
	studentID, err := h.currentStudentID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	inv, err := svc.GetInvoiceForStudent(c.Context(), h.DB, id, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToInvoiceResponse(*inv))
}

// GET /api/u/invoices/:id/components
func (h *InvoiceController) MyInvoiceComponents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid invoice id")
	}
	studentID, err := h.currentStudentID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	inv, err := svc.GetInvoiceForStudent(c.Context(), h.DB, id, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"invoice_id":     inv.InvoiceID,
		"invoice_number": inv.InvoiceNumber,
		"balance_amount": inv.InvoiceBalance,
		"components":     dto.ToComponentResponses(inv.Components),
	})
}
