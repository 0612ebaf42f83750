// file: internals/features/finance/receipts/controller/receipt_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	paymentSvc "collegefee_backend/internals/features/finance/payments/service"
	"collegefee_backend/internals/features/finance/receipts/dto"
	svc "collegefee_backend/internals/features/finance/receipts/service"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type ReceiptController struct {
	DB      *gorm.DB
	Emitter *svc.Emitter
}

func NewReceiptController(db *gorm.DB, emitter *svc.Emitter) *ReceiptController {
	return &ReceiptController{DB: db, Emitter: emitter}
}

// GET /api/u/receipts
func (h *ReceiptController) MyReceipts(c *fiber.Ctx) error {
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	st, err := studentSvc.FindByUserID(c.Context(), h.DB, uid)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := svc.ListForStudent(c.Context(), h.DB, st.StudentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToReceiptResponses(rows))
}

// GET /api/u/payments/:id/receipt
func (h *ReceiptController) MyReceiptDocument(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payment id")
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	st, err := studentSvc.FindByUserID(c.Context(), h.DB, uid)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if _, err := paymentSvc.GetPaymentForStudent(c.Context(), h.DB, id, st.StudentID); err != nil {
		return helper.JsonFromError(c, err)
	}
	return h.send(c, id)
}

// GET /api/a/payments/:id/receipt
func (h *ReceiptController) ReceiptDocument(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payment id")
	}
	return h.send(c, id)
}

// send re-renders the document so template changes apply to old receipts.
func (h *ReceiptController) send(c *fiber.Ctx, paymentID uuid.UUID) error {
	rc, err := svc.GetByPayment(c.Context(), h.DB, paymentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	data, err := h.Emitter.Render(c.Context(), rc)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	c.Set(fiber.HeaderContentType, h.Emitter.Renderer.ContentType())
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+rc.ReceiptNumber+h.Emitter.Renderer.Ext()+`"`)
	return c.Send(data)
}
