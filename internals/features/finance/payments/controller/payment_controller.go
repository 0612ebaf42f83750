// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/payments/dto"
	"collegefee_backend/internals/features/finance/payments/service"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

// SignatureHeader carries the gateway signature when the provider sends one
// outside the body.
const SignatureHeader = "X-Signature"

type PaymentController struct {
	DB        *gorm.DB
	Rec       *service.Reconciler
	Validator *validator.Validate
}

func NewPaymentController(db *gorm.DB, rec *service.Reconciler) *PaymentController {
	return &PaymentController{DB: db, Rec: rec, Validator: validator.New()}
}

/* ===================== Webhook ===================== */

// POST /api/webhooks/payment
func (h *PaymentController) Webhook(c *fiber.Ctx) error {
	// the body is copied because fiber reuses its buffers after the handler returns
	payload := append([]byte(nil), c.Body()...)
	res, err := h.Rec.HandleWebhook(c.Context(), payload, c.Get(SignatureHeader))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "received", res)
}

/* ===================== Student ===================== */

func parseID(c *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, helper.Validation("invalid %s id", what)
	}
	return id, nil
}

// POST /api/u/invoices/:id/create-checkout-session
func (h *PaymentController) CreateCheckoutSession(c *fiber.Ctx) error {
	invoiceID, err := parseID(c, "invoice")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
		}
	}
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Rec.CreateCheckoutSession(c.Context(), caller, invoiceID, req.Amount)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "checkout session created", res)
}

// POST /api/u/invoices/:id/component-payment
func (h *PaymentController) CreateComponentPayment(c *fiber.Ctx) error {
	invoiceID, err := parseID(c, "invoice")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ComponentPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Rec.CreateComponentPayment(c.Context(), caller, invoiceID, req.Selections())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "checkout session created", res)
}

// GET /api/u/payments/:session_id/status
func (h *PaymentController) Status(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Rec.CheckStatus(c.Context(), caller, c.Params("session_id"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"payment":        dto.ToPaymentResponse(res.Payment),
		"gateway_status": res.GatewayStatus,
		"reconciled":     res.Reconciled,
	})
}

// GET /api/u/payments?status=&invoice_id=
func (h *PaymentController) MyPayments(c *fiber.Ctx) error {
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	st, err := studentSvc.FindByUserID(c.Context(), h.DB, uid)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f, err := listFilter(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f.StudentID = &st.StudentID
	f.Department = ""
	p := helper.ResolvePaging(c, 20, 100)
	f.Offset, f.Limit = p.Offset, p.Limit

	rows, total, err := service.ListPayments(c.Context(), h.DB, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToPaymentResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/u/payments/:id
func (h *PaymentController) MyPaymentDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "payment")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	st, err := studentSvc.FindByUserID(c.Context(), h.DB, uid)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, err := service.GetPaymentForStudent(c.Context(), h.DB, id, st.StudentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPaymentResponse(*p))
}
