package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"collegefee_backend/internals/features/finance/payments/dto"
	"collegefee_backend/internals/features/finance/payments/model"
	"collegefee_backend/internals/features/finance/payments/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// listFilter reads ?status=&mode=&invoice_id=&student_id=&department=&from=&to=
// (dates as YYYY-MM-DD, `to` inclusive).
func listFilter(c *fiber.Ctx) (service.ListFilter, error) {
	f := service.ListFilter{
		Status:     strings.TrimSpace(c.Query("status")),
		Mode:       strings.TrimSpace(c.Query("mode")),
		Department: strings.TrimSpace(c.Query("department")),
	}
	for key, dst := range map[string]**uuid.UUID{"invoice_id": &f.InvoiceID, "student_id": &f.StudentID} {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return f, helper.Validation("invalid %s", key)
			}
			*dst = &id
		}
	}
	from, err := parseDay(c.Query("from"))
	if err != nil {
		return f, helper.Validation("from must be YYYY-MM-DD")
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		return f, helper.Validation("to must be YYYY-MM-DD")
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	f.From, f.To = from, to
	return f, nil
}

// GET /api/a/payments
func (h *PaymentController) List(c *fiber.Ctx) error {
	f, err := listFilter(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 200)
	f.Offset, f.Limit = p.Offset, p.Limit
	rows, total, err := service.ListPayments(c.Context(), h.DB, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToPaymentResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/payments/:id
func (h *PaymentController) Detail(c *fiber.Ctx) error {
	id, err := parseID(c, "payment")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, err := service.GetPayment(c.Context(), h.DB, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPaymentResponse(*p))
}

// POST /api/a/payments/offline
func (h *PaymentController) RecordOffline(c *fiber.Ctx) error {
	var req dto.OfflinePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	admin, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Rec.RecordOffline(c.Context(), admin, service.OfflineInput{
		InvoiceID:     req.InvoiceID,
		Amount:        req.Amount,
		Mode:          model.PaymentMode(req.Mode),
		TransactionID: req.TransactionID,
		Note:          req.Note,
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	pay := res.Payment
	pay.Components = res.Allocations
	return helper.JsonCreated(c, "payment recorded", dto.ToPaymentResponse(pay))
}

// POST /api/a/payments/:id/refund
func (h *PaymentController) Refund(c *fiber.Ctx) error {
	id, err := parseID(c, "payment")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.RefundRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
		}
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	admin, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p, err := h.Rec.Refund(c.Context(), admin, id, service.RefundInput{Amount: req.Amount, Reason: req.Reason})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "payment refunded", dto.ToPaymentResponse(*p))
}

// GET /api/a/payments/gateway-events?payment_id=
func (h *PaymentController) GatewayEvents(c *fiber.Ctx) error {
	var pid *uuid.UUID
	if v := strings.TrimSpace(c.Query("payment_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid payment_id")
		}
		pid = &id
	}
	p := helper.ResolvePaging(c, 50, 200)
	rows, total, err := service.ListGatewayEvents(c.Context(), h.DB, pid, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToGatewayEventResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// POST /api/a/payments/sweep
func (h *PaymentController) Sweep(c *fiber.Ctx) error {
	res, err := h.Rec.Sweep(c.Context())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "sweep finished", res)
}
