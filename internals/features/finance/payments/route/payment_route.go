package route

import (
	"github.com/gofiber/fiber/v2"

	"collegefee_backend/internals/features/finance/payments/controller"
)

// PaymentWebhookRoutes is mounted without auth; the gateway signature is the credential.
func PaymentWebhookRoutes(r fiber.Router, h *controller.PaymentController) {
	r.Post("/webhooks/payment", h.Webhook)
}

func PaymentUserRoutes(r fiber.Router, h *controller.PaymentController) {
	inv := r.Group("/invoices/:id")
	inv.Post("/create-checkout-session", h.CreateCheckoutSession)
	inv.Post("/component-payment", h.CreateComponentPayment)

	g := r.Group("/payments")
	g.Get("/", h.MyPayments)
	g.Get("/:session_id/status", h.Status)
	g.Get("/:id", h.MyPaymentDetail)
}

func PaymentAdminRoutes(r fiber.Router, h *controller.PaymentController) {
	g := r.Group("/payments")
	g.Get("/", h.List)
	g.Get("/gateway-events", h.GatewayEvents)
	g.Post("/offline", h.RecordOffline)
	g.Post("/sweep", h.Sweep)
	g.Get("/:id", h.Detail)
	g.Post("/:id/refund", h.Refund)
}
