// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	AssignmentRoute "collegefee_backend/internals/features/finance/assignments/route"
	FeeRoute "collegefee_backend/internals/features/finance/fees/route"
	InvoiceRoute "collegefee_backend/internals/features/finance/invoices/route"
	PaymentController "collegefee_backend/internals/features/finance/payments/controller"
	PaymentRoute "collegefee_backend/internals/features/finance/payments/route"
	PaymentService "collegefee_backend/internals/features/finance/payments/service"
	ReceiptRoute "collegefee_backend/internals/features/finance/receipts/route"
	ReceiptService "collegefee_backend/internals/features/finance/receipts/service"
	ReportRoute "collegefee_backend/internals/features/finance/reports/route"
	middlewares "collegefee_backend/internals/middlewares"
)

// FinanceWebhookRoutes is mounted outside every auth group.
func FinanceWebhookRoutes(r fiber.Router, db *gorm.DB, rec *PaymentService.Reconciler) {
	h := PaymentController.NewPaymentController(db, rec)
	PaymentRoute.PaymentWebhookRoutes(r.Group("", middlewares.WebhookRateLimiter()), h)
}

func FinanceUserRoutes(r fiber.Router, db *gorm.DB, rec *PaymentService.Reconciler, emitter *ReceiptService.Emitter) {
	InvoiceRoute.InvoiceUserRoutes(r, db)

	h := PaymentController.NewPaymentController(db, rec)
	r.Use("/invoices/:id/create-checkout-session", middlewares.CheckoutRateLimiter())
	r.Use("/invoices/:id/component-payment", middlewares.CheckoutRateLimiter())
	PaymentRoute.PaymentUserRoutes(r, h)

	ReceiptRoute.ReceiptUserRoutes(r, db, emitter)
}

func FinanceAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger, rec *PaymentService.Reconciler, emitter *ReceiptService.Emitter) {
	FeeRoute.FeeAdminRoutes(r, db)
	AssignmentRoute.AssignmentAdminRoutes(r, db, log)
	InvoiceRoute.InvoiceAdminRoutes(r, db)
	PaymentRoute.PaymentAdminRoutes(r, PaymentController.NewPaymentController(db, rec))
	ReceiptRoute.ReceiptAdminRoutes(r, db, emitter)
	ReportRoute.ReportAdminRoutes(r, db)
}

func FinanceHODRoutes(r fiber.Router, db *gorm.DB) {
	ReportRoute.ReportHODRoutes(r, db)
}
