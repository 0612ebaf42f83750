package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/receipts/controller"
	svc "collegefee_backend/internals/features/finance/receipts/service"
)

func ReceiptUserRoutes(r fiber.Router, db *gorm.DB, emitter *svc.Emitter) {
	h := controller.NewReceiptController(db, emitter)
	r.Get("/receipts", h.MyReceipts)
	r.Get("/payments/:id/receipt", h.MyReceiptDocument)
}

func ReceiptAdminRoutes(r fiber.Router, db *gorm.DB, emitter *svc.Emitter) {
	h := controller.NewReceiptController(db, emitter)
	r.Get("/payments/:id/receipt", h.ReceiptDocument)
}
