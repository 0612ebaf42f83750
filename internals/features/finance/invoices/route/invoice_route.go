package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/invoices/controller"
)

func InvoiceUserRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewInvoiceController(db)
	g := r.Group("/invoices")
	g.Get("/", h.MyInvoices)
	g.Get("/:id", h.MyInvoiceDetail)
	g.Get("/:id/components", h.MyInvoiceComponents)
}

func InvoiceAdminRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewInvoiceController(db)
	g := r.Group("/invoices")
	g.Get("/", h.List)
	g.Get("/:id", h.Detail)
	g.Patch("/:id", h.Patch)

	cf := r.Group("/students/:id/custom-fees")
	cf.Get("/", h.GetCustomFees)
	cf.Put("/", h.SaveCustomFees)
	cf.Post("/invoice", h.InvoiceCustomFees)
}
