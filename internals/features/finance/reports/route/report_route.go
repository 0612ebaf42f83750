package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/reports/controller"
)

func ReportAdminRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewReportController(db)
	g := r.Group("/reports")
	g.Get("/outstanding", h.Outstanding)
	g.Get("/collections", h.Collections)
	g.Get("/department", h.Department)
}

// ReportHODRoutes serves the department summary scoped to the caller.
func ReportHODRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewReportController(db)
	r.Get("/reports/department", h.Department)
}
