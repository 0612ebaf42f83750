package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/assignments/controller"
)

func AssignmentAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	h := controller.NewAssignmentController(db, log)
	g := r.Group("/fee-assignments")
	g.Get("/", h.List)
	g.Post("/", h.Assign)
	g.Post("/bulk", h.Bulk)
	g.Post("/auto", h.Auto)
	g.Delete("/:id", h.Deactivate)
}
