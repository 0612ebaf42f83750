package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/users/students/controller"
)

func StudentAdminRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewStudentController(db)
	g := r.Group("/students")
	g.Get("/", h.List)
	g.Get("/:id", h.Detail)
}

func StudentUserRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewStudentController(db)
	r.Get("/me", h.Me)
}
