package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	StudentRoute "collegefee_backend/internals/features/users/students/route"
)

func UserRoutes(r fiber.Router, db *gorm.DB) {
	StudentRoute.StudentUserRoutes(r, db)
}

func UserAdminRoutes(r fiber.Router, db *gorm.DB) {
	StudentRoute.StudentAdminRoutes(r, db)
}
