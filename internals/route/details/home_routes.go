package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	NotificationRoute "collegefee_backend/internals/features/home/notifications/route"
	NotificationService "collegefee_backend/internals/features/home/notifications/service"
)

func HomeUserRoutes(r fiber.Router, db *gorm.DB, n *NotificationService.Notifier) {
	NotificationRoute.NotificationUserRoutes(r, db, n)
}

func HomeAdminRoutes(r fiber.Router, db *gorm.DB, n *NotificationService.Notifier) {
	NotificationRoute.NotificationAdminRoutes(r, db, n)
}
