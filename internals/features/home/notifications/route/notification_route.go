package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/home/notifications/controller"
	svc "collegefee_backend/internals/features/home/notifications/service"
)

func NotificationUserRoutes(user fiber.Router, db *gorm.DB, n *svc.Notifier) {
	ctrl := controller.NewNotificationController(db, n)

	notification := user.Group("/notifications")
	notification.Get("/", ctrl.GetMyNotifications)
	notification.Patch("/read-all", ctrl.MarkAllAsRead)
	notification.Patch("/:id/read", ctrl.MarkAsRead)
}

func NotificationAdminRoutes(admin fiber.Router, db *gorm.DB, n *svc.Notifier) {
	ctrl := controller.NewNotificationController(db, n)
	admin.Post("/notifications", ctrl.CreateNotification)
}
